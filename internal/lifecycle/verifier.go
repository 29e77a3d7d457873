package lifecycle

import "strings"

// Verifier guards entry into Resolved.
type Verifier interface {
	Verify(photoURL *string) error
}

// PhotoVerifier only enforces that a resolution photo is attached. Content
// authenticity is left to external classifiers.
type PhotoVerifier struct{}

// Verify rejects nil or blank proof.
func (PhotoVerifier) Verify(photoURL *string) error {
	if photoURL == nil || strings.TrimSpace(*photoURL) == "" {
		return ErrMissingResolutionProof
	}
	return nil
}
