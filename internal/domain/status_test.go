package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
		ok   bool
	}{
		{"submitted", StatusSubmitted, true},
		{"Pending", StatusSubmitted, true},
		{"In Progress", StatusInProgress, true},
		{"in-progress", StatusInProgress, true},
		{"IN_PROGRESS", StatusInProgress, true},
		{" Resolved ", StatusResolved, true},
		{"verified", StatusVerified, true},
		{"CLOSED", StatusClosed, true},
		{"reopened", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusVerified.IsTerminal())
	assert.True(t, StatusClosed.IsTerminal())
	assert.False(t, StatusResolved.IsTerminal())

	assert.True(t, StatusInProgress.IsOpen())
	assert.False(t, StatusResolved.IsOpen())

	assert.True(t, StatusClosed.RequiresResolutionProof())
	assert.False(t, StatusAssigned.RequiresResolutionProof())
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("Stray Animals")
	assert.True(t, ok)
	assert.Equal(t, CategoryStrayAnimals, c)

	c, ok = ParseCategory("WATER")
	assert.True(t, ok)
	assert.Equal(t, CategoryWater, c)

	_, ok = ParseCategory("potholes")
	assert.False(t, ok)
}

func TestComplaintCloneDoesNotAlias(t *testing.T) {
	photo := "https://img/1.jpg"
	lat := 12.9
	orig := &Complaint{ID: "c1", ResolutionPhotoURL: &photo, Latitude: &lat, FraudFlags: []FraudFlag{{Type: "spam"}}}

	cp := orig.Clone()
	*cp.ResolutionPhotoURL = "changed"
	*cp.Latitude = 0
	cp.FraudFlags[0].Type = "other"

	assert.Equal(t, "https://img/1.jpg", *orig.ResolutionPhotoURL)
	assert.Equal(t, 12.9, *orig.Latitude)
	assert.Equal(t, "spam", orig.FraudFlags[0].Type)
}
