package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func newAuthService(cfg config.AuthConfig) (*AuthService, *repository.MemoryUserRepository) {
	cfg.JWTSecret = "test-secret"
	cfg.BcryptCost = 4
	users := repository.NewMemoryUserRepository()
	return NewAuthService(cfg, users, nil), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Asha", "asha@city.test", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCitizen, registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)

	claims, err := svc.TokenManager().ParseToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)

	_, err = svc.Register(ctx, "Asha again", "ASHA@city.test", "x")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = svc.Login(ctx, "asha@city.test", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Login(ctx, "nobody@city.test", "s3cret-pass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	logged, err := svc.Login(ctx, "asha@city.test", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	svc, users := newAuthService(config.AuthConfig{BootstrapAdminEmail: "root@city.test", BootstrapAdminPass: "changeme"})
	ctx := context.Background()

	require.NoError(t, svc.BootstrapAdmin(ctx))
	require.NoError(t, svc.BootstrapAdmin(ctx))

	admin, err := users.GetByEmail(ctx, "root@city.test")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestCreateUserAndChangePassword(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "Bot", "bot@city.test", "pw", domain.RoleSystem)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	officer, err := svc.CreateUser(ctx, "Ravi", "ravi@city.test", "first-pass", domain.RoleOfficial)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, officer.ID, "not-it", "second-pass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.NoError(t, svc.ChangePassword(ctx, officer.ID, "first-pass", "second-pass"))

	_, err = svc.Login(ctx, "ravi@city.test", "second-pass")
	require.NoError(t, err)
}
