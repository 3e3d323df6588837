package services

import (
	"context"
	"testing"

	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	db := setupTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	otpService := NewOTPService()
	t.Cleanup(otpService.Stop)

	return NewAuthService(userRepo, refreshTokenRepo, otpService, newTestConfig())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Email:     "brother@pilambdaphi.org",
		Password:  "secret123",
		FirstName: "John",
		LastName:  "Smith",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.RoleBrother), registered.User.Role)
	assert.True(t, registered.User.IsActive)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := svc.Login(context.Background(), &LoginInput{
		Email:    "brother@pilambdaphi.org",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "brother@pilambdaphi.org",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterInput{
		Email:    "brother@pilambdaphi.org",
		Password: "different",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "brother@pilambdaphi.org",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginInput{
		Email:    "brother@pilambdaphi.org",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(context.Background(), &LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SignInWithProvider_MirrorsUser(t *testing.T) {
	svc := newTestAuthService(t)

	// First sign-in creates the mirror record
	first, err := svc.SignInWithProvider(context.Background(), &ProviderProfile{
		Email:     "google-user@gmail.com",
		FirstName: "Jane",
		LastName:  "Doe",
		PhotoURL:  "https://example.com/photo.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.RoleBrother), first.User.Role)
	assert.True(t, first.User.IsActive)
	assert.Equal(t, "Jane", first.User.FirstName)
	firstLogin := first.User.FirstLogin

	// Second sign-in reuses the record and never resets first_login
	second, err := svc.SignInWithProvider(context.Background(), &ProviderProfile{
		Email:     "google-user@gmail.com",
		FirstName: "Janet", // changed upstream, must not clobber
	})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Jane", second.User.FirstName)
	assert.Equal(t, firstLogin.Unix(), second.User.FirstLogin.Unix())
	assert.True(t, second.User.LastLogin.After(second.User.FirstLogin) ||
		second.User.LastLogin.Equal(second.User.FirstLogin))
}

func TestAuthService_PhoneSignIn(t *testing.T) {
	svc := newTestAuthService(t)

	confirmationID, err := svc.RequestPhoneCode(context.Background(), "+11234567890")
	require.NoError(t, err)
	require.NotEmpty(t, confirmationID)

	// Pull the code straight out of the challenge store
	svc.otpService.mu.RLock()
	code := svc.otpService.store[confirmationID].Code
	svc.otpService.mu.RUnlock()

	resp, err := svc.ConfirmPhoneCode(context.Background(), confirmationID, code)
	require.NoError(t, err)

	assert.Equal(t, "+11234567890", resp.User.Phone)
	assert.Equal(t, string(domain.RoleBrother), resp.User.Role)

	// The handle is consumed on success
	_, err = svc.ConfirmPhoneCode(context.Background(), confirmationID, code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestAuthService_PhoneSignIn_TwoDistinctNumbers(t *testing.T) {
	svc := newTestAuthService(t)

	signIn := func(number string) *AuthResponse {
		t.Helper()
		confirmationID, err := svc.RequestPhoneCode(context.Background(), number)
		require.NoError(t, err)

		svc.otpService.mu.RLock()
		code := svc.otpService.store[confirmationID].Code
		svc.otpService.mu.RUnlock()

		resp, err := svc.ConfirmPhoneCode(context.Background(), confirmationID, code)
		require.NoError(t, err)
		return resp
	}

	// Phone-only users carry no email; each number gets its own record
	first := signIn("+11111111111")
	second := signIn("+12222222222")

	assert.NotEqual(t, first.User.ID, second.User.ID)
	assert.Equal(t, "+11111111111", first.User.Phone)
	assert.Equal(t, "+12222222222", second.User.Phone)
	assert.Empty(t, first.User.Email)
	assert.Empty(t, second.User.Email)

	// Signing in again with the first number reuses its record
	again := signIn("+11111111111")
	assert.Equal(t, first.User.ID, again.User.ID)
}

func TestAuthService_RequestPhoneCode_InvalidNumber(t *testing.T) {
	svc := newTestAuthService(t)

	// Validation happens before any challenge is issued
	for _, number := range []string{"12345", "not-a-number", "+123", ""} {
		_, err := svc.RequestPhoneCode(context.Background(), number)
		assert.ErrorIs(t, err, ErrInvalidPhone, "number %q", number)
	}

	svc.otpService.mu.RLock()
	defer svc.otpService.mu.RUnlock()
	assert.Empty(t, svc.otpService.store, "invalid numbers must not reach the challenge store")
}

func TestAuthService_RefreshTokenRotation(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "brother@pilambdaphi.org",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The old refresh token was revoked by the rotation
	_, err = svc.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "brother@pilambdaphi.org",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.RefreshToken))

	_, err = svc.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Email:     "brother@pilambdaphi.org",
		Password:  "secret123",
		FirstName: "John",
		LastName:  "Smith",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(registered.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "brother@pilambdaphi.org", claims.Email)
	assert.Equal(t, "John Smith", claims.DisplayName)
	assert.Equal(t, string(domain.RoleBrother), claims.Role)
}
