package services

import (
	"context"
	"errors"
	"log"
	"time"

	"plp-rushdesk/internal/adapters/persistence/models"
	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/config"
	"plp-rushdesk/internal/core/domain"
	"plp-rushdesk/internal/pkg/jwt"
	"plp-rushdesk/internal/pkg/password"
	"plp-rushdesk/internal/pkg/phone"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidPhone       = errors.New("invalid phone number format, use E.164 e.g. +11234567890")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	otpService       *OTPService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	otpService *OTPService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		otpService:       otpService,
		cfg:              cfg,
	}
}

// RegisterInput represents email registration input
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginInput represents email login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register registers a new user with email and password
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 2. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 3. Create user record (role is fixed, never elevated)
	now := time.Now()
	user := &models.User{
		Email:      &input.Email,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Password:   hashedPassword,
		Role:       string(domain.RoleBrother),
		IsActive:   true,
		FirstLogin: now,
		LastLogin:  now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 4. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 5. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s", user.EmailAddress())

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a user with email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password (empty hash means a Google/phone-only account)
	if user.Password == "" || !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Refresh last login (non-destructive)
	user.LastLogin = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// 5. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 6. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.EmailAddress())

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// ProviderProfile is the identity asserted by an external provider
// (Google profile or a verified phone number)
type ProviderProfile struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	PhotoURL  string
}

// SignInWithProvider completes a provider sign-in: it mirrors the asserted
// identity into the users table (create on first sign-in, refresh
// non-destructively afterwards) and issues a token pair.
func (s *AuthService) SignInWithProvider(ctx context.Context, profile *ProviderProfile) (*AuthResponse, error) {
	// 1. Look up the mirrored user record
	var user *models.User
	var err error
	if profile.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, profile.Email)
	} else {
		user, err = s.userRepo.GetByPhone(ctx, profile.Phone)
	}

	now := time.Now()
	switch {
	case err == nil:
		// 2a. Existing record: refresh login timestamp, fill display
		// fields only when they were empty before
		if !user.IsActive {
			return nil, ErrUserInactive
		}
		user.LastLogin = now
		if user.FirstName == "" {
			user.FirstName = profile.FirstName
		}
		if user.LastName == "" {
			user.LastName = profile.LastName
		}
		if user.PhotoURL == "" {
			user.PhotoURL = profile.PhotoURL
		}
		if user.Phone == "" {
			user.Phone = profile.Phone
		}
		if user.Email == nil && profile.Email != "" {
			user.Email = &profile.Email
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		// 2b. First sign-in: create the mirror record. Email stays NULL
		// for phone-only identities so the unique index never collides
		// between two phone users.
		user = &models.User{
			Phone:      profile.Phone,
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
			PhotoURL:   profile.PhotoURL,
			Role:       string(domain.RoleBrother),
			IsActive:   true,
			FirstLogin: now,
			LastLogin:  now,
		}
		if profile.Email != "" {
			user.Email = &profile.Email
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	// 3. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 4. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Provider sign-in: %s", user.DisplayName())

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RequestPhoneCode starts the two-phase phone sign-in. The number is
// validated before any challenge is issued: an invalid number never
// reaches the challenge store.
func (s *AuthService) RequestPhoneCode(ctx context.Context, phoneNumber string) (string, error) {
	if !phone.IsValid(phoneNumber) {
		return "", ErrInvalidPhone
	}

	confirmationID, code, err := s.otpService.CreateChallenge(phoneNumber)
	if err != nil {
		return "", err
	}

	// No SMS gateway is wired up; the code is delivered out of band.
	// In dev mode it is logged so the flow can be exercised end to end.
	if s.cfg.IsDev() {
		log.Printf("📱 OTP for %s: %s", phoneNumber, code)
	}

	return confirmationID, nil
}

// ConfirmPhoneCode consumes a confirmation handle and code, completing the
// phone sign-in on success
func (s *AuthService) ConfirmPhoneCode(ctx context.Context, confirmationID, code string) (*AuthResponse, error) {
	phoneNumber, err := s.otpService.Confirm(confirmationID, code)
	if err != nil {
		return nil, err
	}

	resp, err := s.SignInWithProvider(ctx, &ProviderProfile{Phone: phoneNumber})
	if err != nil {
		return nil, err
	}

	s.otpService.Clear(confirmationID)
	return resp, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}

	// 5. Check if token is expired
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 6. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 7. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 8. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 9. Generate new tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 10. Store new refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.DisplayName())

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	// Generate access token
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.EmailAddress(),
		user.DisplayName(),
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	// Generate unique token ID
	tokenID := uuid.New().String()

	// Generate refresh token
	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
