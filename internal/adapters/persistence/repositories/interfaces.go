package repositories

import (
	"context"

	"plp-rushdesk/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// PNMRepository defines PNM repository interface.
// No Delete: PNM records are never deleted by any flow.
type PNMRepository interface {
	Create(ctx context.Context, pnm *models.PNM) error
	GetByID(ctx context.Context, id uint) (*models.PNM, error)
	List(ctx context.Context) ([]*models.PNM, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
}

// ReferralRepository defines referral repository interface
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id uint) (*models.Referral, error)
	List(ctx context.Context) ([]*models.Referral, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
}
