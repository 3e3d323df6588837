package repositories

import (
	"context"

	"plp-rushdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// referralRepository implements ReferralRepository interface
type referralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

// Create creates a new referral
func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

// GetByID gets a referral by ID
func (r *referralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

// List returns the full referrals collection in insertion order
func (r *referralRepository) List(ctx context.Context) ([]*models.Referral, error) {
	referrals := make([]*models.Referral, 0)
	err := r.db.WithContext(ctx).Order("id").Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}

// Updates writes only the given fields. Unconditional last-write-wins.
func (r *referralRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ?", id).
		Updates(fields).Error
}
