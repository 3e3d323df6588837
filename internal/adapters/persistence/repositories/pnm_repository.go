package repositories

import (
	"context"

	"plp-rushdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// pnmRepository implements PNMRepository interface
type pnmRepository struct {
	db *gorm.DB
}

// NewPNMRepository creates a new PNM repository
func NewPNMRepository(db *gorm.DB) PNMRepository {
	return &pnmRepository{db: db}
}

// Create creates a new PNM record
func (r *pnmRepository) Create(ctx context.Context, pnm *models.PNM) error {
	return r.db.WithContext(ctx).Create(pnm).Error
}

// GetByID gets a PNM by ID
func (r *pnmRepository) GetByID(ctx context.Context, id uint) (*models.PNM, error) {
	var pnm models.PNM
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pnm).Error
	if err != nil {
		return nil, err
	}
	return &pnm, nil
}

// List returns the full pnms collection in insertion order
func (r *pnmRepository) List(ctx context.Context) ([]*models.PNM, error) {
	pnms := make([]*models.PNM, 0)
	err := r.db.WithContext(ctx).Order("id").Find(&pnms).Error
	if err != nil {
		return nil, err
	}
	return pnms, nil
}

// Updates writes only the given fields. Unconditional last-write-wins:
// no version check, no merge with concurrent writers.
func (r *pnmRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.PNM{}).
		Where("id = ?", id).
		Updates(fields).Error
}
