package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"plp-rushdesk/internal/adapters/persistence/models"
	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/core/domain"
	"plp-rushdesk/internal/core/watch"

	"gorm.io/gorm"
)

// PNM service errors
var (
	ErrPNMNotFound   = errors.New("pnm not found")
	ErrInvalidStatus = errors.New("invalid pnm status")
)

// PNMService handles PNM dashboard business logic
type PNMService struct {
	pnmRepo repositories.PNMRepository
	hub     *watch.Hub
}

// NewPNMService creates a new PNM service
func NewPNMService(pnmRepo repositories.PNMRepository, hub *watch.Hub) *PNMService {
	return &PNMService{
		pnmRepo: pnmRepo,
		hub:     hub,
	}
}

// ListInput represents the dashboard filter controls
type ListInput struct {
	Status string // "" or "all" matches every status
	Search string // case-insensitive substring over name/email/phone
}

// List returns the filtered pnms collection. Filtering never mutates the
// underlying collection; the same stored state produces the full list
// again when the filters are cleared.
func (s *PNMService) List(ctx context.Context, input *ListInput) ([]*models.PNM, error) {
	pnms, err := s.pnmRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPNMs(pnms, input.Status, input.Search), nil
}

// FilterPNMs applies the dashboard filter policy: a record is shown if
// (status is "all"/empty OR equals the filter) AND (search is empty OR it
// case-insensitively matches full name, email substring, or phone
// substring).
func FilterPNMs(pnms []*models.PNM, status, search string) []*models.PNM {
	term := strings.ToLower(strings.TrimSpace(search))
	filtered := make([]*models.PNM, 0, len(pnms))

	for _, pnm := range pnms {
		if status != "" && status != domain.StatusAll && pnm.Status != status {
			continue
		}
		if term != "" && !matchesSearch(pnm, term) {
			continue
		}
		filtered = append(filtered, pnm)
	}
	return filtered
}

func matchesSearch(pnm *models.PNM, term string) bool {
	return strings.Contains(strings.ToLower(pnm.FullName), term) ||
		strings.Contains(strings.ToLower(pnm.ContactInfo.Email), term) ||
		strings.Contains(strings.ToLower(pnm.ContactInfo.Phone), term)
}

// GetByID gets a PNM by ID
func (s *PNMService) GetByID(ctx context.Context, id uint) (*models.PNM, error) {
	pnm, err := s.pnmRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPNMNotFound
		}
		return nil, err
	}
	return pnm, nil
}

// UpdatePNMInput is the explicit partial-update struct for a PNM edit.
// Nil fields are left untouched; provided fields overwrite unconditionally
// (last writer wins, no merge with concurrent changes).
type UpdatePNMInput struct {
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Status     *string `json:"status"`
	ReferredBy *string `json:"referred_by"`
}

// Update applies a dashboard edit and notifies subscribers
func (s *PNMService) Update(ctx context.Context, id uint, input *UpdatePNMInput) (*models.PNM, error) {
	pnm, err := s.pnmRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPNMNotFound
		}
		return nil, err
	}

	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, ErrInvalidStatus
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if input.FullName != nil {
		fields["full_name"] = *input.FullName
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.ReferredBy != nil {
		fields["referred_by"] = *input.ReferredBy
	}
	if input.Phone != nil || input.Email != nil {
		// Contact info lives in one JSON column, so a nested edit
		// rewrites the whole column with the merged value
		contact := pnm.ContactInfo
		if input.Phone != nil {
			contact.Phone = *input.Phone
		}
		if input.Email != nil {
			contact.Email = *input.Email
		}
		fields["contact_info"] = contact
	}

	if err := s.pnmRepo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}

	s.hub.Notify(watch.CollectionPNMs)

	return s.pnmRepo.GetByID(ctx, id)
}
