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

// Referral service errors
var (
	ErrReferralNotFound = errors.New("referral not found")
	ErrFullNameRequired = errors.New("full name is required")
	ErrEmptyComment     = errors.New("comment text is empty")
)

// DefaultReferrer is recorded when no referring member is named
const DefaultReferrer = "Unknown Referrer"

// ReferralService handles referral submission, editing and comments
type ReferralService struct {
	referralRepo repositories.ReferralRepository
	pnmRepo      repositories.PNMRepository
	hub          *watch.Hub
}

// NewReferralService creates a new referral service
func NewReferralService(
	referralRepo repositories.ReferralRepository,
	pnmRepo repositories.PNMRepository,
	hub *watch.Hub,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		pnmRepo:      pnmRepo,
		hub:          hub,
	}
}

// CreateReferralInput represents a referral submission
type CreateReferralInput struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Instagram  string `json:"instagram"`
	Facebook   string `json:"facebook"`
	LinkedIn   string `json:"linkedin"`
	Grade      string `json:"grade"`
	Notes      string `json:"notes"`
	ReferredBy string `json:"referred_by"`
}

// Create submits a referral and creates the linked PNM record
func (s *ReferralService) Create(ctx context.Context, input *CreateReferralInput) (*models.Referral, error) {
	// 1. Full name is the only required field
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}

	// 2. Apply defaults
	grade := strings.ToUpper(strings.TrimSpace(input.Grade))
	if grade == "" {
		grade = "N/A"
	}
	referredBy := input.ReferredBy
	if referredBy == "" {
		referredBy = DefaultReferrer
	}

	contact := models.ContactInfo{
		Phone: input.Phone,
		Email: input.Email,
		SocialMediaLinks: models.SocialLinks{
			Instagram: input.Instagram,
			Facebook:  input.Facebook,
			LinkedIn:  input.LinkedIn,
		},
	}

	// 3. Create the PNM record (referral flow is the only PNM producer)
	pnm := &models.PNM{
		FullName:    input.FullName,
		ContactInfo: contact,
		Status:      domain.StatusPending,
		ReferredBy:  referredBy,
	}
	if err := s.pnmRepo.Create(ctx, pnm); err != nil {
		return nil, err
	}

	// 4. Create the referral
	referral := &models.Referral{
		PNMID:       pnm.ID,
		FullName:    input.FullName,
		ContactInfo: contact,
		Grade:       grade,
		Notes:       input.Notes,
		ReferredBy:  referredBy,
		Status:      domain.StatusPending,
		Comments:    models.CommentList{},
	}
	if err := s.referralRepo.Create(ctx, referral); err != nil {
		return nil, err
	}

	// 5. Notify both collections
	s.hub.Notify(watch.CollectionPNMs)
	s.hub.Notify(watch.CollectionReferrals)

	return referral, nil
}

// GetByID gets a referral by ID
func (s *ReferralService) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	referral, err := s.referralRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}
	return referral, nil
}

// List returns the full referrals collection
func (s *ReferralService) List(ctx context.Context) ([]*models.Referral, error) {
	return s.referralRepo.List(ctx)
}

// UpdateReferralInput is the explicit partial-update struct for a
// referral edit. Comments are deliberately absent: the thread is
// append-only through AddComment.
type UpdateReferralInput struct {
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Instagram  *string `json:"instagram"`
	Facebook   *string `json:"facebook"`
	LinkedIn   *string `json:"linkedin"`
	Grade      *string `json:"grade"`
	Notes      *string `json:"notes"`
	Status     *string `json:"status"`
	ReferredBy *string `json:"referred_by"`
}

// Update applies a referral edit and notifies subscribers
func (s *ReferralService) Update(ctx context.Context, id uint, input *UpdateReferralInput) (*models.Referral, error) {
	referral, err := s.referralRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
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
	if input.Grade != nil {
		grade := strings.ToUpper(strings.TrimSpace(*input.Grade))
		if grade == "" {
			grade = "N/A"
		}
		fields["grade"] = grade
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.ReferredBy != nil {
		fields["referred_by"] = *input.ReferredBy
	}
	if input.Phone != nil || input.Email != nil || input.Instagram != nil ||
		input.Facebook != nil || input.LinkedIn != nil {
		contact := referral.ContactInfo
		if input.Phone != nil {
			contact.Phone = *input.Phone
		}
		if input.Email != nil {
			contact.Email = *input.Email
		}
		if input.Instagram != nil {
			contact.SocialMediaLinks.Instagram = *input.Instagram
		}
		if input.Facebook != nil {
			contact.SocialMediaLinks.Facebook = *input.Facebook
		}
		if input.LinkedIn != nil {
			contact.SocialMediaLinks.LinkedIn = *input.LinkedIn
		}
		fields["contact_info"] = contact
	}

	if err := s.referralRepo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}

	s.hub.Notify(watch.CollectionReferrals)

	return s.referralRepo.GetByID(ctx, id)
}

// AddComment appends a timestamped, authored entry to a referral's
// comment thread. Author falls back to "Anonymous" when the caller has no
// display name or email.
//
// The append is a read of the current list followed by a whole-array
// write, not an atomic push: two commenters interleaving between read and
// write can lose one entry. That matches the source system's behavior and
// is kept as-is.
func (s *ReferralService) AddComment(ctx context.Context, referralID uint, text, author string) (*models.Comment, error) {
	// 1. Validate before any write is attempted
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	// 2. Load the referral (and its current comment list)
	referral, err := s.referralRepo.GetByID(ctx, referralID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}

	if author == "" {
		author = "Anonymous"
	}

	// 3. Append and write the whole list back
	comment := models.Comment{
		Text:      text,
		Author:    author,
		Timestamp: time.Now(),
	}
	comments := append(referral.Comments, comment)

	fields := map[string]interface{}{
		"comments":   comments,
		"updated_at": time.Now(),
	}
	if err := s.referralRepo.Updates(ctx, referralID, fields); err != nil {
		return nil, err
	}

	// 4. Notify subscribers; the caller also gets the new comment back
	// so the UI can show it before the next snapshot lands
	s.hub.Notify(watch.CollectionReferrals)

	return &comment, nil
}
