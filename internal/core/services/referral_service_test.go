package services

import (
	"context"
	"testing"

	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/core/domain"
	"plp-rushdesk/internal/core/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReferralService(t *testing.T) (*ReferralService, *PNMService, *watch.Hub) {
	db := setupTestDB(t)
	referralRepo := repositories.NewReferralRepository(db)
	pnmRepo := repositories.NewPNMRepository(db)
	hub := watch.NewHub()
	return NewReferralService(referralRepo, pnmRepo, hub), NewPNMService(pnmRepo, hub), hub
}

func TestReferralService_Create(t *testing.T) {
	svc, pnmSvc, hub := newTestReferralService(t)

	pnmSignal, unsubPNMs := hub.Subscribe(watch.CollectionPNMs)
	defer unsubPNMs()
	refSignal, unsubRefs := hub.Subscribe(watch.CollectionReferrals)
	defer unsubRefs()

	referral, err := svc.Create(context.Background(), &CreateReferralInput{
		FullName:   "John Smith",
		Phone:      "+11234567890",
		Email:      "john@example.com",
		Instagram:  "@johnsmith",
		Grade:      "b+",
		Notes:      "Met at the open house",
		ReferredBy: "Mike Jones",
	})
	require.NoError(t, err)

	assert.NotZero(t, referral.ID)
	assert.Equal(t, "B+", referral.Grade) // uppercased
	assert.Equal(t, domain.StatusPending, referral.Status)
	assert.Equal(t, "Mike Jones", referral.ReferredBy)
	assert.NotNil(t, referral.Comments)
	assert.Empty(t, referral.Comments)

	// The linked PNM record is created alongside the referral
	require.NotZero(t, referral.PNMID)
	pnm, err := pnmSvc.GetByID(context.Background(), referral.PNMID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", pnm.FullName)
	assert.Equal(t, domain.StatusPending, pnm.Status)
	assert.Equal(t, "+11234567890", pnm.ContactInfo.Phone)

	// Both collections are notified
	select {
	case <-pnmSignal:
	default:
		t.Fatal("create did not notify pnms subscribers")
	}
	select {
	case <-refSignal:
	default:
		t.Fatal("create did not notify referrals subscribers")
	}
}

func TestReferralService_Create_Defaults(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{
		FullName: "Bare Minimum",
	})
	require.NoError(t, err)

	assert.Equal(t, "N/A", referral.Grade)
	assert.Equal(t, DefaultReferrer, referral.ReferredBy)
	assert.Equal(t, domain.StatusPending, referral.Status)
}

func TestReferralService_Create_FullNameRequired(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	_, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "   "})
	assert.ErrorIs(t, err, ErrFullNameRequired)

	// Nothing was written
	referrals, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, referrals)
}

func TestReferralService_Update(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{
		FullName: "John Smith",
		Grade:    "B",
	})
	require.NoError(t, err)

	grade := "a-"
	status := domain.StatusAccepted
	updated, err := svc.Update(context.Background(), referral.ID, &UpdateReferralInput{
		Grade:  &grade,
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, "A-", updated.Grade)
	assert.Equal(t, domain.StatusAccepted, updated.Status)
	assert.Equal(t, "John Smith", updated.FullName)
}

func TestReferralService_Update_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	bad := "Maybe"
	_, err = svc.Update(context.Background(), referral.ID, &UpdateReferralInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestReferralService_AddComment(t *testing.T) {
	svc, _, hub := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	signal, unsubscribe := hub.Subscribe(watch.CollectionReferrals)
	defer unsubscribe()

	comment, err := svc.AddComment(context.Background(), referral.ID, "  Great guy, met him at rush week  ", "Mike Jones")
	require.NoError(t, err)

	assert.Equal(t, "Great guy, met him at rush week", comment.Text)
	assert.Equal(t, "Mike Jones", comment.Author)
	assert.False(t, comment.Timestamp.IsZero())

	select {
	case <-signal:
	default:
		t.Fatal("comment did not notify referrals subscribers")
	}
}

func TestReferralService_AddComment_AppendsInOrder(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), referral.ID, "first", "A")
	require.NoError(t, err)
	_, err = svc.AddComment(context.Background(), referral.ID, "second", "B")
	require.NoError(t, err)

	stored, err := svc.GetByID(context.Background(), referral.ID)
	require.NoError(t, err)

	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "first", stored.Comments[0].Text)
	assert.Equal(t, "second", stored.Comments[1].Text)
}

func TestReferralService_AddComment_EmptyTextRejectedBeforeWrite(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), referral.ID, "   ", "Mike Jones")
	assert.ErrorIs(t, err, ErrEmptyComment)

	stored, err := svc.GetByID(context.Background(), referral.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Comments)
}

func TestReferralService_AddComment_AnonymousFallback(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	comment, err := svc.AddComment(context.Background(), referral.ID, "no author given", "")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", comment.Author)
}

func TestReferralService_AddComment_UnknownReferral(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	_, err := svc.AddComment(context.Background(), 999, "hello", "Mike Jones")
	assert.ErrorIs(t, err, ErrReferralNotFound)
}

func TestReferralService_UpdateCannotTouchComments(t *testing.T) {
	svc, _, _ := newTestReferralService(t)

	referral, err := svc.Create(context.Background(), &CreateReferralInput{FullName: "John Smith"})
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), referral.ID, "keep me", "A")
	require.NoError(t, err)

	// A full-field edit leaves the thread intact
	name := "John Q. Smith"
	notes := "updated notes"
	updated, err := svc.Update(context.Background(), referral.ID, &UpdateReferralInput{
		FullName: &name,
		Notes:    &notes,
	})
	require.NoError(t, err)

	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "keep me", updated.Comments[0].Text)
}
