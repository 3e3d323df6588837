package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPService_TwoPhaseFlow(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	confirmationID, code, err := svc.CreateChallenge("+11234567890")
	require.NoError(t, err)
	assert.NotEmpty(t, confirmationID)
	assert.Len(t, code, otpLength)

	phone, err := svc.Confirm(confirmationID, code)
	require.NoError(t, err)
	assert.Equal(t, "+11234567890", phone)
}

func TestOTPService_UnknownConfirmation(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	_, err := svc.Confirm("no-such-handle", "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestOTPService_WrongCode(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	confirmationID, code, err := svc.CreateChallenge("+11234567890")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err = svc.Confirm(confirmationID, wrong)
	assert.ErrorIs(t, err, ErrWrongCode)

	// The challenge survives a wrong guess; the right code still works
	phone, err := svc.Confirm(confirmationID, code)
	require.NoError(t, err)
	assert.Equal(t, "+11234567890", phone)
}

func TestOTPService_TooManyAttempts(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	confirmationID, code, err := svc.CreateChallenge("+11234567890")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < otpMaxAttempts; i++ {
		_, err = svc.Confirm(confirmationID, wrong)
		assert.ErrorIs(t, err, ErrWrongCode)
	}

	// Attempt budget is spent, even the right code is rejected now
	_, err = svc.Confirm(confirmationID, code)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// And the challenge is gone
	_, err = svc.Confirm(confirmationID, code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestOTPService_ExpiredChallenge(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	confirmationID, code, err := svc.CreateChallenge("+11234567890")
	require.NoError(t, err)

	svc.mu.Lock()
	svc.store[confirmationID].ExpiresAt = time.Now().Add(-time.Second)
	svc.mu.Unlock()

	_, err = svc.Confirm(confirmationID, code)
	assert.ErrorIs(t, err, ErrChallengeExpired)
}

func TestOTPService_ClearConsumesChallenge(t *testing.T) {
	svc := NewOTPService()
	defer svc.Stop()

	confirmationID, code, err := svc.CreateChallenge("+11234567890")
	require.NoError(t, err)

	svc.Clear(confirmationID)

	_, err = svc.Confirm(confirmationID, code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}
