package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OTP errors
var (
	ErrChallengeNotFound = errors.New("confirmation not found, request a new code")
	ErrChallengeExpired  = errors.New("code expired, request a new one")
	ErrTooManyAttempts   = errors.New("too many wrong attempts, request a new code")
	ErrWrongCode         = errors.New("incorrect code")
)

const (
	otpLength      = 6
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

// Challenge represents a pending phone-verification challenge awaiting a
// code. It is addressed by an opaque confirmation handle.
type Challenge struct {
	Code      string
	Phone     string
	ExpiresAt time.Time
	Attempts  int
}

// OTPService issues and verifies one-time codes for phone sign-in.
// Challenges live in memory only; a restart invalidates them all.
type OTPService struct {
	store   map[string]*Challenge // key = confirmation handle
	mu      sync.RWMutex
	done    chan struct{}
	stopped sync.Once
}

// NewOTPService creates a new OTP service and starts its cleanup loop
func NewOTPService() *OTPService {
	svc := &OTPService{
		store: make(map[string]*Challenge),
		done:  make(chan struct{}),
	}
	// Cleanup expired challenges every 5 minutes
	go svc.cleanupLoop()
	return svc
}

// Stop terminates the cleanup loop
func (s *OTPService) Stop() {
	s.stopped.Do(func() { close(s.done) })
}

// CreateChallenge generates a 6-digit code for a phone number and returns
// the confirmation handle plus the code (to be delivered out of band)
func (s *OTPService) CreateChallenge(phoneNumber string) (string, string, error) {
	code, err := generateSecureCode(otpLength)
	if err != nil {
		return "", "", fmt.Errorf("generate code: %w", err)
	}

	confirmationID := uuid.New().String()

	s.mu.Lock()
	s.store[confirmationID] = &Challenge{
		Code:      code,
		Phone:     phoneNumber,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	s.mu.Unlock()

	return confirmationID, code, nil
}

// Confirm checks the code against a pending challenge and returns the
// verified phone number on success
func (s *OTPService) Confirm(confirmationID, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[confirmationID]
	if !ok {
		return "", ErrChallengeNotFound
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(s.store, confirmationID)
		return "", ErrChallengeExpired
	}

	if entry.Attempts >= otpMaxAttempts {
		delete(s.store, confirmationID)
		return "", ErrTooManyAttempts
	}

	entry.Attempts++
	if entry.Code != code {
		return "", ErrWrongCode
	}

	return entry.Phone, nil
}

// Clear removes a challenge after successful sign-in
func (s *OTPService) Clear(confirmationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, confirmationID)
}

// cleanupLoop periodically removes expired challenges
func (s *OTPService) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.store {
				if time.Now().After(entry.ExpiresAt) {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// generateSecureCode generates a cryptographically secure random code
func generateSecureCode(length int) (string, error) {
	result := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		result += fmt.Sprintf("%d", n.Int64())
	}
	return result, nil
}
