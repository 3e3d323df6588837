package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig holds Google OAuth configuration
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleService handles the Google authorization-code flow
type GoogleService struct {
	oauth *oauth2.Config
}

// GoogleProfile represents the Google userinfo response
type GoogleProfile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// NewGoogleService creates a new Google service
func NewGoogleService(cfg GoogleConfig) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// GetLoginURL generates the Google authorization URL
func (s *GoogleService) GetLoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code and fetches the profile
func (s *GoogleService) ExchangeCode(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	return s.getProfile(token.AccessToken)
}

// getProfile fetches the Google userinfo profile
func (s *GoogleService) getProfile(accessToken string) (*GoogleProfile, error) {
	req, err := http.NewRequest("GET", googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo error: %s", string(body))
	}

	var profile GoogleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// ToProviderProfile converts a Google profile to the provider identity
// consumed by AuthService. Name parts fall back to splitting the full
// display name when given/family names are absent.
func (p *GoogleProfile) ToProviderProfile() *ProviderProfile {
	first, last := p.GivenName, p.FamilyName
	if first == "" && p.Name != "" {
		parts := strings.SplitN(p.Name, " ", 2)
		first = parts[0]
		if len(parts) > 1 {
			last = parts[1]
		}
	}
	return &ProviderProfile{
		Email:     p.Email,
		FirstName: first,
		LastName:  last,
		PhotoURL:  p.Picture,
	}
}
