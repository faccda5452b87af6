package shop

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrNotFound    = errors.New("shop not found")
	ErrEmptyDomain = errors.New("shop domain cannot be empty")
	ErrEmptyToken  = errors.New("shop access token cannot be empty")
)

// Shop is one installed storefront. AccessToken is the platform API token
// and is always stored encrypted.
type Shop struct {
	ID            string     `json:"id"`
	Domain        string     `json:"domain"`
	AccessToken   string     `json:"-"`
	PrimaryLocale string     `json:"primary_locale"`
	InstalledAt   time.Time  `json:"installed_at"`
	UninstalledAt *time.Time `json:"uninstalled_at,omitempty"`
}

// Validate checks the Shop has valid data.
// PRE: Shop struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Shop) Validate() error {
	if strings.TrimSpace(s.Domain) == "" {
		return ErrEmptyDomain
	}
	if s.AccessToken == "" {
		return ErrEmptyToken
	}
	return nil
}

// MarkUninstalled records when the shop removed the app. The redaction
// webhook for the shop arrives on a delay after this.
func (s *Shop) MarkUninstalled(at time.Time) {
	s.UninstalledAt = &at
}
