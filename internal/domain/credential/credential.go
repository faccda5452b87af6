package credential

import (
	"errors"
	"time"
)

// Translation provider identifiers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderDeepL       = "deepl"
	ProviderGoogle      = "google"
)

// Domain errors
var (
	ErrEmptyShopID   = errors.New("credential shop ID cannot be empty")
	ErrEmptyProvider = errors.New("credential provider cannot be empty")
	ErrEmptyToken    = errors.New("credential token cannot be empty")
)

// Credential is a shop's API token for a translation provider. Tokens are
// encrypted at rest; rows written before encryption was introduced hold
// plaintext until the backfill tool re-encrypts them.
type Credential struct {
	ID        string     `json:"id"`
	ShopID    string     `json:"shop_id"`
	Provider  string     `json:"provider"`
	Token     string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the Credential has valid data.
func (c *Credential) Validate() error {
	if c.ShopID == "" {
		return ErrEmptyShopID
	}
	if c.Provider == "" {
		return ErrEmptyProvider
	}
	if c.Token == "" {
		return ErrEmptyToken
	}
	return nil
}
