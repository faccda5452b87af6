package locale

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyShopID   = errors.New("preference shop ID cannot be empty")
	ErrEmptyCustomer = errors.New("preference must identify a customer by id or email")
	ErrEmptyLocale   = errors.New("preference locale cannot be empty")
)

// Preference records the storefront language a customer chose in a shop.
// This is personal data: it ties a customer identity to behavior and is
// removed on customer or shop redaction.
type Preference struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Locale        string    `json:"locale"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the Preference has valid data.
func (p *Preference) Validate() error {
	if p.ShopID == "" {
		return ErrEmptyShopID
	}
	if p.CustomerID == "" && p.CustomerEmail == "" {
		return ErrEmptyCustomer
	}
	if p.Locale == "" {
		return ErrEmptyLocale
	}
	return nil
}
