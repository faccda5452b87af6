package translation

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyShopID = errors.New("translation shop ID cannot be empty")
	ErrEmptyLocale = errors.New("translation locale cannot be empty")
)

// Translation is one translated storefront resource field, scoped to a shop.
type Translation struct {
	ID             string    `json:"id"`
	ShopID         string    `json:"shop_id"`
	ResourceType   string    `json:"resource_type"` // product, collection, page, ...
	ResourceID     string    `json:"resource_id"`
	Locale         string    `json:"locale"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the Translation has valid data.
func (t *Translation) Validate() error {
	if t.ShopID == "" {
		return ErrEmptyShopID
	}
	if t.Locale == "" {
		return ErrEmptyLocale
	}
	return nil
}
