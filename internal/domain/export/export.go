package export

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Status constants for the export lifecycle.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
)

// DownloadTTL is how long a compiled export stays downloadable. Compiled
// exports are themselves personal data; the retention worker purges them
// once the window passes.
const DownloadTTL = 7 * 24 * time.Hour

const bcryptCost = 12

// Domain errors.
var (
	ErrNotFound      = errors.New("export not found")
	ErrTokenInvalid  = errors.New("download token is invalid")
	ErrExpired       = errors.New("export download window has expired")
	ErrNotReady      = errors.New("export not ready for download")
	ErrEmptyShopID   = errors.New("export shop ID cannot be empty")
	ErrEmptyCustomer = errors.New("export must identify a customer by id or email")
	ErrEmptyToken    = errors.New("export token hash cannot be empty")
)

// Export is one compiled data-access-request document. Payload holds the
// encrypted JSON document; TokenHash is the bcrypt hash of the download
// token. The plaintext token appears only in the notification email sent to
// the customer, never at rest.
type Export struct {
	ID            string     `json:"id"`
	ShopID        string     `json:"shop_id"`
	CustomerID    string     `json:"customer_id"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Orders        []int64    `json:"orders,omitempty"`
	Payload       string     `json:"-"`
	TokenHash     string     `json:"-"`
	Status        string     `json:"status"`
	RequestedAt   time.Time  `json:"requested_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DownloadedAt  *time.Time `json:"downloaded_at,omitempty"`
}

// Document is the compiled payload of a data access request: everything the
// app holds about one customer in one shop.
type Document struct {
	ShopDomain        string             `json:"shop_domain"`
	CustomerID        string             `json:"customer_id"`
	CustomerEmail     string             `json:"customer_email,omitempty"`
	OrdersRequested   []int64            `json:"orders_requested,omitempty"`
	LocalePreferences []PreferenceRecord `json:"locale_preferences"`
	CompiledAt        time.Time          `json:"compiled_at"`
}

// PreferenceRecord is one stored locale choice included in the document.
type PreferenceRecord struct {
	Locale    string    `json:"locale"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToJSON serializes the Document for encryption and storage.
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// NewDownloadToken generates a download capability token.
// POST: Returns 64 hex characters from a cryptographically random source
func NewDownloadToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate download token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken hashes a download token for storage.
// PRE: token is non-empty
// POST: Returns a bcrypt hash; the plaintext token is never stored
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash download token: %w", err)
	}
	return string(hash), nil
}

// MarkReady transitions the export to ready with its encrypted payload.
// PRE: Status is pending; payload is the encrypted document
// POST: Status set to ready, CompletedAt set
func (e *Export) MarkReady(payload string, completedAt time.Time) error {
	if e.Status != StatusPending {
		return ErrNotReady
	}
	e.Status = StatusReady
	e.Payload = payload
	e.CompletedAt = &completedAt
	return nil
}

// MarkDownloaded records that the export was served.
// PRE: Status is ready
// POST: DownloadedAt set
func (e *Export) MarkDownloaded(at time.Time) error {
	if e.Status != StatusReady {
		return ErrNotReady
	}
	e.DownloadedAt = &at
	return nil
}

// CheckToken verifies a presented token against the stored hash.
// POST: Returns nil on match, ErrTokenInvalid otherwise
func (e *Export) CheckToken(token string) error {
	if bcrypt.CompareHashAndPassword([]byte(e.TokenHash), []byte(token)) != nil {
		return ErrTokenInvalid
	}
	return nil
}

// Expired reports whether the download window has passed.
func (e *Export) Expired(now time.Time) bool {
	return now.After(e.RequestedAt.Add(DownloadTTL))
}

// CanDownload checks readiness, expiry, and the token, in that order.
// POST: Returns nil when the export may be served; ErrNotReady, ErrExpired,
// or ErrTokenInvalid otherwise
func (e *Export) CanDownload(token string, now time.Time) error {
	if e.Status != StatusReady {
		return ErrNotReady
	}
	if e.Expired(now) {
		return ErrExpired
	}
	return e.CheckToken(token)
}

// Validate checks the Export has valid data before it is persisted.
func (e *Export) Validate() error {
	if e.ShopID == "" {
		return ErrEmptyShopID
	}
	if e.CustomerID == "" && e.CustomerEmail == "" {
		return ErrEmptyCustomer
	}
	if e.TokenHash == "" {
		return ErrEmptyToken
	}
	return nil
}
