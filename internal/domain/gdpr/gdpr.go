package gdpr

import (
	"errors"
	"strings"
	"time"
)

// RequestType classifies an inbound compliance request.
type RequestType string

const (
	TypeShopRedact     RequestType = "shop_redact"
	TypeCustomerRedact RequestType = "customer_redact"
	TypeDataRequest    RequestType = "data_request"
	// TypeUnknown records deliveries whose topic matched no known kind.
	// Such attempts are still part of the audit trail.
	TypeUnknown RequestType = "unknown"
)

// UnknownShopDomain is recorded when no shop domain could be extracted from
// either the payload or the delivery headers.
const UnknownShopDomain = "unknown"

// Domain errors
var (
	ErrEmptyID          = errors.New("record ID cannot be empty")
	ErrEmptyShopDomain  = errors.New("record shop domain cannot be empty")
	ErrInvalidType      = errors.New("request type must be one of: shop_redact, customer_redact, data_request, unknown")
	ErrMissingTimestamp = errors.New("record timestamp cannot be zero")
)

// ValidTypes contains all request type values a record may carry.
var ValidTypes = []RequestType{TypeShopRedact, TypeCustomerRedact, TypeDataRequest, TypeUnknown}

// Record is one immutable audit entry for an inbound compliance request.
// Exactly one Record exists per delivery, for every terminal outcome;
// ErrorMessage is set on any non-success path. Records are never updated or
// deleted, and the table they live in carries no foreign keys so the trail
// survives shop redaction.
type Record struct {
	ID            string      `json:"id"`
	ShopDomain    string      `json:"shop_domain"`
	RequestType   RequestType `json:"request_type"`
	CustomerID    string      `json:"customer_id,omitempty"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewRecord creates an audit record for one delivery.
// PRE: id is non-empty; shopDomain is non-empty (UnknownShopDomain when none
// could be extracted)
// POST: Returns a Record ready to append; errorMessage empty means success
func NewRecord(id, shopDomain string, requestType RequestType, createdAt time.Time) Record {
	return Record{
		ID:          id,
		ShopDomain:  shopDomain,
		RequestType: requestType,
		CreatedAt:   createdAt,
	}
}

// WithCustomer attaches the data subject's identifiers.
func (r Record) WithCustomer(customerID, customerEmail string) Record {
	r.CustomerID = customerID
	r.CustomerEmail = customerEmail
	return r
}

// WithError marks the record as a failed attempt.
// PRE: msg describes the failure; it must not contain payload plaintext
func (r Record) WithError(msg string) Record {
	r.ErrorMessage = msg
	return r
}

// Succeeded reports whether the recorded attempt completed without error.
func (r Record) Succeeded() bool {
	return r.ErrorMessage == ""
}

// Validate checks the record before it is appended.
// PRE: Record struct is populated
// POST: Returns nil if valid, the first violated constraint otherwise
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.ShopDomain) == "" {
		return ErrEmptyShopDomain
	}
	valid := false
	for _, t := range ValidTypes {
		if r.RequestType == t {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidType
	}
	if r.CreatedAt.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}
