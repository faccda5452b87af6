package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Header names the platform sets on every webhook delivery.
const (
	HeaderSignature  = "X-Shopify-Hmac-Sha256"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

// Topic identifies the kind of compliance webhook, as sent by the platform.
type Topic string

const (
	TopicShopRedact     Topic = "shop/redact"
	TopicCustomerRedact Topic = "customers/redact"
	TopicDataRequest    Topic = "customers/data_request"
)

// Domain errors
var (
	ErrMalformedPayload = errors.New("payload does not match a recognized compliance shape")
)

// Request is one inbound webhook delivery: the exact raw body bytes plus the
// platform headers. Header values are extracted for logging only and are
// attacker-controlled whenever the signature is invalid.
type Request struct {
	Body       []byte
	Signature  string // base64 HMAC-SHA256 from the signature header
	ShopDomain string
	Topic      string
	WebhookID  string
}

// Customer identifies the data subject of a customer-scoped request.
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// CompliancePayload is the decoded body of a compliance webhook. ShopDomain
// is required for every topic; Customer and OrdersRequested apply only to
// customer-scoped topics.
type CompliancePayload struct {
	ShopDomain      string    `json:"shop_domain"`
	Customer        *Customer `json:"customer,omitempty"`
	OrdersRequested []int64   `json:"orders_requested,omitempty"`
}

// HasCustomer reports whether the payload identifies a customer by id or email.
func (p *CompliancePayload) HasCustomer() bool {
	return p.Customer != nil && (p.Customer.ID != 0 || p.Customer.Email != "")
}

// Verified pairs the signature verdict with the independently parsed payload.
// Valid and Payload are independent facts: a body can parse but fail
// verification, or carry a correct signature yet fail to parse.
type Verified struct {
	Valid      bool
	Payload    *CompliancePayload
	ShopDomain string
	Topic      string
	WebhookID  string
}

// ValidSignature reports whether body was signed with secret. It computes
// HMAC-SHA256 over the exact raw bytes, never a re-serialized form, and
// compares against the base64-decoded signature in constant time.
// PRE: body is the unmodified request body
// POST: true only when the signature matches; empty or undecodable
// signatures and an empty secret are always invalid
func ValidSignature(body []byte, signatureB64, secret string) bool {
	if secret == "" || signatureB64 == "" {
		return false
	}
	provided, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// Sign computes the base64 HMAC-SHA256 signature for body. Used by tests and
// by tooling that replays deliveries.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Decode parses body into the compliance payload shape.
// PRE: none; body may be arbitrary bytes
// POST: Returns the payload, or ErrMalformedPayload; never a partial payload
func Decode(body []byte) (*CompliancePayload, error) {
	var p CompliancePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

// Verify evaluates a delivery's signature and payload independently.
// POST: Verified.Valid reflects only the signature; Verified.Payload is nil
// when the body does not parse, regardless of signature validity
func Verify(req Request, secret string) Verified {
	payload, err := Decode(req.Body)
	if err != nil {
		payload = nil
	}
	return Verified{
		Valid:      ValidSignature(req.Body, req.Signature, secret),
		Payload:    payload,
		ShopDomain: req.ShopDomain,
		Topic:      req.Topic,
		WebhookID:  req.WebhookID,
	}
}
