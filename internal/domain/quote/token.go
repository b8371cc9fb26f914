package quote

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// TokenPurpose distinguishes the two capabilities issued per quote
type TokenPurpose string

const (
	TokenPurposeAccept TokenPurpose = "accept"
	TokenPurposeReject TokenPurpose = "reject"
)

// DefaultTokenTTL is how long an accept/reject link stays valid
const DefaultTokenTTL = 14 * 24 * time.Hour

// AcceptToken is a single-use, expiring capability allowing an
// unauthenticated client to resolve a Quoted quote. Only the SHA-256
// hash of the secret is persisted; the plaintext is returned once at
// issue time for the notification channel.
type AcceptToken struct {
	shared.BaseEntity
	QuoteID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	Purpose    TokenPurpose `gorm:"type:varchar(10);not null"`
	SecretHash string       `gorm:"type:char(64);not null;uniqueIndex:idx_quote_tokens_secret"`
	ExpiresAt  time.Time    `gorm:"not null"`
	UsedAt     *time.Time
	Superseded bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AcceptToken) TableName() string {
	return "quote_tokens"
}

// IsExpired reports whether the token is past its expiry
func (t *AcceptToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsUsed reports whether the token has been consumed
func (t *AcceptToken) IsUsed() bool {
	return t.UsedAt != nil
}

// Outcome returns the quote status this token's redemption produces
func (t *AcceptToken) Outcome() QuoteStatus {
	if t.Purpose == TokenPurposeAccept {
		return QuoteStatusApproved
	}
	return QuoteStatusRejected
}

// TokenPair holds a freshly issued accept/reject pair together with the
// plaintext secrets, which exist only in memory at issue time.
type TokenPair struct {
	Accept       *AcceptToken
	Reject       *AcceptToken
	AcceptSecret string
	RejectSecret string
}

// NewTokenPair issues a fresh accept/reject token pair for a quote
func NewTokenPair(quoteID uuid.UUID, ttl time.Duration) (*TokenPair, error) {
	if quoteID == uuid.Nil {
		return nil, shared.NewValidationError("quote ID is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	expiresAt := time.Now().Add(ttl)

	acceptSecret, err := newTokenSecret()
	if err != nil {
		return nil, err
	}
	rejectSecret, err := newTokenSecret()
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Accept:       newAcceptToken(quoteID, TokenPurposeAccept, acceptSecret, expiresAt),
		Reject:       newAcceptToken(quoteID, TokenPurposeReject, rejectSecret, expiresAt),
		AcceptSecret: acceptSecret,
		RejectSecret: rejectSecret,
	}, nil
}

func newAcceptToken(quoteID uuid.UUID, purpose TokenPurpose, secret string, expiresAt time.Time) *AcceptToken {
	return &AcceptToken{
		BaseEntity: shared.NewBaseEntity(),
		QuoteID:    quoteID,
		Purpose:    purpose,
		SecretHash: HashTokenSecret(secret),
		ExpiresAt:  expiresAt,
	}
}

// HashTokenSecret returns the hex-encoded SHA-256 digest of a secret
func HashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func newTokenSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
