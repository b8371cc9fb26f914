package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/shopspring/decimal"
)

// SubmitQuoteItem is one requested line in a public submission
type SubmitQuoteItem struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    int
}

// SubmitAsset describes one reference image the submitter wants to upload
type SubmitAsset struct {
	FileName    string
	ContentType string
}

// SubmitQuoteRequest is the input for a public quote submission
type SubmitQuoteRequest struct {
	Email       string
	Name        string
	ClientType  string
	Description string
	Items       []SubmitQuoteItem
	Assets      []SubmitAsset
}

// AssetUploadTarget is a presigned upload slot returned to the submitter
type AssetUploadTarget struct {
	AssetID   uuid.UUID `json:"asset_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitQuoteResponse is the result of a public submission
type SubmitQuoteResponse struct {
	Quote        QuoteResponse       `json:"quote"`
	AssetUploads []AssetUploadTarget `json:"asset_uploads,omitempty"`
}

// ReplyRequest is the staff input for pricing a quote
type ReplyRequest struct {
	Amount  decimal.Decimal
	Message string
}

// ReplyResponse carries the freshly issued token secrets. They are
// returned exactly once, for the notification channel to deliver.
type ReplyResponse struct {
	Quote        QuoteResponse `json:"quote"`
	AcceptToken  string        `json:"accept_token"`
	RejectToken  string        `json:"reject_token"`
	TokenExpires time.Time     `json:"token_expires"`
}

// TokenActionResponse is the result of redeeming an accept/reject token
type TokenActionResponse struct {
	QuoteID         uuid.UUID         `json:"quote_id"`
	Status          quote.QuoteStatus `json:"status"`
	AlreadyResolved bool              `json:"already_resolved"`
}

// ConvertResponse is the result of converting a quote to a project
type ConvertResponse struct {
	QuoteID          uuid.UUID `json:"quote_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	AlreadyConverted bool      `json:"already_converted"`
}

// QuoteItemResponse is one line of a quote in API responses
type QuoteItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Quantity    int        `json:"quantity"`
}

// QuoteAssetResponse is one reference image in API responses
type QuoteAssetResponse struct {
	ID          uuid.UUID `json:"id"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
}

// QuoteResponse is the API representation of a quote
type QuoteResponse struct {
	ID           uuid.UUID            `json:"id"`
	ClientID     uuid.UUID            `json:"client_id"`
	Description  string               `json:"description"`
	Status       quote.QuoteStatus    `json:"status"`
	QuotedAmount *decimal.Decimal     `json:"quoted_amount,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	Items        []QuoteItemResponse  `json:"items"`
	Assets       []QuoteAssetResponse `json:"assets,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ToQuoteResponse maps a quote aggregate to its API representation
func ToQuoteResponse(q *quote.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:           q.ID,
		ClientID:     q.ClientID,
		Description:  q.Description,
		Status:       q.Status,
		QuotedAmount: q.QuotedAmount,
		Notes:        q.Notes,
		Items:        make([]QuoteItemResponse, 0, len(q.Items)),
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
	for i := range q.Items {
		item := q.Items[i]
		resp.Items = append(resp.Items, QuoteItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}
	for i := range q.Assets {
		asset := q.Assets[i]
		resp.Assets = append(resp.Assets, QuoteAssetResponse{
			ID:          asset.ID,
			StorageKey:  asset.StorageKey,
			ContentType: asset.ContentType,
			Status:      string(asset.Status),
		})
	}
	return resp
}
