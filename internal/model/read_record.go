package model

import (
	"time"

	"github.com/nao1215/qrreader/internal/outcome"
)

// ReadRecord is the summary of a stored read used for history listings.
// It carries no image data and no internal error text.
type ReadRecord struct {
	ID        int64           `json:"id"`
	RequestID string          `json:"request_id,omitempty"`
	URL       string          `json:"url"`
	DateRead  time.Time       `json:"date_read"`
	Outcome   outcome.Outcome `json:"outcome"`
	Digest    string          `json:"sha3_256,omitempty"` //nolint:tagliatelle // algorithm name
	Format    string          `json:"format,omitempty"`
}
