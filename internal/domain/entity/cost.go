package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostRecord is one line item inside a daily per-project billing export object.
type CostRecord struct {
	EndTime    time.Time       `json:"end_time"`
	LineItemID string          `json:"line_item_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
}
