package billing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// timeLayout is the export timestamp once its zone offset is dropped.
const timeLayout = "2006-01-02T15:04:05"

type exportCost struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

type exportRecord struct {
	LineItemID string      `json:"lineItemId"`
	StartTime  string      `json:"startTime"`
	EndTime    string      `json:"endTime"`
	Cost       *exportCost `json:"cost"`
}

// ParseRecords decodes an export object. Any malformed record fails the whole object.
func ParseRecords(data []byte) ([]entity.CostRecord, error) {
	var raw []exportRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding export object: %w", err)
	}

	records := make([]entity.CostRecord, 0, len(raw))
	for i, item := range raw {
		endTime, err := ParseEndTime(item.EndTime)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if item.Cost == nil || item.Cost.Amount == nil {
			return nil, fmt.Errorf("record %d (%s): missing cost amount", i, item.LineItemID)
		}
		records = append(records, entity.CostRecord{
			EndTime:    endTime,
			LineItemID: item.LineItemID,
			Amount:     *item.Cost.Amount,
			Currency:   item.Cost.Currency,
		})
	}
	return records, nil
}

// ParseEndTime parses an export timestamp, ignoring its zone offset.
// "2014-02-01T00:00:00-08:00" becomes 2014-02-01 00:00:00 UTC.
func ParseEndTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "Z"):
		v = strings.TrimSuffix(v, "Z")
	case len(v) > 6 && (v[len(v)-6] == '+' || v[len(v)-6] == '-') && v[len(v)-3] == ':':
		v = v[:len(v)-6]
	}
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid end time %q: %w", value, err)
	}
	return t, nil
}
