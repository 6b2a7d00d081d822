package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// customersEnvelope is the object form of a customer document
type customersEnvelope struct {
	Customers []Raw `json:"customers"`
}

// Decode parses a JSON array of customer records, or an object with a
// "customers" array, and normalizes every record.
func Decode(data []byte) ([]types.CustomerRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Message: "empty customer document"}
	}

	var raws []Raw
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, &DecodeError{Message: "failed to unmarshal customer array", Cause: err}
		}
	case '{':
		var envelope customersEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &DecodeError{Message: "failed to unmarshal customer object", Cause: err}
		}
		raws = envelope.Customers
	default:
		return nil, &DecodeError{Message: "customer document must be a JSON array or object"}
	}

	records := make([]types.CustomerRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}
	return records, nil
}

// LoadFile reads and decodes a customer document from disk
func LoadFile(path string) ([]types.CustomerRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return Decode(content)
}
