// Package gainers holds the session-scoped accumulator of observed top
// gainers and the rolling weekly ledger they are consolidated into.
package gainers

import "time"

// Readable timestamp layout, e.g. "01-06-25 10:30:05.123456 AM EST"
const readableLayout = "01-02-06 03:04:05.000000 PM MST"

// Record is a single observed top gainer. Immutable once created; the JSON
// field names are the store's wire format.
type Record struct {
	Symbol    string `json:"symbol"`
	Timestamp int64  `json:"timestamp"` // epoch seconds
	Day       string `json:"day"`       // full weekday name, e.g. "Monday"
	ISO       string `json:"datetime_iso"`
	Readable  string `json:"datetime_readable"`
}

// NewRecord stamps a symbol with the observation time. The weekday tag and
// both rendered timestamps derive from observed's location, so callers pass
// time already localized to the exchange timezone.
func NewRecord(symbol string, observed time.Time) Record {
	return Record{
		Symbol:    symbol,
		Timestamp: observed.Unix(),
		Day:       observed.Weekday().String(),
		ISO:       observed.Format(time.RFC3339Nano),
		Readable:  observed.Format(readableLayout),
	}
}
