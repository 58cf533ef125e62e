package gainers

import "time"

// Accumulator collects the gainers observed during one trading session.
// Insertion order is preserved and symbols are unique: the first observation
// of a symbol wins, later duplicates within the session are dropped. It is
// owned by the polling loop and is not safe for concurrent use.
type Accumulator struct {
	records []Record
	seen    map[string]struct{}
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		seen: make(map[string]struct{}),
	}
}

// Ingest appends a record for every symbol not yet present, stamped with
// observed. Re-ingesting the same hit set is a no-op. Returns the number of
// symbols actually added.
func (a *Accumulator) Ingest(symbols []string, observed time.Time) int {
	added := 0
	for _, symbol := range symbols {
		if symbol == "" {
			continue
		}
		if _, ok := a.seen[symbol]; ok {
			continue
		}
		a.seen[symbol] = struct{}{}
		a.records = append(a.records, NewRecord(symbol, observed))
		added++
	}
	return added
}

// Records returns a copy of the current contents in first-seen order
func (a *Accumulator) Records() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// Drain returns the current contents and empties the accumulator. Called
// exactly once per session, after a successful consolidation.
func (a *Accumulator) Drain() []Record {
	out := a.records
	a.records = nil
	a.seen = make(map[string]struct{})
	return out
}

// Len returns the number of accumulated records
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Empty reports whether nothing has been accumulated this session
func (a *Accumulator) Empty() bool {
	return len(a.records) == 0
}
