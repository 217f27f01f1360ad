package currency

import (
	"sync"
	"time"
)

// Table holds the most recent successfully fetched rate snapshot. Updates
// are fail-soft: a failed or empty refresh leaves the previous snapshot
// intact, so readers always see the last good table.
type Table struct {
	mu        sync.RWMutex
	base      string
	rates     map[string]float64
	updatedAt time.Time
}

// NewTable creates a table seeded with the base currency at rate 1, so
// identity conversions work before the first refresh.
func NewTable(base string) *Table {
	return &Table{
		base:  base,
		rates: map[string]float64{base: 1},
	}
}

// Base returns the base currency the rates are expressed against.
func (t *Table) Base() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.base
}

// Update replaces the snapshot. Empty maps are ignored: stale rates beat
// no rates.
func (t *Table) Update(rates map[string]float64) {
	if len(rates) == 0 {
		return
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates = copied
	t.updatedAt = time.Now()
}

// Snapshot returns a copy of the current rate map for use in pure
// Convert calls.
func (t *Table) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	copied := make(map[string]float64, len(t.rates))
	for code, rate := range t.rates {
		copied[code] = rate
	}
	return copied
}

// UpdatedAt reports when the last successful refresh happened; zero if
// only the seed is present.
func (t *Table) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}
