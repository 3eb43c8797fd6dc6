package stamps

import (
	"fmt"
	"slices"

	"github.com/mcoot/tourcompanion/internal/model"
)

// DefaultCodes are the stamp codes of the standard quest, one per slot
var DefaultCodes = []string{"QUEST-STAMP-001", "QUEST-STAMP-002", "QUEST-STAMP-003"}

// Registry is the ordered list of valid codes. Slot i is unlocked by codes[i].
type Registry struct {
	codes []string
	slots map[string]int
}

// NewRegistry normalizes codes and rejects empty or duplicate entries
func NewRegistry(codes []string) (*Registry, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no codes", model.ErrInvalidRegistry)
	}

	r := &Registry{
		codes: make([]string, 0, len(codes)),
		slots: make(map[string]int, len(codes)),
	}
	for i, raw := range codes {
		code := Normalize(raw)
		if code == "" {
			return nil, fmt.Errorf("%w: code %d is empty", model.ErrInvalidRegistry, i)
		}
		if prev, ok := r.slots[code]; ok {
			return nil, fmt.Errorf("%w: %q appears at slots %d and %d", model.ErrInvalidRegistry, code, prev, i)
		}
		r.slots[code] = i
		r.codes = append(r.codes, code)
	}
	return r, nil
}

// DefaultRegistry returns the registry for DefaultCodes
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCodes)
	if err != nil {
		panic(err)
	}
	return r
}

// Slot returns the slot a normalized code unlocks
func (r *Registry) Slot(code string) (int, bool) {
	slot, ok := r.slots[code]
	return slot, ok
}

// Len is the number of slots
func (r *Registry) Len() int {
	return len(r.codes)
}

// Codes returns every registered stamp code
func (r *Registry) Codes() []string {
	return slices.Clone(r.codes)
}
