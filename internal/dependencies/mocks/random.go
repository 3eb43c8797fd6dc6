package mocks

import (
	"github.com/mcoot/tourcompanion/internal/dependencies/random"
)

// MockRandom replays queued values. Choice consumes the Intn queue as an
// index into its options.
type MockRandom struct {
	values []int
	next   int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom(values ...int) *MockRandom {
	return &MockRandom{values: values}
}

// Intn returns the next queued value modulo n, or 0 when the queue is empty
func (r *MockRandom) Intn(n int) int {
	if n <= 0 || r.next >= len(r.values) {
		return 0
	}
	v := r.values[r.next] % n
	r.next++
	return v
}

func (r *MockRandom) Choice(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.Intn(len(options))]
}

// Queue appends values to the replay queue
func (r *MockRandom) Queue(values ...int) {
	r.values = append(r.values, values...)
}
