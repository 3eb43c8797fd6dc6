package planner

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/notify"
)

// DefaultCapacity is the number of quests a plan holds unless configured otherwise
const DefaultCapacity = 4

// AddResult reports what Add did
type AddResult string

const (
	Added            AddResult = "added"
	AlreadySelected  AddResult = "already_selected"
	CapacityExceeded AddResult = "capacity_exceeded"
)

// Planner is a bounded, duplicate-free set of quests kept in insertion order
type Planner struct {
	mu       sync.Mutex
	items    []model.Quest
	capacity int

	logger    *slog.Logger
	listeners *notify.Broadcaster[[]model.Quest]
}

// New creates an empty planner. capacity must be at least 1.
func New(capacity int, logger *slog.Logger) (*Planner, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("planner capacity must be at least 1, got %d", capacity)
	}
	logger = logger.With(slog.String("component", "planner"))
	return &Planner{
		items:     make([]model.Quest, 0, capacity),
		capacity:  capacity,
		logger:    logger,
		listeners: notify.New[[]model.Quest](logger, "planner-listeners"),
	}, nil
}

// Add appends q unless a quest with the same ID is present or the plan is full
func (p *Planner) Add(q model.Quest) AddResult {
	p.mu.Lock()
	if p.indexOf(q.ID) >= 0 {
		p.mu.Unlock()
		return AlreadySelected
	}
	if len(p.items) >= p.capacity {
		p.mu.Unlock()
		p.logger.Debug("plan is full", slog.Int("quest_id", int(q.ID)), slog.Int("capacity", p.capacity))
		return CapacityExceeded
	}
	p.items = append(p.items, q)
	snapshot := slices.Clone(p.items)
	p.mu.Unlock()

	p.listeners.Publish(snapshot)
	return Added
}

// Remove drops the quest with the given ID, if present
func (p *Planner) Remove(id model.QuestID) {
	p.mu.Lock()
	i := p.indexOf(id)
	if i < 0 {
		p.mu.Unlock()
		return
	}
	p.items = slices.Delete(p.items, i, i+1)
	snapshot := slices.Clone(p.items)
	p.mu.Unlock()

	p.listeners.Publish(snapshot)
}

// Clear empties the plan
func (p *Planner) Clear() {
	p.mu.Lock()
	if len(p.items) == 0 {
		p.mu.Unlock()
		return
	}
	p.items = p.items[:0]
	p.mu.Unlock()

	p.listeners.Publish([]model.Quest{})
}

// Contains reports whether a quest with the given ID is selected
func (p *Planner) Contains(id model.QuestID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.indexOf(id) >= 0
}

// Items returns the selected quests in insertion order
func (p *Planner) Items() []model.Quest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.items)
}

// Len returns the number of planned quests
func (p *Planner) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Cap returns the maximum number of quests the planner accepts
func (p *Planner) Cap() int {
	return p.capacity
}

// Subscribe registers fn for every change of the selection
func (p *Planner) Subscribe(fn func([]model.Quest)) func() {
	return p.listeners.Subscribe(fn)
}

func (p *Planner) indexOf(id model.QuestID) int {
	return slices.IndexFunc(p.items, func(q model.Quest) bool { return q.ID == id })
}
