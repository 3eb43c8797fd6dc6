package stamps

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/tourcompanion/internal/dependencies/clock"
	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/notify"
)

// DefaultCooldown is how long scans are ignored after one is processed
const DefaultCooldown = 2 * time.Second

// noSlot marks that no reward is waiting to be claimed
const noSlot = -1

// Phase is the tracker's position in the scan state machine
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseCoolingDown   Phase = "cooling_down"
	PhaseAwaitingClaim Phase = "awaiting_claim"
)

// Outcome is what a scan did
type Outcome string

const (
	// Ignored scans arrived during the cooldown or while a reward awaits its claim
	Ignored        Outcome = "ignored"
	AlreadyScanned Outcome = "already_scanned"
	InvalidCode    Outcome = "invalid_code"
	Accepted       Outcome = "accepted"
)

// ScanResult reports a scan's outcome. Code is the normalized code (empty
// when Ignored) and Slot is set only when Accepted.
type ScanResult struct {
	Outcome Outcome
	Code    string
	Slot    int
}

// Progress is a snapshot of the tracker
type Progress struct {
	Scanned     []string
	Collected   []int
	PendingSlot int // -1 when no reward awaits its claim
	TotalSlots  int
	Complete    bool
	Phase       Phase
	// CooldownRemaining is zero unless Phase is PhaseCoolingDown
	CooldownRemaining time.Duration
}

// HasPending reports whether a reward awaits its claim
func (p Progress) HasPending() bool {
	return p.PendingSlot != noSlot
}

// Tracker drives the stamp collection quest from raw scans
type Tracker struct {
	registry *Registry
	clock    clock.Clock
	cooldown time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	scanned     []string
	collected   map[int]bool
	pendingSlot int
	// cooldownUntil is the earliest time the next scan is processed
	cooldownUntil time.Time

	listeners *notify.Broadcaster[Progress]
}

// New creates a tracker with nothing collected. A non-positive cooldown
// disables the debounce.
func New(registry *Registry, clk clock.Clock, cooldown time.Duration, logger *slog.Logger) *Tracker {
	logger = logger.With(slog.String("component", "stamps"))
	return &Tracker{
		registry:    registry,
		clock:       clk,
		cooldown:    cooldown,
		logger:      logger,
		collected:   make(map[int]bool),
		pendingSlot: noSlot,
		listeners:   notify.New[Progress](logger, "stamp-listeners"),
	}
}

// OnScan processes one raw scanned string
func (t *Tracker) OnScan(raw string) ScanResult {
	t.mu.Lock()
	if phase := t.phase(); phase != PhaseIdle {
		t.mu.Unlock()
		t.logger.Debug("scan ignored", slog.String("phase", string(phase)))
		return ScanResult{Outcome: Ignored, Slot: noSlot}
	}

	code := Normalize(raw)
	t.cooldownUntil = t.clock.Now().Add(t.cooldown)

	var result ScanResult
	switch slot, valid := t.registry.Slot(code); {
	case slices.Contains(t.scanned, code):
		result = ScanResult{Outcome: AlreadyScanned, Code: code, Slot: noSlot}
	case valid:
		t.scanned = append(t.scanned, code)
		t.pendingSlot = slot
		result = ScanResult{Outcome: Accepted, Code: code, Slot: slot}
	default:
		result = ScanResult{Outcome: InvalidCode, Code: code, Slot: noSlot}
	}
	progress := t.progress()
	t.mu.Unlock()

	t.logger.Debug("scan processed",
		slog.String("outcome", string(result.Outcome)),
		slog.String("code", code))
	t.listeners.Publish(progress)
	return result
}

// OpenReward claims the pending reward and returns its slot
func (t *Tracker) OpenReward() (int, error) {
	t.mu.Lock()
	slot := t.pendingSlot
	if slot == noSlot {
		t.mu.Unlock()
		return noSlot, model.ErrNoPendingReward
	}
	if t.collected[slot] {
		t.mu.Unlock()
		panic(fmt.Sprintf("stamps: pending slot %d is already collected", slot))
	}
	t.collected[slot] = true
	t.pendingSlot = noSlot
	progress := t.progress()
	t.mu.Unlock()

	t.logger.Info("reward claimed",
		slog.Int("slot", slot),
		slog.Int("collected", len(progress.Collected)),
		slog.Int("total", progress.TotalSlots))
	t.listeners.Publish(progress)
	return slot, nil
}

// Complete reports whether every slot has been collected
func (t *Tracker) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.collected) == t.registry.Len()
}

// Phase returns the current collection phase
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase()
}

// Progress returns a snapshot of collected and remaining stamps
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress()
}

// Reset discards all progress
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.scanned = nil
	t.collected = make(map[int]bool)
	t.pendingSlot = noSlot
	t.cooldownUntil = time.Time{}
	progress := t.progress()
	t.mu.Unlock()

	t.listeners.Publish(progress)
}

// Subscribe registers fn for every progress change
func (t *Tracker) Subscribe(fn func(Progress)) func() {
	return t.listeners.Subscribe(fn)
}

func (t *Tracker) phase() Phase {
	if t.pendingSlot != noSlot {
		return PhaseAwaitingClaim
	}
	if clock.Until(t.clock, t.cooldownUntil) > 0 {
		return PhaseCoolingDown
	}
	return PhaseIdle
}

func (t *Tracker) progress() Progress {
	collected := make([]int, 0, len(t.collected))
	for slot := range t.collected {
		collected = append(collected, slot)
	}
	sort.Ints(collected)

	p := Progress{
		Scanned:     slices.Clone(t.scanned),
		Collected:   collected,
		PendingSlot: t.pendingSlot,
		TotalSlots:  t.registry.Len(),
		Complete:    len(collected) == t.registry.Len(),
		Phase:       t.phase(),
	}
	if p.Phase == PhaseCoolingDown {
		p.CooldownRemaining = clock.Until(t.clock, t.cooldownUntil)
	}
	return p
}
