package stamps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourcompanion/internal/dependencies/mocks"
	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/testutil"
)

type TrackerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	tracker *Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	s.tracker = New(DefaultRegistry(), s.clock, DefaultCooldown, testutil.NopLogger())
}

// scan waits out any cooldown before scanning
func (s *TrackerSuite) scan(raw string) ScanResult {
	s.clock.Advance(DefaultCooldown)
	return s.tracker.OnScan(raw)
}

func (s *TrackerSuite) TestStartsIdle() {
	p := s.tracker.Progress()
	s.Equal(PhaseIdle, p.Phase)
	s.Equal(3, p.TotalSlots)
	s.False(p.HasPending())
	s.False(p.Complete)
	s.Empty(p.Collected)
}

func (s *TrackerSuite) TestValidScanAwaitsClaim() {
	result := s.tracker.OnScan("https://www.quest-stamp-002")

	s.Equal(Accepted, result.Outcome)
	s.Equal("QUEST-STAMP-002", result.Code)
	s.Equal(1, result.Slot)
	s.Equal(PhaseAwaitingClaim, s.tracker.Phase())
	s.Equal(1, s.tracker.Progress().PendingSlot)
}

func (s *TrackerSuite) TestScansIgnoredWhileAwaitingClaim() {
	s.tracker.OnScan("QUEST-STAMP-001")

	result := s.scan("QUEST-STAMP-002")

	s.Equal(Ignored, result.Outcome)
	s.Equal([]string{"QUEST-STAMP-001"}, s.tracker.Progress().Scanned)
}

func (s *TrackerSuite) TestScansIgnoredDuringCooldown() {
	s.Equal(InvalidCode, s.tracker.OnScan("nonsense").Outcome)
	s.Equal(PhaseCoolingDown, s.tracker.Phase())

	s.clock.Advance(DefaultCooldown / 2)
	s.Equal(Ignored, s.tracker.OnScan("QUEST-STAMP-001").Outcome)

	s.clock.Advance(DefaultCooldown / 2)
	s.Equal(PhaseIdle, s.tracker.Phase())
	s.Equal(Accepted, s.tracker.OnScan("QUEST-STAMP-001").Outcome)
}

func (s *TrackerSuite) TestIgnoredScanDoesNotExtendCooldown() {
	s.tracker.OnScan("nonsense")
	s.clock.Advance(time.Second)
	s.tracker.OnScan("nonsense")

	s.clock.Advance(time.Second)

	s.Equal(PhaseIdle, s.tracker.Phase())
}

func (s *TrackerSuite) TestCooldownRemaining() {
	s.tracker.OnScan("nonsense")
	s.clock.Advance(500 * time.Millisecond)

	s.Equal(1500*time.Millisecond, s.tracker.Progress().CooldownRemaining)
}

func (s *TrackerSuite) TestInvalidCodeCarriesNormalizedCode() {
	result := s.tracker.OnScan("  www.somewhere-else ")

	s.Equal(InvalidCode, result.Outcome)
	s.Equal("SOMEWHERE-ELSE", result.Code)
	s.Empty(s.tracker.Progress().Scanned)
}

func (s *TrackerSuite) TestSameCodeTwiceIsAlreadyScanned() {
	s.Require().Equal(Accepted, s.tracker.OnScan("QUEST-STAMP-001").Outcome)
	_, err := s.tracker.OpenReward()
	s.Require().NoError(err)

	result := s.scan("quest-stamp-001")

	s.Equal(AlreadyScanned, result.Outcome)
	s.Equal(PhaseCoolingDown, s.tracker.Phase())
	s.Len(s.tracker.Progress().Collected, 1)
}

func (s *TrackerSuite) TestOpenRewardCollectsSlot() {
	s.tracker.OnScan("QUEST-STAMP-003")

	slot, err := s.tracker.OpenReward()

	s.Require().NoError(err)
	s.Equal(2, slot)
	p := s.tracker.Progress()
	s.Equal([]int{2}, p.Collected)
	s.False(p.HasPending())
}

func (s *TrackerSuite) TestOpenRewardWithoutPending() {
	_, err := s.tracker.OpenReward()
	s.ErrorIs(err, model.ErrNoPendingReward)
}

func (s *TrackerSuite) TestCollectAllInAnyOrder() {
	for _, code := range []string{"QUEST-STAMP-003", "QUEST-STAMP-001", "QUEST-STAMP-002"} {
		s.Require().Equal(Accepted, s.scan(code).Outcome)
		s.Require().False(s.tracker.Complete())
		_, err := s.tracker.OpenReward()
		s.Require().NoError(err)
	}

	s.True(s.tracker.Complete())
	p := s.tracker.Progress()
	s.Equal([]int{0, 1, 2}, p.Collected)
	s.True(p.Complete)
}

func (s *TrackerSuite) TestReset() {
	s.tracker.OnScan("QUEST-STAMP-001")
	_, _ = s.tracker.OpenReward()

	s.tracker.Reset()

	p := s.tracker.Progress()
	s.Empty(p.Scanned)
	s.Empty(p.Collected)
	s.Equal(PhaseIdle, p.Phase)
	s.Equal(Accepted, s.tracker.OnScan("QUEST-STAMP-001").Outcome)
}

func (s *TrackerSuite) TestSubscribersSeeProcessedScansAndClaims() {
	var phases []Phase
	s.tracker.Subscribe(func(p Progress) { phases = append(phases, p.Phase) })

	s.tracker.OnScan("QUEST-STAMP-001")
	s.tracker.OnScan("QUEST-STAMP-002") // ignored, no notification
	_, _ = s.tracker.OpenReward()

	s.Equal([]Phase{PhaseAwaitingClaim, PhaseCoolingDown}, phases)
}

func (s *TrackerSuite) TestZeroCooldown() {
	tracker := New(DefaultRegistry(), s.clock, 0, testutil.NopLogger())

	s.Equal(InvalidCode, tracker.OnScan("x").Outcome)
	s.Equal(InvalidCode, tracker.OnScan("y").Outcome)
}
