package planner

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/testutil"
)

type PlannerSuite struct {
	suite.Suite
	planner *Planner
}

func TestPlannerSuite(t *testing.T) {
	suite.Run(t, new(PlannerSuite))
}

func (s *PlannerSuite) SetupTest() {
	p, err := New(DefaultCapacity, testutil.NopLogger())
	s.Require().NoError(err)
	s.planner = p
}

func quest(id int) model.Quest {
	return model.Quest{ID: model.QuestID(id), Title: "Quest", Points: 10}
}

func (s *PlannerSuite) TestAddKeepsInsertionOrder() {
	s.Equal(Added, s.planner.Add(quest(3)))
	s.Equal(Added, s.planner.Add(quest(1)))
	s.Equal(Added, s.planner.Add(quest(2)))

	items := s.planner.Items()
	s.Require().Len(items, 3)
	s.Equal(model.QuestID(3), items[0].ID)
	s.Equal(model.QuestID(1), items[1].ID)
	s.Equal(model.QuestID(2), items[2].ID)
}

func (s *PlannerSuite) TestAddSameIDIsIdempotent() {
	s.planner.Add(quest(1))

	result := s.planner.Add(model.Quest{ID: 1, Title: "Other title"})

	s.Equal(AlreadySelected, result)
	s.Equal(1, s.planner.Len())
	s.Equal("Quest", s.planner.Items()[0].Title)
}

func (s *PlannerSuite) TestAddBeyondCapacity() {
	for i := 1; i <= 4; i++ {
		s.Require().Equal(Added, s.planner.Add(quest(i)))
	}

	s.Equal(CapacityExceeded, s.planner.Add(quest(5)))
	s.Equal(4, s.planner.Len())
	s.False(s.planner.Contains(5))
}

func (s *PlannerSuite) TestDuplicateWhenFullReportsAlreadySelected() {
	for i := 1; i <= 4; i++ {
		s.planner.Add(quest(i))
	}

	s.Equal(AlreadySelected, s.planner.Add(quest(2)))
}

func (s *PlannerSuite) TestRemove() {
	s.planner.Add(quest(1))
	s.planner.Add(quest(2))
	s.planner.Add(quest(3))

	s.planner.Remove(2)

	s.False(s.planner.Contains(2))
	s.Equal([]model.Quest{quest(1), quest(3)}, s.planner.Items())
}

func (s *PlannerSuite) TestRemoveMissingIsNoop() {
	s.planner.Add(quest(1))
	notified := 0
	s.planner.Subscribe(func([]model.Quest) { notified++ })

	s.planner.Remove(99)

	s.Equal(1, s.planner.Len())
	s.Equal(0, notified)
}

func (s *PlannerSuite) TestRemoveFreesCapacity() {
	for i := 1; i <= 4; i++ {
		s.planner.Add(quest(i))
	}
	s.planner.Remove(1)

	s.Equal(Added, s.planner.Add(quest(5)))
}

func (s *PlannerSuite) TestClear() {
	s.planner.Add(quest(1))
	s.planner.Add(quest(2))

	s.planner.Clear()

	s.Equal(0, s.planner.Len())
	s.Empty(s.planner.Items())
	s.Equal(Added, s.planner.Add(quest(1)))
}

func (s *PlannerSuite) TestItemsReturnsCopy() {
	s.planner.Add(quest(1))

	items := s.planner.Items()
	items[0].Title = "mutated"

	s.Equal("Quest", s.planner.Items()[0].Title)
}

func (s *PlannerSuite) TestSubscribersSeeEachChange() {
	var snapshots [][]model.Quest
	s.planner.Subscribe(func(items []model.Quest) { snapshots = append(snapshots, items) })

	s.planner.Add(quest(1))
	s.planner.Add(quest(1))
	s.planner.Add(quest(2))
	s.planner.Remove(1)
	s.planner.Clear()

	s.Require().Len(snapshots, 4)
	s.Len(snapshots[0], 1)
	s.Len(snapshots[1], 2)
	s.Equal([]model.Quest{quest(2)}, snapshots[2])
	s.Empty(snapshots[3])
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0, testutil.NopLogger())
	require.Error(t, err)

	p, err := New(1, testutil.NopLogger())
	require.NoError(t, err)
	require.Equal(t, 1, p.Cap())
}

func TestRandomSequencesStayBoundedAndUnique(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 200; run++ {
		p, err := New(DefaultCapacity, testutil.NopLogger())
		require.NoError(t, err)

		for step := 0; step < 50; step++ {
			id := rng.IntN(8)
			if rng.IntN(3) == 0 {
				p.Remove(model.QuestID(id))
			} else {
				p.Add(quest(id))
			}

			items := p.Items()
			require.LessOrEqual(t, len(items), DefaultCapacity)
			seen := make(map[model.QuestID]bool)
			for _, q := range items {
				require.False(t, seen[q.ID], "duplicate id %d", q.ID)
				seen[q.ID] = true
			}
		}
	}
}
