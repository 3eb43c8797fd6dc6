package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/services/cache"
	"github.com/mcoot/tourcompanion/internal/services/planner"
	"github.com/mcoot/tourcompanion/internal/services/routeguard"
	"github.com/mcoot/tourcompanion/internal/services/stamps"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case StatusView:
		o.printStatus(v)
	case RouteView:
		o.printRoute(v)
	case PlanView:
		o.printPlan(v)
	case ScanView:
		o.printScan(v)
	case ProgressView:
		o.printProgress(v)
	case PointsView:
		o.printPoints(v)
	case ChatListView:
		o.printChatList(v)
	case *model.ChatSessionDetail:
		o.printChatDetail(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// StatusView describes the current session
type StatusView struct {
	Status model.SessionStatus `json:"status"`
	User   *model.Identity     `json:"user,omitempty"`
}

// RouteView is a route guard decision
type RouteView struct {
	Location string            `json:"location"`
	Action   routeguard.Action `json:"action"`
	Target   string            `json:"target,omitempty"`
}

// PlanStep is the outcome of one planner operation
type PlanStep struct {
	Op      string            `json:"op"`
	QuestID model.QuestID     `json:"quest_id"`
	Result  planner.AddResult `json:"result,omitempty"`
}

// PlanView is the planner after a series of operations
type PlanView struct {
	Steps    []PlanStep    `json:"steps"`
	Quests   []model.Quest `json:"quests"`
	Capacity int           `json:"capacity"`
}

// ProgressView is a stamp progress snapshot
type ProgressView struct {
	Scanned     []string `json:"scanned"`
	Collected   []int    `json:"collected"`
	PendingSlot *int     `json:"pending_slot,omitempty"`
	TotalSlots  int      `json:"total_slots"`
	Complete    bool     `json:"complete"`
	Phase       string   `json:"phase"`
}

// ScanView is the outcome of one line of scanner input
type ScanView struct {
	Input    string       `json:"input"`
	Outcome  string       `json:"outcome"`
	Code     string       `json:"code,omitempty"`
	Slot     *int         `json:"slot,omitempty"`
	Progress ProgressView `json:"progress"`
}

// PointsView is the cached point total
type PointsView struct {
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// ChatListView is the chat history list
type ChatListView struct {
	Sessions []model.ChatSession `json:"sessions"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func progressView(p stamps.Progress) ProgressView {
	view := ProgressView{
		Scanned:    p.Scanned,
		Collected:  p.Collected,
		TotalSlots: p.TotalSlots,
		Complete:   p.Complete,
		Phase:      string(p.Phase),
	}
	if view.Scanned == nil {
		view.Scanned = []string{}
	}
	if p.HasPending() {
		slot := p.PendingSlot
		view.PendingSlot = &slot
	}
	return view
}

func pointsView(s cache.State[model.Points]) PointsView {
	return PointsView{Total: s.Data.Total, Error: s.Error}
}

func (o *Output) printStatus(s StatusView) {
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	if s.User != nil {
		guestStr := "no"
		if s.User.IsGuest {
			guestStr = "yes"
		}
		fmt.Fprintf(o.w, "User: %s (%s)\n", s.User.DisplayName, s.User.ID)
		if s.User.Email != "" {
			fmt.Fprintf(o.w, "Email: %s\n", s.User.Email)
		}
		fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
	}
}

func (o *Output) printRoute(r RouteView) {
	switch r.Action {
	case routeguard.ActionNone:
		fmt.Fprintf(o.w, "%s: stay\n", r.Location)
	default:
		fmt.Fprintf(o.w, "%s: %s -> %s\n", r.Location, r.Action, r.Target)
	}
}

func (o *Output) printPlan(p PlanView) {
	for _, step := range p.Steps {
		if step.Result != "" {
			fmt.Fprintf(o.w, "%s %d: %s\n", step.Op, step.QuestID, step.Result)
		} else {
			fmt.Fprintf(o.w, "%s %d\n", step.Op, step.QuestID)
		}
	}
	fmt.Fprintf(o.w, "Plan (%d/%d):\n", len(p.Quests), p.Capacity)
	for i, q := range p.Quests {
		fmt.Fprintf(o.w, "  %d. %s (#%d)\n", i+1, q.Title, q.ID)
	}
}

func (o *Output) printScan(s ScanView) {
	switch {
	case s.Outcome == "claimed" && s.Slot != nil:
		fmt.Fprintf(o.w, "Reward claimed for stamp %d\n", *s.Slot+1)
	case s.Slot != nil:
		fmt.Fprintf(o.w, "%s: %s (stamp %d)\n", s.Code, s.Outcome, *s.Slot+1)
	case s.Code != "":
		fmt.Fprintf(o.w, "%s: %s\n", s.Code, s.Outcome)
	default:
		fmt.Fprintf(o.w, "%q: %s\n", s.Input, s.Outcome)
	}
	if s.Progress.Complete {
		fmt.Fprintln(o.w, "All stamps collected!")
	}
}

func (o *Output) printProgress(p ProgressView) {
	fmt.Fprintf(o.w, "Stamps: %d/%d collected\n", len(p.Collected), p.TotalSlots)
	fmt.Fprintf(o.w, "Phase: %s\n", p.Phase)
	if p.PendingSlot != nil {
		fmt.Fprintf(o.w, "Reward waiting for stamp %d\n", *p.PendingSlot+1)
	}
	if p.Complete {
		fmt.Fprintln(o.w, "Quest complete!")
	}
}

func (o *Output) printPoints(p PointsView) {
	fmt.Fprintf(o.w, "Points: %d\n", p.Total)
	if p.Error != "" {
		fmt.Fprintf(o.w, "(last refresh failed: %s)\n", p.Error)
	}
}

func (o *Output) printChatList(l ChatListView) {
	if len(l.Sessions) == 0 {
		fmt.Fprintln(o.w, "No chat sessions")
		return
	}
	for _, s := range l.Sessions {
		fmt.Fprintf(o.w, "%s  %s  %s\n", s.ID, s.UpdatedAt.Format(time.DateTime), s.Title)
	}
}

func (o *Output) printChatDetail(d *model.ChatSessionDetail) {
	fmt.Fprintf(o.w, "%s (%s)\n", d.Title, d.ID)
	fmt.Fprintln(o.w, strings.Repeat("-", len(d.Title)))
	for _, m := range d.Messages {
		fmt.Fprintf(o.w, "[%s] %s: %s\n", m.SentAt.Format(time.TimeOnly), m.Role, m.Content)
	}
}
