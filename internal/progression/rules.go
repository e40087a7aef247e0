package progression

import (
	"fmt"

	"github.com/julianstephens/habitlit/internal/models"
)

// BadgeRule is the unlock condition of a catalog badge. It is one of
// StreakThreshold, CumulativeCount or DiscreteEvent.
type BadgeRule interface {
	badgeRule()
}

// StreakThreshold unlocks when a habit's current streak reaches N days.
type StreakThreshold struct{ N int }

// CumulativeCount unlocks when lifetime successful completions reach N.
type CumulativeCount struct{ N int }

// DiscreteEvent unlocks when the caller reports that Key occurred.
type DiscreteEvent struct{ Key string }

func (StreakThreshold) badgeRule() {}
func (CumulativeCount) badgeRule() {}
func (DiscreteEvent) badgeRule() {}

// EventComeback is reported when a habit resumes after a broken streak.
const EventComeback = "comeback"

// BadgeSignal carries the counters a badge evaluation may read. Nil counters
// and missing events leave the matching badges untouched.
type BadgeSignal struct {
	CurrentStreak    *int            `json:"current_streak,omitempty"`
	TotalCompletions *int            `json:"total_completions,omitempty"`
	Events           map[string]bool `json:"events,omitempty"`
}

// RuleFor builds the rule of a catalog badge from its category.
func RuleFor(b models.Badge) (BadgeRule, error) {
	switch b.Category {
	case models.BadgeCategoryStreak:
		return StreakThreshold{N: b.Target}, nil
	case models.BadgeCategoryCompletions:
		return CumulativeCount{N: b.Target}, nil
	case models.BadgeCategoryResilience:
		if b.Event == "" {
			return nil, fmt.Errorf("badge %s: resilience badges need an event", b.ID)
		}
		return DiscreteEvent{Key: b.Event}, nil
	default:
		return nil, fmt.Errorf("badge %s: unknown category %q", b.ID, b.Category)
	}
}

// Progress evaluates rule against signal. ok is false when the signal says
// nothing about the rule. target is the badge target the result is clamped to.
func Progress(rule BadgeRule, target int, signal BadgeSignal) (progress int, ok bool) {
	switch r := rule.(type) {
	case StreakThreshold:
		if signal.CurrentStreak == nil {
			return 0, false
		}
		progress = *signal.CurrentStreak
	case CumulativeCount:
		if signal.TotalCompletions == nil {
			return 0, false
		}
		progress = *signal.TotalCompletions
	case DiscreteEvent:
		if !signal.Events[r.Key] {
			return 0, false
		}
		progress = target
	default:
		return 0, false
	}
	return min(max(progress, 0), target), true
}
