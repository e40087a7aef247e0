package progression

import (
	"context"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// BadgeStatus joins a catalog badge with one user's progress on it.
type BadgeStatus struct {
	Badge    models.Badge     `json:"badge"`
	Progress models.UserBadge `json:"progress"`
}

// BadgeEvaluation is the state of every catalog badge for a user after an
// evaluation, plus the badges this evaluation unlocked.
type BadgeEvaluation struct {
	UserID        string         `json:"user_id"`
	Badges        []BadgeStatus  `json:"badges"`
	NewlyUnlocked []models.Badge `json:"newly_unlocked"`
}

// BadgeEngine maintains per-user badge progress. Unlocks are permanent.
type BadgeEngine struct {
	store storage.Provider
	clock utils.Clock
}

func NewBadgeEngine(store storage.Provider, clock utils.Clock) *BadgeEngine {
	return &BadgeEngine{store: store, clock: clock}
}

func (e *BadgeEngine) catalog(ctx context.Context) ([]models.Badge, error) {
	badges, err := e.store.GetBadges(ctx)
	if err != nil {
		return nil, err
	}
	if len(badges) > 0 {
		return badges, nil
	}
	if _, err := SyncCatalog(ctx, e.store); err != nil {
		return nil, err
	}
	return e.store.GetBadges(ctx)
}

// Evaluate applies signal to every catalog badge of userID. Badges the user
// has no row for yet are created at progress 0 first.
func (e *BadgeEngine) Evaluate(ctx context.Context, userID string, signal BadgeSignal) (BadgeEvaluation, error) {
	badges, err := e.catalog(ctx)
	if err != nil {
		return BadgeEvaluation{}, err
	}
	existing, err := e.store.GetUserBadges(ctx, userID)
	if err != nil {
		return BadgeEvaluation{}, err
	}
	byBadge := make(map[string]models.UserBadge, len(existing))
	for _, ub := range existing {
		byBadge[ub.BadgeID] = ub
	}

	eval := BadgeEvaluation{UserID: userID, Badges: make([]BadgeStatus, 0, len(badges))}
	for _, b := range badges {
		ub, ok := byBadge[b.ID]
		dirty := !ok
		if !ok {
			ub = models.UserBadge{ID: uuid.New().String(), UserID: userID, BadgeID: b.ID}
		}

		if !ub.Unlocked {
			rule, err := RuleFor(b)
			if err != nil {
				logger.Warn("Skipping badge with invalid rule", "badge", b.ID, "error", err)
			} else if progress, ok := Progress(rule, b.Target, signal); ok && progress != ub.Progress {
				ub.Progress = progress
				dirty = true
			}
			if ub.Progress >= b.Target {
				now := e.clock.Now()
				ub.Progress = b.Target
				ub.Unlocked = true
				ub.UnlockedAt = &now
				dirty = true
				eval.NewlyUnlocked = append(eval.NewlyUnlocked, b)
			}
		}

		if dirty {
			if err := e.store.UpsertUserBadge(ctx, ub); err != nil {
				return BadgeEvaluation{}, err
			}
		}
		eval.Badges = append(eval.Badges, BadgeStatus{Badge: b, Progress: ub})
	}

	for _, b := range eval.NewlyUnlocked {
		logger.Info("Badge unlocked", "user", userID, "badge", b.ID)
	}
	return eval, nil
}
