package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/models"
)

func intPtr(n int) *int { return &n }

func statusByID(eval BadgeEvaluation) map[string]BadgeStatus {
	out := make(map[string]BadgeStatus, len(eval.Badges))
	for _, s := range eval.Badges {
		out[s.Badge.ID] = s
	}
	return out
}

func TestRuleFor(t *testing.T) {
	tests := []struct {
		badge   models.Badge
		want    BadgeRule
		wantErr bool
	}{
		{models.Badge{ID: "s", Category: models.BadgeCategoryStreak, Target: 7}, StreakThreshold{N: 7}, false},
		{models.Badge{ID: "c", Category: models.BadgeCategoryCompletions, Target: 10}, CumulativeCount{N: 10}, false},
		{models.Badge{ID: "r", Category: models.BadgeCategoryResilience, Target: 1, Event: "comeback"}, DiscreteEvent{Key: "comeback"}, false},
		{models.Badge{ID: "r2", Category: models.BadgeCategoryResilience, Target: 1}, nil, true},
		{models.Badge{ID: "x", Category: "mystery", Target: 1}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.badge.ID, func(t *testing.T) {
			got, err := RuleFor(tt.badge)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressDispatch(t *testing.T) {
	signal := BadgeSignal{CurrentStreak: intPtr(12), TotalCompletions: intPtr(-3), Events: map[string]bool{"comeback": true}}

	p, ok := Progress(StreakThreshold{N: 7}, 7, signal)
	assert.True(t, ok)
	assert.Equal(t, 7, p, "clamped to target")

	p, ok = Progress(CumulativeCount{N: 10}, 10, signal)
	assert.True(t, ok)
	assert.Equal(t, 0, p, "clamped to zero")

	p, ok = Progress(DiscreteEvent{Key: "comeback"}, 1, signal)
	assert.True(t, ok)
	assert.Equal(t, 1, p)

	_, ok = Progress(DiscreteEvent{Key: "other"}, 1, signal)
	assert.False(t, ok)

	_, ok = Progress(StreakThreshold{N: 7}, 7, BadgeSignal{})
	assert.False(t, ok, "nil counters leave streak badges untouched")
}

func TestCatalogIsValid(t *testing.T) {
	badges, err := Catalog()
	require.NoError(t, err)
	assert.NotEmpty(t, badges)

	categories := map[models.BadgeCategory]bool{}
	for _, b := range badges {
		categories[b.Category] = true
	}
	assert.True(t, categories[models.BadgeCategoryStreak])
	assert.True(t, categories[models.BadgeCategoryCompletions])
	assert.True(t, categories[models.BadgeCategoryResilience])
}

func TestParseCatalogRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"duplicate id":  "badges:\n  - {id: a, name: A, category: streak, target: 3}\n  - {id: a, name: B, category: streak, target: 5}\n",
		"zero target":   "badges:\n  - {id: a, name: A, category: streak, target: 0}\n",
		"missing event": "badges:\n  - {id: a, name: A, category: resilience, target: 1}\n",
		"not yaml":      "badges: [",
		"missing id":    "badges:\n  - {name: A, category: streak, target: 3}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEvaluateLazilyInitializesBadges(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	catalog, err := Catalog()
	require.NoError(t, err)

	eval, err := NewBadgeEngine(f.store, f.clock).Evaluate(f.ctx, testUser, BadgeSignal{})
	require.NoError(t, err)
	assert.Len(t, eval.Badges, len(catalog))
	assert.Empty(t, eval.NewlyUnlocked)

	rows, err := f.store.GetUserBadges(f.ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, rows, len(catalog))
	for _, r := range rows {
		assert.Zero(t, r.Progress)
		assert.False(t, r.Unlocked)
	}
}

func TestBadgePermanence(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	be := NewBadgeEngine(f.store, f.clock)

	eval, err := be.Evaluate(f.ctx, testUser, BadgeSignal{CurrentStreak: intPtr(8)})
	require.NoError(t, err)
	unlocked := map[string]bool{}
	for _, b := range eval.NewlyUnlocked {
		unlocked[b.ID] = true
	}
	assert.True(t, unlocked["streak-3"])
	assert.True(t, unlocked["streak-7"])
	assert.False(t, unlocked["streak-30"])

	eval, err = be.Evaluate(f.ctx, testUser, BadgeSignal{CurrentStreak: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, eval.NewlyUnlocked)
	byID := statusByID(eval)
	assert.True(t, byID["streak-7"].Progress.Unlocked, "unlocked badges are never re-locked")
	assert.Equal(t, 7, byID["streak-7"].Progress.Progress)
	assert.False(t, byID["streak-30"].Progress.Unlocked)
	assert.Equal(t, 0, byID["streak-30"].Progress.Progress, "locked progress follows the live value")

	eval, err = be.Evaluate(f.ctx, testUser, BadgeSignal{CurrentStreak: intPtr(9)})
	require.NoError(t, err)
	assert.Empty(t, eval.NewlyUnlocked, "unlock fires exactly once")
}

func TestResilienceBadgeNeedsExplicitEvent(t *testing.T) {
	f := newFixture(t, "2024-03-10")
	be := NewBadgeEngine(f.store, f.clock)

	eval, err := be.Evaluate(f.ctx, testUser, BadgeSignal{Events: map[string]bool{EventComeback: false}})
	require.NoError(t, err)
	assert.False(t, statusByID(eval)["comeback"].Progress.Unlocked)

	eval, err = be.Evaluate(f.ctx, testUser, BadgeSignal{Events: map[string]bool{EventComeback: true}})
	require.NoError(t, err)
	require.Len(t, eval.NewlyUnlocked, 1)
	assert.Equal(t, "comeback", eval.NewlyUnlocked[0].ID)
	assert.NotNil(t, statusByID(eval)["comeback"].Progress.UnlockedAt)
}
