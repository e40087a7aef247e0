package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsAreStrictlyIncreasing(t *testing.T) {
	assert.Equal(t, 0, Levels[0].MinXP)
	for i := 1; i < len(Levels); i++ {
		assert.Greater(t, Levels[i].MinXP, Levels[i-1].MinXP, "level %d", Levels[i].Level)
		assert.Equal(t, Levels[i-1].Level+1, Levels[i].Level)
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name     string
		xp       int
		level    int
		title    string
		progress float64
		max      bool
	}{
		{"zero", 0, 1, "Novice", 0, false},
		{"negative clamps to zero", -50, 1, "Novice", 0, false},
		{"halfway to level 2", 50, 1, "Novice", 50, false},
		{"exact threshold", 100, 2, "Apprentice", 0, false},
		{"between thresholds", 175, 2, "Apprentice", 50, false},
		{"last level", 7500, 10, "Legend", 100, true},
		{"beyond last level", 1_000_000, 10, "Legend", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ResolveLevel(tt.xp)
			assert.Equal(t, tt.level, info.Level)
			assert.Equal(t, tt.title, info.Title)
			assert.InDelta(t, tt.progress, info.ProgressPercent, 0.0001)
			assert.Equal(t, tt.max, info.MaxLevel)
		})
	}
}

func TestResolveLevelIsMonotonic(t *testing.T) {
	prev := ResolveLevel(0).Level
	for xp := 0; xp <= 9000; xp += 7 {
		level := ResolveLevel(xp).Level
		assert.GreaterOrEqual(t, level, prev, "xp %d", xp)
		prev = level
	}
}

func TestResolveLevelBounds(t *testing.T) {
	info := ResolveLevel(300)
	assert.Equal(t, 250, info.CurrentLevelXP)
	assert.Equal(t, 500, info.NextLevelXP)
	assert.Equal(t, 300, info.XP)
}

func TestLevelTitle(t *testing.T) {
	assert.Equal(t, "Novice", LevelTitle(1))
	assert.Equal(t, "Legend", LevelTitle(10))
	assert.Empty(t, LevelTitle(11))
}
