package progression

import "github.com/julianstephens/habitlit/internal/models"

// LevelThreshold is the minimum XP needed to reach a level.
type LevelThreshold struct {
	Level int
	Title string
	MinXP int
}

// Levels must stay strictly increasing in MinXP and start at 0.
var Levels = []LevelThreshold{
	{Level: 1, Title: "Novice", MinXP: 0},
	{Level: 2, Title: "Apprentice", MinXP: 100},
	{Level: 3, Title: "Initiate", MinXP: 250},
	{Level: 4, Title: "Adept", MinXP: 500},
	{Level: 5, Title: "Practitioner", MinXP: 1000},
	{Level: 6, Title: "Expert", MinXP: 1750},
	{Level: 7, Title: "Veteran", MinXP: 2750},
	{Level: 8, Title: "Master", MinXP: 4000},
	{Level: 9, Title: "Grandmaster", MinXP: 5500},
	{Level: 10, Title: "Legend", MinXP: 7500},
}

// ResolveLevel maps an XP total onto the level ladder. It never fails:
// negative XP resolves as 0 and XP beyond the last threshold clamps to the
// maximum level with 100% progress.
func ResolveLevel(xp int) models.LevelInfo {
	if xp < 0 {
		xp = 0
	}

	idx := 0
	for i, l := range Levels {
		if xp >= l.MinXP {
			idx = i
		} else {
			break
		}
	}
	current := Levels[idx]

	info := models.LevelInfo{
		Level:          current.Level,
		Title:          current.Title,
		XP:             xp,
		CurrentLevelXP: current.MinXP,
	}
	if idx == len(Levels)-1 {
		info.NextLevelXP = current.MinXP
		info.ProgressPercent = 100
		info.MaxLevel = true
		return info
	}

	next := Levels[idx+1]
	info.NextLevelXP = next.MinXP
	info.ProgressPercent = float64(xp-current.MinXP) / float64(next.MinXP-current.MinXP) * 100
	return info
}

// LevelTitle returns the title of level, or "" for levels off the ladder.
func LevelTitle(level int) string {
	for _, l := range Levels {
		if l.Level == level {
			return l.Title
		}
	}
	return ""
}
