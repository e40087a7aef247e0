package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/progression"
)

type StreakCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID, ID prefix or title. Omit to show all habits."`
}

func (c *StreakCmd) Run(ctx *Context) error {
	bg := context.Background()
	if c.Habit != "" {
		habit, err := ctx.findHabit(bg, c.Habit)
		if err != nil {
			return err
		}
		s, err := ctx.Engine.GetStreak(bg, habit.ID)
		if err != nil {
			return err
		}
		printStreak(habit.Title, s)
		return nil
	}

	habits, err := ctx.Engine.ListHabits(bg, ctx.User, false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	for _, h := range habits {
		s, err := ctx.Engine.GetStreak(bg, h.ID)
		if err != nil {
			return err
		}
		printStreak(h.Title, s)
	}
	return nil
}

func printStreak(title string, s progression.StreakResult) {
	last := s.LastCompleted
	if last == "" {
		last = "never"
	}
	fmt.Printf("%-24s current %3d  best %3d  total %4d  last %s\n", title, s.Current, s.Longest, s.Total, last)
}

type LevelCmd struct{}

func (c *LevelCmd) Run(ctx *Context) error {
	profile, err := ctx.Engine.GetProfile(context.Background(), ctx.User)
	if err != nil {
		return err
	}
	printLevel(progression.ResolveLevel(profile.XP))
	fmt.Printf("Longest streak ever: %d days\n", profile.LongestStreak)
	return nil
}

type BadgesCmd struct {
	Locked bool `help:"Only show badges not yet unlocked."`
}

func (c *BadgesCmd) Run(ctx *Context) error {
	statuses, err := ctx.Engine.ListBadges(context.Background(), ctx.User)
	if err != nil {
		return err
	}

	unlocked := 0
	for _, s := range statuses {
		if s.Progress.Unlocked {
			unlocked++
			if c.Locked {
				continue
			}
			when := ""
			if s.Progress.UnlockedAt != nil {
				when = " (unlocked " + s.Progress.UnlockedAt.Format(constants.DateFormat) + ")"
			}
			fmt.Printf("🏅 %-20s %s%s\n", s.Badge.Name, s.Badge.Description, when)
			continue
		}
		pct := float64(s.Progress.Progress) / float64(s.Badge.Target) * 100
		fmt.Printf("🔒 %-20s %s [%s] %d/%d\n", s.Badge.Name, s.Badge.Description, bar(pct, 10), s.Progress.Progress, s.Badge.Target)
	}
	fmt.Printf("\n%d of %d badges unlocked\n", unlocked, len(statuses))
	return nil
}

type XPCmd struct {
	Award XPAwardCmd `cmd:"" help:"Grant XP manually (subject to the daily cap)."`
}

type XPAwardCmd struct {
	Amount int    `arg:"" help:"XP to grant."`
	Reason string `help:"Free-form note written to the log."`
}

func (c *XPAwardCmd) Run(ctx *Context) error {
	award, err := ctx.Engine.AwardXP(context.Background(), ctx.User, c.Amount)
	if err != nil {
		return err
	}
	if award.Granted < c.Amount {
		fmt.Printf("+%d XP (daily cap reached, %d not granted)\n", award.Granted, c.Amount-award.Granted)
	} else {
		fmt.Printf("+%d XP\n", award.Granted)
	}
	if r := strings.TrimSpace(c.Reason); r != "" {
		logger.Info("Manual XP award", "user", ctx.User, "amount", award.Granted, "reason", r)
	}
	printEvents(award.Events)
	printLevel(award.Level)
	return nil
}

type ReconcileCmd struct{}

func (c *ReconcileCmd) Run(ctx *Context) error {
	report, err := ctx.Engine.Reconcile(context.Background(), ctx.User)
	if err != nil {
		return err
	}
	fmt.Printf("Reconciled %d habits for %q\n", report.Habits, report.UserID)
	if report.XPGranted > 0 {
		fmt.Printf("+%d XP recovered\n", report.XPGranted)
	}
	printEvents(report.Events)
	printLevel(report.Level)
	return nil
}
