package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlit/internal/progression"
)

type CompleteCmd struct {
	Habit      string `arg:"" help:"Habit ID, ID prefix or title."`
	Percentage int    `short:"p" help:"Share of the daily goal achieved (0-100)." default:"100"`
	Date       string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	habit, err := ctx.findHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	date, err := ctx.resolveDate(bg, c.Date)
	if err != nil {
		return err
	}

	out, err := ctx.Engine.RecordCompletion(bg, habit.ID, ctx.User, date, c.Percentage)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %d%% for %q on %s\n", c.Percentage, habit.Title, date)
	printOutcome(out)
	return nil
}

type UndoCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *UndoCmd) Run(ctx *Context) error {
	bg := context.Background()
	habit, err := ctx.findHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	date, err := ctx.resolveDate(bg, c.Date)
	if err != nil {
		return err
	}

	out, err := ctx.Engine.RemoveCompletion(bg, habit.ID, date)
	if err != nil {
		return err
	}
	fmt.Printf("Removed completion of %q on %s\n", habit.Title, date)
	fmt.Printf("Current streak: %d days\n", out.Streak.Current)
	printEvents(out.Events)
	if out.RewardsPending {
		fmt.Printf("⚠️  Streak not updated (%s). Run 'habitlit reconcile' to repair.\n", out.PendingReason)
	}
	return nil
}

func printOutcome(out progression.Outcome) {
	if out.XPGranted > 0 {
		fmt.Printf("+%d XP\n", out.XPGranted)
	}
	fmt.Printf("Current streak: %d days (best %d)\n", out.Streak.Current, out.Streak.Longest)
	printEvents(out.Events)
	if out.RewardsPending {
		fmt.Printf("⚠️  Completion saved but rewards are pending (%s). Run 'habitlit reconcile' to repair.\n", out.PendingReason)
	}
}
