package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit. Its history keeps counting for the days it was active."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Permanently delete a habit and its completions."`
}

type HabitAddCmd struct {
	Title  string  `arg:"" optional:"" help:"Habit title. Omit to fill in a form."`
	Icon   string  `help:"Emoji or short icon."`
	Target float64 `help:"Daily goal target." default:"1"`
	Unit   string  `help:"Unit of the daily goal (e.g. pages, minutes)."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if c.Title == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	habit, err := ctx.Engine.CreateHabit(context.Background(), progression.HabitInput{
		UserID: ctx.User,
		Title:  c.Title,
		Icon:   c.Icon,
		Target: c.Target,
		Unit:   c.Unit,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s)\n", habit.Title, shortID(habit.ID))
	return nil
}

func (c *HabitAddCmd) prompt() error {
	target := strconv.FormatFloat(c.Target, 'f', -1, 64)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&c.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewInput().Title("Icon").Value(&c.Icon),
			huh.NewInput().
				Title("Daily target").
				Value(&target).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v <= 0 {
						return errors.New("target must be a positive number")
					}
					return nil
				}),
			huh.NewInput().Title("Unit").Placeholder("pages, minutes, glasses").Value(&c.Unit),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("habit form error: %w", err)
	}
	v, err := strconv.ParseFloat(target, 64)
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", target, err)
	}
	c.Target = v
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits, err := ctx.Engine.ListHabits(context.Background(), ctx.User, c.Archived)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found. Add one with 'habitlit habit add'.")
		return nil
	}

	for _, h := range habits {
		status := ""
		switch h.Status {
		case models.HabitStatusPending:
			status = " [PENDING]"
		case models.HabitStatusArchived:
			status = " [ARCHIVED]"
		}
		icon := h.Icon
		if icon == "" {
			icon = "•"
		}
		fmt.Printf("%s %s %s%s  streak %d (best %d)  goal %s\n",
			shortID(h.ID), icon, h.Title, status, h.Streak, h.LongestStreak, formatGoal(h.Goal))
	}
	return nil
}

func formatGoal(g models.Goal) string {
	target := strconv.FormatFloat(g.Target, 'f', -1, 64)
	current := strconv.FormatFloat(g.Current, 'f', -1, 64)
	if g.Unit == "" {
		return current + "/" + target
	}
	return current + "/" + target + " " + g.Unit
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	bg := context.Background()
	habit, err := ctx.findHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	if _, err := ctx.Engine.ArchiveHabit(bg, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", habit.Title)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	habit, err := ctx.findHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its completions?", habit.Title)).
			Description("XP and badges already earned are kept.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation error: %w", err)
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Engine.DeleteHabit(bg, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Title)
	return nil
}
