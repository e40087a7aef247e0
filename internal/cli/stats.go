package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

type StatsCmd struct {
	From        string `help:"First day of the range (default: 29 days before --to)." default:""`
	To          string `help:"Last day of the range (default: today)." default:""`
	Granularity string `short:"g" help:"Bucket size." enum:"auto,day,week,month" default:"auto"`
	Weekly      bool   `help:"Only compare the last 7 days with the 7 before."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	bg := context.Background()

	if c.Weekly {
		cmp, err := ctx.Engine.CompareWeeks(bg, ctx.User)
		if err != nil {
			return err
		}
		fmt.Printf("Last 7 days: %d completions (previous 7 days: %d, %+.0f%%)\n", cmp.Current, cmp.Previous, cmp.ChangePercent)
		return nil
	}

	to, err := ctx.resolveDate(bg, c.To)
	if err != nil {
		return err
	}
	from := c.From
	if from == "" {
		from = utils.MustAddDays(to, -29)
	}

	stats, err := ctx.Engine.Aggregate(bg, ctx.User, models.DateRange{From: from, To: to}, models.Granularity(c.Granularity))
	if err != nil {
		return err
	}
	printStats(stats)
	return nil
}

func printStats(stats models.PeriodStats) {
	fmt.Printf("Completion %s → %s (by %s)\n\n", stats.Range.From, stats.Range.To, stats.Granularity)
	for _, p := range stats.Points {
		marker := " "
		if p.Current {
			marker = "*"
		}
		fmt.Printf("%s %-10s [%s] %3.0f%%  %d/%d\n", marker, p.Label, bar(p.Percentage, 20), p.Percentage, p.Completed, p.Total)
	}

	fmt.Printf("\nAverage: %.1f%% (%d of %d)\n", stats.AveragePercentage, stats.TotalCompleted, stats.TotalPossible)
	if stats.BestPeriod != nil {
		fmt.Printf("Best:    %s (%.0f%%)\n", stats.BestPeriod.Label, stats.BestPeriod.Percentage)
	}
	if stats.WorstPeriod != nil {
		fmt.Printf("Worst:   %s (%.0f%%)\n", stats.WorstPeriod.Label, stats.WorstPeriod.Percentage)
	}
	fmt.Printf("Change vs previous period: %+.0f%% (%d → %d)\n",
		stats.Comparison.ChangePercent, stats.Comparison.Previous, stats.Comparison.Current)
}
