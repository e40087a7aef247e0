package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlit/internal/utils"
)

type SettingsCmd struct {
	Timezone string `help:"IANA timezone that decides which calendar day is today (e.g. Europe/Berlin, Local)." default:""`
}

func (c *SettingsCmd) Run(ctx *Context) error {
	bg := context.Background()
	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.Timezone == "" {
		today, err := ctx.Engine.Today(bg)
		if err != nil {
			return err
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:            %s (today is %s)\n", settings.Timezone, today)
		fmt.Printf("  User:                %s\n", ctx.User)
		fmt.Printf("  XP per completion:   %d\n", ctx.Config.XP.PerCompletion)
		fmt.Printf("  Streak bonus:        %d every %d days\n", ctx.Config.XP.StreakBonus, ctx.Config.XP.StreakBonusEvery)
		fmt.Printf("  Daily XP cap:        %d\n", ctx.Config.XP.DailyCap)
		fmt.Printf("  Storage:             %s\n", ctx.Store.GetConfigPath())
		return nil
	}

	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone: %s", c.Timezone)
	}
	settings.Timezone = c.Timezone
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Timezone set to %s\n", c.Timezone)
	return nil
}
