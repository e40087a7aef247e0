package progression

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// calendar resolves the authoritative "today" from the clock and the
// timezone configured in the store, never from the caller.
type calendar struct {
	store storage.Provider
	clock utils.Clock
}

func (c calendar) today(ctx context.Context) (string, error) {
	day, _, err := c.resolve(ctx)
	return day, err
}

// resolve returns today together with the configured location, for callers
// that must turn stored timestamps into calendar days.
func (c calendar) resolve(ctx context.Context) (string, *time.Location, error) {
	settings, err := c.store.GetSettings(ctx)
	if err != nil {
		return "", nil, err
	}
	day, err := utils.Today(c.clock, settings.Timezone)
	if err != nil {
		return "", nil, apperrors.Validation("today", "%v", err)
	}
	// Today already proved the timezone loads
	loc, _ := utils.LoadLocation(settings.Timezone)
	return day, loc, nil
}
