package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
)

// TestStore_Integration exercises the PostgreSQL store against a real database.
// Set POSTGRES_TEST_URL to run it, e.g.
// POSTGRES_TEST_URL="postgres://habitlit@localhost:5432/habitlit_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	userID := "it-" + uuid.NewString()
	habitID := uuid.NewString()

	t.Run("Settings", func(t *testing.T) {
		if err := store.SaveSettings(ctx, models.Settings{Timezone: "UTC"}); err != nil {
			t.Fatalf("SaveSettings() error = %v", err)
		}
		settings, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if settings.Timezone != "UTC" {
			t.Errorf("Timezone = %q, want UTC", settings.Timezone)
		}
	})

	t.Run("Habits and completions", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		habit := models.Habit{ID: habitID, UserID: userID, Title: "Stretch", Status: models.HabitStatusPending,
			Goal: models.Goal{Target: 1}, CreatedAt: now, UpdatedAt: now}
		if err := store.AddHabit(ctx, habit); err != nil {
			t.Fatalf("AddHabit() error = %v", err)
		}
		if err := store.AddHabit(ctx, habit); !errors.Is(err, apperrors.ErrConflict) {
			t.Errorf("duplicate AddHabit() error = %v, want conflict", err)
		}

		c := models.Completion{ID: uuid.NewString(), HabitID: habitID, UserID: userID, Date: "2024-03-01", Percentage: 50, CompletedAt: now}
		if err := store.UpsertCompletion(ctx, c); err != nil {
			t.Fatalf("UpsertCompletion() error = %v", err)
		}
		c.Percentage = 100
		if err := store.UpsertCompletion(ctx, c); err != nil {
			t.Fatalf("UpsertCompletion() error = %v", err)
		}
		got, err := store.GetCompletion(ctx, habitID, "2024-03-01")
		if err != nil {
			t.Fatalf("GetCompletion() error = %v", err)
		}
		if got.Percentage != 100 {
			t.Errorf("Percentage = %d, want 100", got.Percentage)
		}
	})

	t.Run("XP ledger", func(t *testing.T) {
		if _, err := store.EnsureProfile(ctx, userID); err != nil {
			t.Fatalf("EnsureProfile() error = %v", err)
		}
		event := models.XPEvent{ID: uuid.NewString(), UserID: userID, Source: "completion:" + habitID + ":2024-03-01",
			Day: "2024-03-01", Amount: 10, CreatedAt: time.Now()}
		for i := 0; i < 2; i++ {
			event.ID = uuid.NewString()
			if _, err := store.AppendXPEvent(ctx, event); err != nil {
				t.Fatalf("AppendXPEvent() error = %v", err)
			}
		}
		profile, err := store.GetProfile(ctx, userID)
		if err != nil {
			t.Fatalf("GetProfile() error = %v", err)
		}
		if profile.XP != 10 {
			t.Errorf("XP = %d, want 10", profile.XP)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		if err := store.DeleteHabit(ctx, habitID); err != nil {
			t.Fatalf("DeleteHabit() error = %v", err)
		}
	})
}
