package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/utils"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitlit.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.SaveSettings(context.Background(), models.Settings{Timezone: "UTC"}); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	return dbPath
}

func newTestManager(t *testing.T, dbPath string) (*Manager, *utils.FakeClock) {
	t.Helper()
	clock := utils.NewFakeClock(time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local))
	m := NewManager(dbPath)
	m.clock = clock
	return m, clock
}

func readTimezone(t *testing.T, path string) string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var tz string
	if err := db.QueryRow("SELECT value FROM settings WHERE key = ?", constants.SettingTimezone).Scan(&tz); err != nil {
		t.Fatalf("failed to read timezone: %v", err)
	}
	return tz
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	m, _ := newTestManager(t, dbPath)

	path, err := m.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(path) != "habitlit-20240310-093000.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if err := Verify(path); err != nil {
		t.Errorf("backup does not verify: %v", err)
	}
	if tz := readTimezone(t, path); tz != "UTC" {
		t.Errorf("backup timezone = %q, want UTC", tz)
	}
}

func TestCreateSameSecondAddsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	m, _ := newTestManager(t, dbPath)

	first, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("backups in the same second must not collide")
	}
	if filepath.Base(second) != "habitlit-20240310-093000-1.db" {
		t.Errorf("unexpected second backup name %s", filepath.Base(second))
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := m.Create(); err == nil {
		t.Error("expected error for a missing database")
	}
}

func TestListNewestFirstAndIgnoresStrangers(t *testing.T) {
	dbPath := setupTestDB(t)
	m, clock := newTestManager(t, dbPath)

	for i := 0; i < 3; i++ {
		if _, err := m.Create(); err != nil {
			t.Fatal(err)
		}
		clock.Advance(time.Hour)
	}
	for _, name := range []string{"notes.txt", "habitlit-garbage.db", "other-20240101-000000.db"} {
		if err := os.WriteFile(filepath.Join(m.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i-1].Timestamp.After(backups[i].Timestamp) {
			t.Errorf("backups not sorted newest first: %v then %v", backups[i-1].Timestamp, backups[i].Timestamp)
		}
	}
}

func TestListWithoutDirectory(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "habitlit.db"))
	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	m, clock := newTestManager(t, dbPath)
	m.keep = 3

	var oldest string
	for i := 0; i < 5; i++ {
		path, err := m.Create()
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			oldest = path
		}
		clock.Advance(time.Minute)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Error("oldest backup should have been removed")
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	m, clock := newTestManager(t, dbPath)

	backupPath, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSettings(context.Background(), models.Settings{Timezone: "Europe/Paris"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	clock.Advance(time.Minute)
	saved, err := m.Restore(m.Resolve(filepath.Base(backupPath)))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if saved == "" {
		t.Fatal("expected the current database to be saved before restore")
	}
	if tz := readTimezone(t, dbPath); tz != "UTC" {
		t.Errorf("restored timezone = %q, want UTC", tz)
	}
	if tz := readTimezone(t, saved); tz != "Europe/Paris" {
		t.Errorf("pre-restore backup timezone = %q, want Europe/Paris", tz)
	}
}

func TestRestoreRejectsInvalidFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	m, _ := newTestManager(t, dbPath)

	if _, err := m.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for a missing backup")
	}

	junk := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junk, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Restore(junk); err == nil {
		t.Error("expected error for a corrupted backup")
	}

	foreign := filepath.Join(t.TempDir(), "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := m.Restore(foreign); err == nil {
		t.Error("expected error for a database without the habitlit schema")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"habitlit-20240310-093000.db", true},
		{"habitlit-20240310-093000-2.db", true},
		{"habitlit-20240310.db", false},
		{"habitlit-20240310-093000.txt", false},
		{"other-20240310-093000.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseName(tt.name); ok != tt.ok {
				t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
		})
	}
}
