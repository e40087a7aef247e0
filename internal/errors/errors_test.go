package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "engine error",
			err:      Validation("record completion", "percentage %d out of range", 120),
			expected: "Error: record completion: percentage 120 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	if got := Formatf("habit %q not found", "read"); got != `Error: habit "read" not found` {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		kind      Kind
		retryable bool
	}{
		{"validation", Validation("op", "bad"), ErrValidation, KindValidation, false},
		{"not found", NotFound("op", "habit %s", "h1"), ErrNotFound, KindNotFound, false},
		{"conflict", Conflict("op", errors.New("unique")), ErrConflict, KindConflict, false},
		{"store", Store("op", sql.ErrConnDone), ErrStore, KindStore, true},
		{"wrapped store", fmt.Errorf("outer: %w", Store("op", sql.ErrConnDone)), ErrStore, KindStore, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NotFound("get habit", "habit %s", "h1")
	if errors.Is(err, ErrValidation) {
		t.Error("not found error must not match validation sentinel")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
}

func TestStoreKeepsExistingKind(t *testing.T) {
	inner := NotFound("get habit", "habit h1")
	if got := Store("outer", inner); KindOf(got) != KindNotFound {
		t.Errorf("Store() re-classified a not-found error as %q", KindOf(got))
	}
	if Store("op", nil) != nil {
		t.Error("Store(nil) must be nil")
	}
}

func TestUnwrap(t *testing.T) {
	err := Store("load profile", sql.ErrConnDone)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Error("store error should unwrap to the driver error")
	}
}
