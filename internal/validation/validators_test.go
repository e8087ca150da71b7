package validation

import (
	"testing"

	"github.com/benvon/task-planner/internal/models"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  buy milk  ", "buy milk"},
		{"strips control characters", "task\x00\x08name", "taskname"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
		{"empty after trim", "   ", ""},
		{"unicode preserved", "café ☕", "café ☕"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  models.Priority
	}{
		{"High", models.PriorityHigh},
		{"Medium", models.PriorityMedium},
		{"Low", models.PriorityLow},
		{"Urgent", models.PriorityMedium},
		{"high", models.PriorityMedium},
		{"", models.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePriority(tt.input); got != tt.want {
				t.Errorf("NormalizePriority(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	if err := ValidatePriority("High"); err != nil {
		t.Errorf("unexpected error for valid priority: %v", err)
	}
	if err := ValidatePriority("Critical"); err == nil {
		t.Error("expected error for invalid priority")
	}
}
