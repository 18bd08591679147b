package imports

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *time.Time
		wantErr bool
	}{
		{
			name:  "day before month",
			input: "05/03/2021",
			want:  datePtr(2021, time.March, 5),
		},
		{
			name:  "single digit day and month",
			input: "5/3/2021",
			want:  datePtr(2021, time.March, 5),
		},
		{
			name:  "empty is null",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace is null",
			input: "   ",
			want:  nil,
		},
		{
			name:    "iso format rejected",
			input:   "2021-03-05",
			wantErr: true,
		},
		{
			name:    "garbage rejected",
			input:   "not a date",
			wantErr: true,
		},
		{
			name:    "out of range day rejected",
			input:   "32/01/2021",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate("SignedDate", tt.input)
			if tt.wantErr {
				var de *DateParseError
				if !errors.As(err, &de) {
					t.Fatalf("expected DateParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil date, got %v", got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCommission(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "plain number", input: "123.45", want: 123.45},
		{name: "dollar sign stripped", input: "$123.45", want: 123.45},
		{name: "accounting parens stripped", input: "$(1234.50)", want: 1234.50},
		{name: "negative preserved", input: "-50", want: -50},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "symbols only rejected", input: "$()", wantErr: true},
		{name: "text rejected", input: "free", wantErr: true},
		// The symbol set matches the source system's: commas are not
		// thousands-stripped, so accounting-formatted values with
		// separators keep failing rather than silently parsing.
		{name: "thousands separator still fails", input: "$(1,234.50)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommission("agent_commission_value", tt.input)
			if tt.wantErr {
				var ne *NumberParseError
				if !errors.As(err, &ne) {
					t.Fatalf("expected NumberParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseCommission(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseConsumption(t *testing.T) {
	got, err := parseConsumption("annual_consumption", "4500.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != 4500.5 {
		t.Errorf("parseConsumption(\"4500.5\") = %v, want 4500.5", got)
	}

	got, err = parseConsumption("annual_consumption", "")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty input, got %v", *got)
	}

	if _, err = parseConsumption("annual_consumption", "lots"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes", true},
		{"Yes", true},
		{"YES", true},
		{"y", true},
		{"Y", true},
		{" y ", true},
		{"no", false},
		{"n", false},
		{"true", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := parseYesNo(tt.input); got != tt.want {
			t.Errorf("parseYesNo(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
