package model

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    SaleStatus
		wantErr bool
	}{
		{"Unverified", StatusUnverified, false},
		{"Verified", StatusVerified, false},
		{"Cancelled", StatusCancelled, false},
		{"Clawback", StatusClawback, false},
		{"", "", true},
		{"unverified", "", true},
		{"Deleted", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStatus(%q): expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatusesOrder(t *testing.T) {
	want := []SaleStatus{StatusUnverified, StatusVerified, StatusCancelled, StatusClawback}
	got := Statuses()
	if len(got) != len(want) {
		t.Fatalf("Statuses() returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Statuses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
