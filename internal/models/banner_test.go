package models

import (
	"testing"
	"time"
)

func TestNewBannerWindow(t *testing.T) {
	b, err := NewBanner(FormValues{"link": "/sale", "startDate": "2025-01-10", "endDate": "2025-01-20"})
	if err != nil {
		t.Fatalf("NewBanner: %v", err)
	}
	if !b.Active {
		t.Error("new banners start active")
	}

	tests := []struct {
		at   string
		want bool
	}{
		{"2025-01-09T23:59:59Z", false},
		{"2025-01-10T00:00:00Z", true},
		{"2025-01-20T18:00:00Z", true},
		{"2025-01-21T00:00:00Z", false},
	}
	for _, tt := range tests {
		at, _ := time.Parse(time.RFC3339, tt.at)
		if got := b.VisibleAt(at); got != tt.want {
			t.Errorf("VisibleAt(%s) = %v, want %v", tt.at, got, tt.want)
		}
	}

	b.Active = false
	if b.VisibleAt(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("inactive banner must never be visible")
	}
}

func TestNewBannerOpenEnded(t *testing.T) {
	b, err := NewBanner(FormValues{})
	if err != nil {
		t.Fatalf("NewBanner: %v", err)
	}
	if b.StartDate != nil || b.EndDate != nil {
		t.Errorf("expected no window, got %v - %v", b.StartDate, b.EndDate)
	}
	if !b.VisibleAt(time.Now()) {
		t.Error("open-ended active banner should be visible")
	}
}

func TestNewBannerRejectsBadDates(t *testing.T) {
	if _, err := NewBanner(FormValues{"startDate": "next week"}); err == nil {
		t.Error("expected error for unparseable date")
	}
	if _, err := NewBanner(FormValues{"startDate": "2025-02-01", "endDate": "2025-01-01"}); err == nil {
		t.Error("expected error for end before start")
	}
}
