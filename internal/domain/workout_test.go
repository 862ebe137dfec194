package domain_test

import (
	"testing"
	"time"

	"liftlog/internal/domain"
)

func TestLocalDayBounds(t *testing.T) {
	at := time.Date(2025, 1, 27, 9, 30, 0, 0, time.Local)
	start, end := domain.LocalDayBounds(at)

	wantStart := time.Date(2025, 1, 27, 0, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v; want %v", start, wantStart)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("window length = %v; want 24h", got)
	}

	// The interval is half-open: an instant exactly at midnight belongs to
	// the next day.
	if !end.After(at) || start.After(at) {
		t.Error("expected at to fall inside [start, end)")
	}
	s2, _ := domain.LocalDayBounds(end)
	if !s2.Equal(end) {
		t.Errorf("midnight should start the next day, got %v", s2)
	}
}
