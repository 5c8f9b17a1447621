package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDaysFor(t *testing.T) {
	tests := map[Interval]int{
		Interval1D: 1,
		Interval3D: 3,
		Interval1W: 7,
		Interval1M: 30,
		Interval6M: 180,
		Interval1Y: 365,
	}
	for iv, expected := range tests {
		got, err := DaysFor(iv)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", iv, err)
		}
		if got != expected {
			t.Fatalf("%s expected %d days, got %d", iv, expected, got)
		}
	}
}

func TestDaysForUnknown(t *testing.T) {
	if _, err := DaysFor("2h"); !errors.Is(err, ErrUnknownInterval) {
		t.Fatalf("expected ErrUnknownInterval, got %v", err)
	}
	if _, err := ParseInterval(""); !errors.Is(err, ErrUnknownInterval) {
		t.Fatalf("expected ErrUnknownInterval for empty name, got %v", err)
	}
}

func TestIntervalsOrderAndCopy(t *testing.T) {
	ivs := Intervals()
	if len(ivs) != 6 || ivs[0] != DefaultInterval || ivs[5] != Interval1Y {
		t.Fatalf("unexpected intervals: %v", ivs)
	}
	ivs[0] = "x"
	if Intervals()[0] != Interval1D {
		t.Fatal("Intervals should return a copy")
	}
}

func TestSeriesValidate(t *testing.T) {
	ok := Series{Interval: Interval1D, Points: []PricePoint{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 5}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := Series{Interval: Interval1D, Points: []PricePoint{{Timestamp: 1}, {Timestamp: 1}}}
	if err := dup.Validate(); !errors.Is(err, ErrSeriesUnordered) {
		t.Fatalf("expected ErrSeriesUnordered, got %v", err)
	}
}

func TestSeriesPayloadProjections(t *testing.T) {
	s := Series{Interval: Interval1W, Points: []PricePoint{
		{Timestamp: 10, Price: 100, Volume: 5},
		{Timestamp: 20, Price: 101, Volume: 6},
		{Timestamp: 30, Price: 99, Volume: 7},
	}}

	p := s.Payload()
	if p.Interval != Interval1W {
		t.Fatalf("unexpected interval %s", p.Interval)
	}
	if len(p.Price) != s.Len() || len(p.Volume) != s.Len() {
		t.Fatalf("projection lengths %d/%d, series %d", len(p.Price), len(p.Volume), s.Len())
	}
	for i, pt := range s.Points {
		if p.Price[i].Time != pt.Timestamp || p.Volume[i].Time != pt.Timestamp {
			t.Fatalf("timestamp mismatch at %d", i)
		}
		if p.Price[i].Value != pt.Price || p.Volume[i].Value != pt.Volume {
			t.Fatalf("value mismatch at %d: %+v %+v", i, p.Price[i], p.Volume[i])
		}
	}
}

func TestPriceSummaryPositive(t *testing.T) {
	s := NewPriceSummary("usd", 63000, 2.5)
	if math.Abs(s.PreviousPrice()-61463.41) > 0.01 {
		t.Fatalf("unexpected previous price %f", s.PreviousPrice())
	}
	if math.Abs(s.AbsoluteChange-1536.59) > 0.01 {
		t.Fatalf("unexpected absolute change %f", s.AbsoluteChange)
	}
	if got := s.FormatChange(); got != "+1536.59 (2.50%)" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestPriceSummaryNegative(t *testing.T) {
	s := NewPriceSummary("usd", 60000, -3.0)
	if math.Abs(s.PreviousPrice()-61855.67) > 0.01 {
		t.Fatalf("unexpected previous price %f", s.PreviousPrice())
	}
	if math.Abs(s.AbsoluteChange-(-1855.67)) > 0.01 {
		t.Fatalf("unexpected absolute change %f", s.AbsoluteChange)
	}
	if got := s.FormatChange(); got != "-1855.67 (-3.00%)" {
		t.Fatalf("unexpected format %q", got)
	}
	if !s.Negative() {
		t.Fatal("expected negative summary")
	}
}

func TestPriceSummaryZeroChange(t *testing.T) {
	s := NewPriceSummary("usd", 100, 0)
	if got := s.FormatChange(); got != "+0.00 (0.00%)" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := s.FormatPrice(); got != "100.00" {
		t.Fatalf("unexpected price format %q", got)
	}
}

func TestPriceSummaryTotalLoss(t *testing.T) {
	s := NewPriceSummary("usd", 0.5, -100)
	if !errors.Is(s.Valid(), ErrInvalidQuote) {
		t.Fatalf("expected ErrInvalidQuote, got %v", s.Valid())
	}
	if got := s.FormatChange(); got != "n/a" {
		t.Fatalf("unexpected format %q", got)
	}
	if err := NewPriceSummary("usd", 63000, 2.5).Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserMessages(t *testing.T) {
	cause := errors.New("429")

	if msg := UserMessage(&PriceFetchError{Err: cause}); !strings.Contains(msg, "current price") {
		t.Fatalf("unexpected price message %q", msg)
	}

	initial := &SeriesFetchError{Interval: Interval1D, Initial: true, Err: cause}
	switched := &SeriesFetchError{Interval: Interval6M, Err: cause}
	if UserMessage(initial) == UserMessage(switched) {
		t.Fatal("initial and switch messages should differ")
	}
	if !strings.Contains(UserMessage(switched), "6m") {
		t.Fatalf("switch message should name the interval: %q", UserMessage(switched))
	}
	if !errors.Is(switched, cause) {
		t.Fatal("SeriesFetchError should unwrap to its cause")
	}
	if UserMessage(nil) != "" {
		t.Fatal("nil error should have empty message")
	}
}
