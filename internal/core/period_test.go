package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthPeriod(t *testing.T) {
	cases := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		p, err := MonthPeriod(tc.year, tc.month, time.UTC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Start != time.Date(tc.year, tc.month, 1, 0, 0, 0, 0, time.UTC) {
			t.Fatalf("bad start %v", p.Start)
		}
		want := time.Date(tc.year, tc.month, tc.lastDay, 23, 59, 59, int(999*time.Millisecond), time.UTC)
		if !p.End.Equal(want) {
			t.Fatalf("%d-%02d end = %v, want %v", tc.year, tc.month, p.End, want)
		}
	}
}

func TestMonthPeriodRejectsBadMonth(t *testing.T) {
	for _, m := range []time.Month{0, 13} {
		if _, err := MonthPeriod(2024, m, time.UTC); !IsValidation(err) {
			t.Fatalf("month %d: expected validation error, got %v", m, err)
		}
	}
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p, _ := MonthPeriod(2024, time.March, time.UTC)
	if !p.Contains(p.Start) || !p.Contains(p.End) {
		t.Fatalf("bounds must be inclusive")
	}
	if p.Contains(p.End.Add(time.Millisecond)) || p.Contains(p.Start.Add(-time.Millisecond)) {
		t.Fatalf("neighbouring instants must be excluded")
	}
	if p.Key() != "2024-03" {
		t.Fatalf("unexpected key %q", p.Key())
	}
}

func TestPeriodOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	// 2024-04-01 01:00 UTC is still March 31 in UTC-3.
	p := PeriodOf(time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC), loc)
	if p.Month != time.March {
		t.Fatalf("expected March, got %v", p.Month)
	}
}

func TestTypePercentagesJSONOrder(t *testing.T) {
	p := TypePercentages{
		{Type: Expense, Percentage: decimal.RequireFromString("50")},
		{Type: Deposit, Percentage: decimal.RequireFromString("25")},
		{Type: Investment, Percentage: decimal.RequireFromString("25")},
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"EXPENSE":"50","DEPOSIT":"25","INVESTMENT":"25"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var back TypePercentages
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 || back[0].Type != Expense || !back.Get(Deposit).Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected decode %+v", back)
	}
}
