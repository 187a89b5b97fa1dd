package date

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-01-02", want: New(2025, time.January, 2)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2024-02-29", want: New(2024, time.February, 29)},
		{in: "not-a-date", wantErr: true},
		{in: "2025-13-01", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewNormalizes(t *testing.T) {
	// Out-of-range days roll over like time.Date does.
	got := New(2025, time.January, 32)
	want := New(2025, time.February, 1)
	if got != want {
		t.Errorf("New(2025, 1, 32) = %v, want %v", got, want)
	}
}

func TestAdd(t *testing.T) {
	d := New(2025, time.February, 28)
	if got := d.Add(1); got != New(2025, time.March, 1) {
		t.Errorf("Add(1) = %v, want 2025-03-01", got)
	}
	if got := d.Add(-28); got != New(2025, time.January, 31) {
		t.Errorf("Add(-28) = %v, want 2025-01-31", got)
	}
}

func TestCompare(t *testing.T) {
	a := New(2025, time.March, 1)
	b := New(2025, time.March, 2)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare ordering broken: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2025, time.June, 9)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2025-06-09"` {
		t.Errorf("MarshalJSON() = %s, want %q", b, "2025-06-09")
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestRangeDays(t *testing.T) {
	r := Range{From: New(2025, time.January, 30), To: New(2025, time.February, 2)}
	var got []string
	for on := range r.Days() {
		got = append(got, on.String())
	}
	want := []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}
	if len(got) != len(want) {
		t.Fatalf("Days() yielded %d days, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Days()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScan(t *testing.T) {
	var d Date
	if err := d.Scan("2025-04-05"); err != nil || d != New(2025, time.April, 5) {
		t.Errorf("Scan(string) = %v, %v", d, err)
	}
	if err := d.Scan(time.Date(2025, time.April, 6, 15, 4, 5, 0, time.UTC)); err != nil || d != New(2025, time.April, 6) {
		t.Errorf("Scan(time.Time) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected error, got nil")
	}
}
