package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewNormalizes(t *testing.T) {
	// Day 32 of January rolls over into February.
	got := New(2021, time.January, 32)
	want := New(2021, time.February, 1)
	if got != want {
		t.Errorf("New(2021, Jan, 32) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2021-01-05", want: "2021-01-05"},
		{in: "2021-1-5", want: "2021-01-05"},
		{in: "not a date", wantErr: true},
		{in: "2021/01/05", wantErr: true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected an error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got.String() != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := New(2021, time.January, 1)
	b := New(2021, time.January, 2)

	if !a.Before(b) || b.Before(a) {
		t.Errorf("Before is wrong for %v, %v", a, b)
	}
	if !b.After(a) || a.After(b) {
		t.Errorf("After is wrong for %v, %v", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare is wrong for %v, %v", a, b)
	}
}

func TestAdd(t *testing.T) {
	d := New(2021, time.February, 28)
	if got := d.Add(1); got != New(2021, time.March, 1) {
		t.Errorf("Add(1) = %v, want 2021-03-01", got)
	}
	if got := d.Add(-28); got != New(2021, time.January, 31) {
		t.Errorf("Add(-28) = %v, want 2021-01-31", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2021-06-30")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2021-06-30"` {
		t.Errorf("Marshal = %s, want %q", b, "2021-06-30")
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestZero(t *testing.T) {
	var zero Date
	if !zero.IsZero() {
		t.Error("zero Date should report IsZero")
	}
	if !zero.Before(New(1900, time.January, 1)) {
		t.Error("zero Date should sort before real dates")
	}
}
