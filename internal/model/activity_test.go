package model

import (
	"sort"
	"testing"
	"time"
)

func TestParseActivityID(t *testing.T) {
	cases := []struct {
		in      string
		want    ActivityID
		wantErr bool
	}{
		{"01", ActivityID{Primary: 1}, false},
		{"1", ActivityID{Primary: 1}, false},
		{"02", ActivityID{Primary: 2}, false},
		{"01-P1", ActivityID{Primary: 1, Sub: 1, HasSub: true}, false},
		{"12-P3", ActivityID{Primary: 12, Sub: 3, HasSub: true}, false},
		{"A1", ActivityID{}, true},
		{"01-P", ActivityID{}, true},
		{"01x", ActivityID{}, true},
		{"", ActivityID{}, true},
	}

	for _, tc := range cases {
		got, err := ParseActivityID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseActivityID(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseActivityID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseActivityID(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseClockRange(t *testing.T) {
	start, end, err := ParseClockRange("10:00-11:30")
	if err != nil {
		t.Fatal(err)
	}
	if (start != ClockTime{Hour: 10}) || (end != ClockTime{Hour: 11, Minute: 30}) {
		t.Errorf("got %v-%v", start, end)
	}

	for _, bad := range []string{"", "10:00", "11:00-10:00", "10:00-10:00", "25:00-26:00", "ten-eleven"} {
		if _, _, err := ParseClockRange(bad); err == nil {
			t.Errorf("ParseClockRange(%q): expected error", bad)
		}
	}
}

func TestParseLocation(t *testing.T) {
	plain := ParseLocation(2018, "C2 Lecture Theatre")
	if plain.Place != "C2 Lecture Theatre" || len(plain.Valid) != 0 {
		t.Errorf("plain location: %+v", plain)
	}
	// No date constraint means valid on every date.
	if !plain.ValidOn(date(2018, 1, 1)) || !plain.ValidOn(date(2025, 12, 31)) {
		t.Error("unconstrained location should be valid for every date")
	}

	lab := ParseLocation(2018, "Jack Erskine 001 Computer Lab (28/3)")
	if lab.Place != "Jack Erskine 001 Computer Lab" {
		t.Errorf("place = %q", lab.Place)
	}
	if !lab.ValidOn(date(2018, 3, 28)) || lab.ValidOn(date(2018, 3, 29)) {
		t.Error("instant-constrained location valid on wrong dates")
	}

	moved := ParseLocation(2018, "Jack Erskine 244 (27/2-27/3, 24/4-29/5)")
	for _, tc := range []struct {
		on   time.Time
		want bool
	}{
		{date(2018, 4, 28), true},
		{date(2018, 5, 30), false},
		{date(2018, 3, 29), false},
		{date(2018, 3, 27), true},
	} {
		if got := moved.ValidOn(tc.on); got != tc.want {
			t.Errorf("ValidOn(%v) = %v, want %v", tc.on, got, tc.want)
		}
	}
}

func wedActivity(primary int, start, end ClockTime, locations ...Location) Activity {
	return Activity{
		ID:        ActivityID{Primary: primary},
		Day:       Wednesday,
		Start:     start,
		End:       end,
		Locations: locations,
		Weeks:     []Interval{{Start: date(2018, 2, 19), End: date(2018, 3, 25)}},
	}
}

func TestActivityOccursOn(t *testing.T) {
	act := wedActivity(1, ClockTime{Hour: 10}, ClockTime{Hour: 11})

	// 2018-03-14 is a Wednesday inside the validity weeks.
	if !act.OccursOn(date(2018, 3, 14)) {
		t.Error("expected activity on Wednesday inside weeks")
	}
	// Same weekday, outside the weeks.
	if act.OccursOn(date(2018, 3, 28)) {
		t.Error("activity outside validity weeks should not occur")
	}
	// Inside the weeks but wrong weekday (a Tuesday).
	if act.OccursOn(date(2018, 3, 13)) {
		t.Error("activity on wrong weekday should not occur")
	}
	// Weekend dates never match.
	if act.OccursOn(date(2018, 3, 17)) {
		t.Error("activity on Saturday should not occur")
	}
}

func TestLocationOnPicksFirstValid(t *testing.T) {
	first := Location{Place: "C2", Valid: []Interval{{Start: date(2018, 2, 19), End: date(2018, 3, 25)}}}
	second := Location{Place: "C3"} // always valid
	act := wedActivity(1, ClockTime{Hour: 10}, ClockTime{Hour: 11}, first, second)

	if loc, ok := act.LocationOn(date(2018, 3, 14)); !ok || loc.Place != "C2" {
		t.Errorf("got %v ok=%v, want C2", loc.Place, ok)
	}
	// After the first location expires, the listed fallback applies.
	if loc, ok := act.LocationOn(date(2018, 4, 4)); !ok || loc.Place != "C3" {
		t.Errorf("got %v ok=%v, want C3", loc.Place, ok)
	}

	bare := wedActivity(1, ClockTime{Hour: 10}, ClockTime{Hour: 11}, first)
	if _, ok := bare.LocationOn(date(2018, 4, 4)); ok {
		t.Error("expected no location after constraint expires")
	}
}

func TestActivityTotalOrder(t *testing.T) {
	acts := []Activity{
		{ID: ActivityID{Primary: 2}, Day: Wednesday, Start: ClockTime{Hour: 10}, End: ClockTime{Hour: 11}},
		{ID: ActivityID{Primary: 1}, Day: Wednesday, Start: ClockTime{Hour: 10}, End: ClockTime{Hour: 11}},
		{ID: ActivityID{Primary: 1}, Day: Monday, Start: ClockTime{Hour: 14}, End: ClockTime{Hour: 15}},
		{ID: ActivityID{Primary: 1, Sub: 1, HasSub: true}, Day: Wednesday, Start: ClockTime{Hour: 10}, End: ClockTime{Hour: 11}},
		{ID: ActivityID{Primary: 1}, Day: Wednesday, Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 10}},
	}

	// Exactly one of <, ==, > holds for every pair.
	for i := range acts {
		for j := range acts {
			c1, c2 := acts[i].Compare(acts[j]), acts[j].Compare(acts[i])
			if (c1 < 0) != (c2 > 0) || (c1 == 0) != (c2 == 0) {
				t.Errorf("Compare not antisymmetric for %d,%d: %d vs %d", i, j, c1, c2)
			}
			if i == j && c1 != 0 {
				t.Errorf("Compare(self) = %d", c1)
			}
		}
	}

	sorted := make([]Activity, len(acts))
	copy(sorted, acts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	// Monday first, then Wednesday 09:00, then the three simultaneous
	// Wednesday 10:00 entries ordered by id: 01, 01-P1, 02.
	wantOrder := []struct {
		day Weekday
		id  ActivityID
	}{
		{Monday, ActivityID{Primary: 1}},
		{Wednesday, ActivityID{Primary: 1}},
		{Wednesday, ActivityID{Primary: 1}},
		{Wednesday, ActivityID{Primary: 1, Sub: 1, HasSub: true}},
		{Wednesday, ActivityID{Primary: 2}},
	}
	for i, want := range wantOrder {
		if sorted[i].Day != want.day || sorted[i].ID != want.id {
			t.Errorf("sorted[%d] = %v %v, want %v %v", i, sorted[i].Day, sorted[i].ID, want.day, want.id)
		}
	}
	if sorted[1].Start.Hour != 9 {
		t.Errorf("sorted[1] should be the 09:00 activity, got %v", sorted[1].Start)
	}

	// Stability: sorting again must not reorder anything.
	again := make([]Activity, len(sorted))
	copy(again, sorted)
	sort.SliceStable(again, func(i, j int) bool { return again[i].Compare(again[j]) < 0 })
	for i := range again {
		if !again[i].Equal(sorted[i]) {
			t.Errorf("repeated sort reordered index %d", i)
		}
	}
}

func TestActivityOverlaps(t *testing.T) {
	a := wedActivity(1, ClockTime{Hour: 10}, ClockTime{Hour: 11})
	b := wedActivity(2, ClockTime{Hour: 10, Minute: 30}, ClockTime{Hour: 12})
	c := wedActivity(3, ClockTime{Hour: 11}, ClockTime{Hour: 12})
	monday := Activity{ID: ActivityID{Primary: 4}, Day: Monday, Start: ClockTime{Hour: 10}, End: ClockTime{Hour: 11}}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Error("expected overlap for intersecting ranges")
	}
	if a.Overlaps(c) {
		t.Error("back-to-back ranges do not overlap")
	}
	if a.Overlaps(monday) {
		t.Error("different weekdays never overlap")
	}
}
