package weather

import (
	"testing"
	"time"
)

func day(i int) time.Time {
	return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// testPayload builds a payload with a resume and all four coarse periods
// for each day in [0, days), and refined buckets for the given keys.
func testPayload(days int, buckets ...string) *RawForecast {
	raw := NewRawForecast(Place{Name: "Biot"})
	for i := 0; i < days; i++ {
		raw.Resumes[i] = Resume{Date: day(i), Description: "Ensoleillé", TemperatureMin: 10, TemperatureMax: 20}
		for _, p := range Periods {
			raw.Previsions[SlotKey{Day: i, Slot: string(p)}] = Prevision{Description: "coarse " + string(p), Temperature: 15, WindSpeed: 10}
		}
	}
	for _, key := range buckets {
		k, ok := ParseSlotKey(key)
		if !ok {
			panic("bad bucket key " + key)
		}
		raw.Previsions48h[k] = Prevision48h{Description: "fine " + key, TemperatureMin: 12, TemperatureMax: 14, WindSpeed: 5, RainProbability: 30}
	}
	return raw
}

func TestParseSlotKey(t *testing.T) {
	tests := []struct {
		key  string
		want SlotKey
		ok   bool
	}{
		{"0_resume", SlotKey{0, "resume"}, true},
		{"12_matin", SlotKey{12, "matin"}, true},
		{"1_22-01", SlotKey{1, "22-01"}, true},
		{"resume", SlotKey{}, false},
		{"x_matin", SlotKey{}, false},
		{"-1_matin", SlotKey{}, false},
		{"3_", SlotKey{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseSlotKey(tt.key)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseSlotKey(%q) = %+v, %v; want %+v, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalize_OrderedAndTerminates(t *testing.T) {
	raw := testPayload(10)
	// Day 11 exists but day 10 is empty: the walk must stop before it.
	raw.Resumes[11] = Resume{Date: day(11), Description: "orphan"}

	days := Normalize(raw)
	if len(days) != 10 {
		t.Fatalf("len(days) = %d, want 10", len(days))
	}
	for i, d := range days {
		if d.DayIndex != i {
			t.Errorf("days[%d].DayIndex = %d", i, d.DayIndex)
		}
		if !d.Date.Equal(day(i)) {
			t.Errorf("days[%d].Date = %v, want %v", i, d.Date, day(i))
		}
		if len(d.Periods) != 4 {
			t.Errorf("days[%d] has %d periods, want 4", i, len(d.Periods))
		}
		for j, p := range d.Periods {
			if p.Name != Periods[j] {
				t.Errorf("days[%d].Periods[%d] = %s, want %s", i, j, p.Name, Periods[j])
			}
		}
	}
}

func TestNormalize_DayWithoutResumeIsSkipped(t *testing.T) {
	raw := testPayload(3)
	delete(raw.Resumes, 1)

	days := Normalize(raw)
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if days[0].DayIndex != 0 || days[1].DayIndex != 2 {
		t.Errorf("day indexes = %d, %d; want 0, 2", days[0].DayIndex, days[1].DayIndex)
	}
}

func TestNormalize_RefinedBucketsReplaceCoarse(t *testing.T) {
	// Complete morning, partial midday, and a night spilling into day 1.
	raw := testPayload(2,
		"0_07-10", "0_10-13",
		"0_16-19",
		"0_22-01", "1_01-04", "1_04-07",
		"1_13-16",
	)

	days := Normalize(raw)
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}

	wantLabels := map[Period][]string{
		PeriodMatin: {"07-10", "10-13"},
		PeriodMidi:  {"16-19"},
		PeriodSoir:  nil,
		PeriodNuit:  {"22-01", "01-04", "04-07"},
	}
	for _, p := range days[0].Periods {
		want := wantLabels[p.Name]
		if len(want) == 0 {
			if p.Refined() || p.Coarse == nil {
				t.Errorf("day 0 %s: want coarse only, got %+v", p.Name, p)
			}
			continue
		}
		if p.Coarse != nil {
			t.Errorf("day 0 %s: coarse record alongside buckets", p.Name)
		}
		if len(p.Buckets) != len(want) {
			t.Fatalf("day 0 %s: %d buckets, want %d", p.Name, len(p.Buckets), len(want))
		}
		for i, b := range p.Buckets {
			if b.Label != want[i] {
				t.Errorf("day 0 %s bucket %d = %s, want %s", p.Name, i, b.Label, want[i])
			}
		}
	}

	// Day 1 matin has no bucket of its own: 01-04 and 04-07 belong to day 0's night.
	for _, p := range days[1].Periods {
		switch p.Name {
		case PeriodMidi:
			if len(p.Buckets) != 1 || p.Buckets[0].Label != "13-16" {
				t.Errorf("day 1 midi buckets = %+v", p.Buckets)
			}
		default:
			if p.Refined() {
				t.Errorf("day 1 %s unexpectedly refined: %+v", p.Name, p.Buckets)
			}
		}
	}
}

func TestNormalize_ExactlyOneRepresentation(t *testing.T) {
	payloads := []*RawForecast{
		testPayload(0),
		testPayload(1),
		testPayload(2, "0_07-10", "0_19-22", "1_04-07"),
		testPayload(10, "0_13-16", "1_22-01", "2_01-04"),
	}

	for n, raw := range payloads {
		prev := -1
		for _, d := range Normalize(raw) {
			if d.DayIndex <= prev {
				t.Errorf("payload %d: day %d after %d", n, d.DayIndex, prev)
			}
			prev = d.DayIndex
			for _, p := range d.Periods {
				if p.Refined() == (p.Coarse != nil) {
					t.Errorf("payload %d day %d %s: refined=%v coarse=%v", n, d.DayIndex, p.Name, p.Refined(), p.Coarse != nil)
				}
			}
		}
	}
}

func TestNormalize_PeriodsOnlyWhenPresent(t *testing.T) {
	raw := testPayload(1)
	delete(raw.Previsions, SlotKey{Day: 0, Slot: "midi"})

	days := Normalize(raw)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	got := days[0].Periods
	if len(got) != 3 || got[0].Name != PeriodMatin || got[1].Name != PeriodSoir || got[2].Name != PeriodNuit {
		t.Errorf("periods = %+v, want matin, soir, nuit", got)
	}
}

func TestNormalize_Nil(t *testing.T) {
	if days := Normalize(nil); days != nil {
		t.Errorf("Normalize(nil) = %+v, want nil", days)
	}
}
