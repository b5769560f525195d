package weather

// bucketRef points at a refined bucket relative to the day being built.
type bucketRef struct {
	dayOffset int
	label     string
}

// periodBuckets maps each period to the refined buckets covering it.
// The night runs past midnight, so its tail lives under the next day index.
var periodBuckets = map[Period][]bucketRef{
	PeriodMatin: {{0, "07-10"}, {0, "10-13"}},
	PeriodMidi:  {{0, "13-16"}, {0, "16-19"}},
	PeriodSoir:  {{0, "19-22"}},
	PeriodNuit:  {{0, "22-01"}, {1, "01-04"}, {1, "04-07"}},
}

// Normalize flattens a provider payload into day summaries.
//
// Days are walked from index 0 and the walk stops at the first index that
// has neither a resume nor any period record. An index with periods but
// no resume is skipped. For each period, refined buckets replace the
// coarse record whenever at least one of them is present.
func Normalize(raw *RawForecast) []DaySummary {
	if raw == nil {
		return nil
	}

	var days []DaySummary
	for i := 0; raw.hasDay(i); i++ {
		resume, ok := raw.Resumes[i]
		if !ok {
			continue
		}

		day := DaySummary{
			DayIndex:       i,
			Date:           resume.Date,
			Description:    resume.Description,
			TemperatureMin: resume.TemperatureMin,
			TemperatureMax: resume.TemperatureMax,
		}

		for _, p := range Periods {
			prev, ok := raw.Previsions[SlotKey{Day: i, Slot: string(p)}]
			if !ok {
				continue
			}
			day.Periods = append(day.Periods, normalizePeriod(raw, i, p, prev))
		}

		days = append(days, day)
	}

	return days
}

func normalizePeriod(raw *RawForecast, day int, p Period, prev Prevision) PeriodForecast {
	out := PeriodForecast{Name: p}

	for _, ref := range periodBuckets[p] {
		b, ok := raw.Previsions48h[SlotKey{Day: day + ref.dayOffset, Slot: ref.label}]
		if !ok {
			continue
		}
		out.Buckets = append(out.Buckets, TimeBucket{
			Label:           ref.label,
			Description:     b.Description,
			TemperatureMin:  b.TemperatureMin,
			TemperatureMax:  b.TemperatureMax,
			WindSpeed:       b.WindSpeed,
			RainProbability: b.RainProbability,
		})
	}

	if len(out.Buckets) == 0 {
		out.Coarse = &CoarseForecast{
			Description: prev.Description,
			Temperature: prev.Temperature,
			WindSpeed:   prev.WindSpeed,
		}
	}

	return out
}
