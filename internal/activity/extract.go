package activity

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jtammen/stride/internal/errors"
)

const (
	metersPerKm = 1000.0
	mpsToKmh    = 3.6
)

// Extract computes the category-specific field set for a classified raw
// record. Pure: no I/O, no mutation of raw. Values are kept at full
// precision; rounding happens only when a note is serialized.
//
// An attribute whose source value is absent or zero-meaningless (distance 0
// for an indoor session, no set detail, no HR strap) is left nil so
// consumers can tell "not applicable" from "measured zero".
func Extract(raw Raw, c Classification) (*Workout, error) {
	w := &Workout{
		RemoteID: raw.RemoteID,
		Date:     raw.StartedAt,
		Category: c.Category,
		Exercise: c.Exercise,
		Duration: time.Duration(raw.DurationSec * float64(time.Second)),
		Calories: raw.Calories,
	}

	// HR carries every category except winter sports, where the original
	// schema never recorded it.
	if c.Category != WinterSports {
		w.Fields.AvgHR = raw.AvgHR
		w.Fields.MaxHR = raw.MaxHR
	}

	distanceKm := raw.DistanceM / metersPerKm

	switch c.Category {
	case Cardio:
		if distanceKm > 0 {
			w.Fields.DistanceKm = &distanceKm
			if raw.DurationSec > 0 {
				pace := formatPace(raw.DurationSec / distanceKm)
				w.Fields.Pace = &pace
			}
		}

	case Cycling:
		if distanceKm > 0 {
			w.Fields.DistanceKm = &distanceKm
			if raw.DurationSec > 0 {
				speed := distanceKm / (raw.DurationSec / 3600)
				w.Fields.AvgSpeedKmh = &speed
			}
		}

	case Strength:
		if len(raw.Sets) > 0 {
			if volume := totalVolume(raw.Sets); volume > 0 {
				w.Fields.VolumeKg = &volume
			}
			if names := exerciseNames(raw.Sets); names != "" {
				w.Fields.Exercises = &names
			}
		}

	case WinterSports:
		if distanceKm > 0 {
			w.Fields.DistanceKm = &distanceKm
		}
		if raw.MaxSpeedMps > 0 {
			speed := raw.MaxSpeedMps * mpsToKmh
			w.Fields.MaxSpeedKmh = &speed
		}
		w.Fields.ElevationGain = elevationGain(raw)

	case Hiking:
		if distanceKm > 0 {
			w.Fields.DistanceKm = &distanceKm
		}
		w.Fields.ElevationGain = elevationGain(raw)

	case WaterSports:
		if distanceKm > 0 {
			w.Fields.DistanceKm = &distanceKm
		}

	case Climbing:
		// A climbing record with neither attempts nor sends has lost its
		// identity as a climbing session; surface it for investigation.
		if raw.Attempts == nil && raw.Sends == nil {
			return nil, errors.NewMissingRequiredAttribute(raw.RemoteID, "attempts/sends")
		}
		w.Fields.Attempts = raw.Attempts
		w.Fields.Sends = raw.Sends
		if grade, ok := ConvertGrade(raw.MaxGrade); ok {
			w.Fields.MaxGrade = &grade
		}

	case TeamSports:
		// duration, calories and HR carry the record
	}

	return w, nil
}

// formatPace renders seconds-per-km as "M:SS".
func formatPace(secPerKm float64) string {
	total := int(math.Round(secPerKm))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// totalVolume sums weight x reps across all sets, in kilograms.
// Bodyweight sets (weight 0) contribute nothing.
func totalVolume(sets []StrengthSet) float64 {
	var volume float64
	for _, s := range sets {
		volume += s.WeightKg * float64(s.Reps)
	}
	return volume
}

// exerciseNames joins the distinct exercise display names of a session,
// in first-seen order.
func exerciseNames(sets []StrengthSet) string {
	seen := make(map[string]bool, len(sets))
	names := make([]string, 0, len(sets))
	for _, s := range sets {
		name := displayName(s.Exercise)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// displayName turns a source exercise label like "BENCH_PRESS" into
// "Bench Press".
func displayName(label string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(label), "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func elevationGain(raw Raw) *int {
	if raw.ElevationGainM == nil {
		return nil
	}
	gain := int(math.Round(*raw.ElevationGainM))
	return &gain
}
