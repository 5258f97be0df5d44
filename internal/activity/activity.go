package activity

import "time"

// Category is the closed set of display buckets a raw activity resolves to.
// Every type label the remote source can produce must map to exactly one of
// these, or classification fails explicitly.
type Category string

const (
	Strength     Category = "Strength"
	Cardio       Category = "Cardio"
	Cycling      Category = "Cycling"
	WinterSports Category = "Winter Sports"
	Hiking       Category = "Hiking"
	WaterSports  Category = "Water Sports"
	Climbing     Category = "Climbing"
	TeamSports   Category = "Team Sports"
)

// Categories lists every member of the closed enum.
var Categories = []Category{
	Strength, Cardio, Cycling, WinterSports,
	Hiking, WaterSports, Climbing, TeamSports,
}

// StrengthSet is one set of a strength session as reported by the source.
type StrengthSet struct {
	// Exercise is the source's exercise label for this set (e.g. "BENCH_PRESS")
	Exercise string

	// Reps is the rep count for the set
	Reps int

	// WeightKg is the working weight in kilograms; 0 for bodyweight sets
	WeightKg float64
}

// Raw is an activity record exactly as delivered by the remote source.
// Immutable once fetched. All distance/speed values are in the source's
// native units (meters, meters per second).
type Raw struct {
	// RemoteID is the source-assigned unique id; the dedup key
	RemoteID string

	// StartedAt is the local start time; source of truth for ordering
	StartedAt time.Time

	// TypeKey is the source's free-text activity type label
	TypeKey string

	// DurationSec is the elapsed duration in seconds
	DurationSec float64

	// DistanceM is the distance in meters; 0 means not recorded
	DistanceM float64

	// AvgSpeedMps / MaxSpeedMps in meters per second; 0 means not recorded
	AvgSpeedMps float64
	MaxSpeedMps float64

	// AvgHR / MaxHR in beats per minute; nil means no HR data
	AvgHR *int
	MaxHR *int

	// ElevationGainM in meters; nil means not recorded
	ElevationGainM *float64

	// Calories burned; 0 means not recorded
	Calories int

	// Sets holds strength set detail; empty when the source has none
	Sets []StrengthSet

	// Attempts / Sends are climbing counters; nil means not recorded
	Attempts *int
	Sends    *int

	// MaxGrade is the hardest grade in the source's scale (e.g. "6B", "V4")
	MaxGrade string
}

// Workout is the normalized output unit: one Workout becomes exactly one
// persisted note, keyed by RemoteID. Written once, never mutated.
type Workout struct {
	RemoteID string
	Date     time.Time
	Category Category
	Exercise string

	// Duration and Calories carry every record regardless of category
	Duration time.Duration
	Calories int

	// Fields holds the category-specific attribute set at full precision.
	// Key set is determined solely by Category; inapplicable or unmeasured
	// attributes are absent, never zero.
	Fields Fields
}

// Fields is the category-specific attribute set of a normalized workout.
// Pointer fields mark optional attributes: nil means "not applicable /
// not measured", which downstream consumers must distinguish from zero.
type Fields struct {
	DistanceKm    *float64 // Cardio, Cycling, WinterSports, Hiking, WaterSports
	Pace          *string  // Cardio, "M:SS" per km
	AvgSpeedKmh   *float64 // Cycling
	MaxSpeedKmh   *float64 // WinterSports
	ElevationGain *int     // WinterSports, Hiking, meters
	VolumeKg      *float64 // Strength
	Exercises     *string  // Strength, comma-joined display names
	Attempts      *int     // Climbing
	Sends         *int     // Climbing
	MaxGrade      *string  // Climbing, V-scale
	AvgHR         *int     // all but WinterSports
	MaxHR         *int     // all but WinterSports
}
