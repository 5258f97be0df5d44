package vault

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jtammen/stride/internal/activity"
)

// Header field keys persisted in note frontmatter. Bit-exact: the external
// calendar/table renderer queries these names.
const (
	KeyRemoteID  = "remote_id"
	KeyDate      = "date"
	KeyType      = "type"
	KeyExercise  = "exercise"
	KeyTime      = "time"
	KeyCalories  = "calories"
	KeyVolume    = "volume"
	KeyExercises = "exercises"
	KeyDistance  = "distance"
	KeyPace      = "pace"
	KeyAvgSpeed  = "avg_speed"
	KeyMaxSpeed  = "max_speed"
	KeyElevGain  = "elevation_gain"
	KeyAttempts  = "attempts"
	KeySends     = "sends"
	KeyMaxGrade  = "max_grade"
	KeyAvgHR     = "avg_hr"
	KeyMaxHR     = "max_hr"
)

// noteBody is appended below the frontmatter so the vault's tag queries
// pick the note up.
const noteBody = "#workouts\n"

// header is one frontmatter key/value pair. Order matters for readability,
// so notes carry a slice instead of a map.
type header struct {
	key   string
	value any
}

// Note is a workout note ready to be persisted.
type Note struct {
	headers []header
	body    string
}

// NewNote renders a normalized workout into a note. This is the
// presentation boundary: numeric fields are rounded here, never earlier.
func NewNote(w *activity.Workout) Note {
	n := Note{body: noteBody}
	n.add(KeyRemoteID, w.RemoteID)
	n.add(KeyDate, w.Date.Format("2006-01-02"))
	n.add(KeyType, string(w.Category))
	n.add(KeyExercise, w.Exercise)
	n.add(KeyTime, formatDuration(w.Duration))
	if w.Calories > 0 {
		n.add(KeyCalories, w.Calories)
	}

	f := w.Fields
	if f.VolumeKg != nil {
		n.add(KeyVolume, round1(*f.VolumeKg))
	}
	if f.Exercises != nil {
		n.add(KeyExercises, *f.Exercises)
	}
	if f.DistanceKm != nil {
		n.add(KeyDistance, round2(*f.DistanceKm))
	}
	if f.Pace != nil {
		n.add(KeyPace, *f.Pace+" /km")
	}
	if f.AvgSpeedKmh != nil {
		n.add(KeyAvgSpeed, round1(*f.AvgSpeedKmh))
	}
	if f.MaxSpeedKmh != nil {
		n.add(KeyMaxSpeed, round1(*f.MaxSpeedKmh))
	}
	if f.ElevationGain != nil {
		n.add(KeyElevGain, *f.ElevationGain)
	}
	if f.Attempts != nil {
		n.add(KeyAttempts, *f.Attempts)
	}
	if f.Sends != nil {
		n.add(KeySends, *f.Sends)
	}
	if f.MaxGrade != nil {
		n.add(KeyMaxGrade, *f.MaxGrade)
	}
	if f.AvgHR != nil {
		n.add(KeyAvgHR, *f.AvgHR)
	}
	if f.MaxHR != nil {
		n.add(KeyMaxHR, *f.MaxHR)
	}

	return n
}

func (n *Note) add(key string, value any) {
	n.headers = append(n.headers, header{key: key, value: value})
}

// Render serializes the note as YAML frontmatter plus body. Keys keep
// insertion order, which yaml.Marshal of a map would not.
func (n Note) Render() ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, h := range n.headers {
		keyNode := &yaml.Node{}
		keyNode.SetString(h.key)

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(h.value); err != nil {
			return nil, fmt.Errorf("encode header %s: %w", h.key, err)
		}
		// Strings are always quoted so date- and time-shaped values
		// cannot be re-read as YAML timestamps or sexagesimals.
		if _, ok := h.value.(string); ok {
			valueNode.Style = yaml.DoubleQuotedStyle
		}
		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.WriteString(n.body)
	return buf.Bytes(), nil
}

// parseFrontmatter extracts the frontmatter header fields of a note.
// ok is false when the note has no well-formed frontmatter block, which
// marks it as user-authored rather than synced.
func parseFrontmatter(data []byte) (map[string]any, bool) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return nil, false
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return nil, false
	}

	var fields map[string]any
	if err := yaml.Unmarshal(parts[0], &fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// headerString reads a frontmatter value as a string, tolerating the
// numeric form older notes used for ids.
func headerString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

// formatDuration renders a duration as "HH:MM:SS".
func formatDuration(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
