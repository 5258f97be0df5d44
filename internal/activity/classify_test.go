package activity

import (
	"testing"

	"github.com/jtammen/stride/internal/errors"
)

func TestClassify_KnownLabel(t *testing.T) {
	c, err := Classify("trail_running")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if c.Category != Cardio {
		t.Errorf("Category = %q, want %q", c.Category, Cardio)
	}
	if c.Exercise != "Trail Running" {
		t.Errorf("Exercise = %q, want %q", c.Exercise, "Trail Running")
	}
}

func TestClassify_LegacyLabelsResolveLikeModern(t *testing.T) {
	pairs := [][2]string{
		{"indoor_walk", "indoor_walking"},
		{"indoor_bike", "indoor_cycling"},
		{"surfing_v2", "surfing"},
		{"skate_skiing_ws", "skate_skiing"},
		{"backcountry_skiing_ws", "backcountry_skiing"},
		{"resort_skiing_snowboarding_ws", "resort_skiing"},
		{"toe_to_toe_no_tm", "toe_to_toe"},
	}

	for _, pair := range pairs {
		legacy, err := Classify(pair[0])
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", pair[0], err)
		}
		modern, err := Classify(pair[1])
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", pair[1], err)
		}
		if legacy != modern {
			t.Errorf("Classify(%q) = %+v, want same as %q (%+v)", pair[0], legacy, pair[1], modern)
		}
	}
}

func TestClassify_UnknownLabel(t *testing.T) {
	_, err := Classify("underwater_basket_weaving")
	if err == nil {
		t.Fatal("expected error for unknown label")
	}
	if !errors.Is(err, errors.ErrUnknownActivityType) {
		t.Errorf("error code = %v, want UNKNOWN_ACTIVITY_TYPE", err)
	}
	sErr := err.(*errors.StrideError)
	if sErr.Details["type_label"] != "underwater_basket_weaving" {
		t.Errorf("Details[type_label] = %v, want the raw label", sErr.Details["type_label"])
	}
}

func TestClassify_CaseSensitive(t *testing.T) {
	if _, err := Classify("Running"); err == nil {
		t.Error("lookup should be case-sensitive exact match")
	}
}

// Totality: every label in the table resolves to a member of the closed enum.
func TestClassify_TotalOverTable(t *testing.T) {
	valid := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		valid[c] = true
	}

	labels := KnownLabels()
	if len(labels) == 0 {
		t.Fatal("taxonomy table is empty")
	}

	for _, label := range labels {
		c, err := Classify(label)
		if err != nil {
			t.Errorf("Classify(%q) failed: %v", label, err)
			continue
		}
		if !valid[c.Category] {
			t.Errorf("Classify(%q) returned category %q outside the closed enum", label, c.Category)
		}
		if c.Exercise == "" {
			t.Errorf("Classify(%q) returned empty exercise name", label)
		}
	}
}
