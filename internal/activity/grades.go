package activity

import "strings"

// fontToHueco maps Fontainebleau boulder grades to the V-scale. Grade scales
// are ordinal, not numeric, so the conversion is a lookup table; there is no
// arithmetic that produces a correct result.
var fontToHueco = map[string]string{
	"3":   "VB",
	"4":   "V0",
	"4+":  "V0",
	"5":   "V1",
	"5+":  "V2",
	"6A":  "V3",
	"6A+": "V3",
	"6B":  "V4",
	"6B+": "V4",
	"6C":  "V5",
	"6C+": "V5",
	"7A":  "V6",
	"7A+": "V7",
	"7B":  "V8",
	"7B+": "V9",
	"7C":  "V9",
	"7C+": "V10",
	"8A":  "V11",
	"8A+": "V12",
	"8B":  "V13",
	"8B+": "V14",
	"8C":  "V15",
	"8C+": "V16",
	"9A":  "V17",
}

// ConvertGrade converts a source boulder grade to the V-scale.
// Grades already on the V-scale pass through unchanged. Unknown grades
// return ok=false; the caller omits the field rather than storing a guess.
func ConvertGrade(source string) (string, bool) {
	g := strings.ToUpper(strings.TrimSpace(source))
	if g == "" {
		return "", false
	}
	if g == "VB" || (strings.HasPrefix(g, "V") && len(g) > 1) {
		return g, true
	}
	v, ok := fontToHueco[g]
	return v, ok
}
