package marks

import (
	"math"
	"strconv"
	"strings"
)

// Results
const (
	ResultPass = "PASS"
	ResultFail = "FAIL"
)

// Pass thresholds.
const (
	minInternal = 20
	minExternal = 18
	minTotal    = 40
)

// Internal weight of the CIE average: lab subjects are scaled to 15,
// theory subjects to 25.
const (
	labWeight    = 15
	theoryWeight = 25
)

// Evaluation holds the values derived from a mark's raw components.
// They are recomputed on every read and never persisted.
type Evaluation struct {
	Internal float64 `json:"internal"`
	Total    float64 `json:"total"`
	Result   string  `json:"result"`
}

// Evaluate derives the internal component, total and result from raw marks.
// The half-weighted CIE average is rounded up to the next integer before the
// lab and assignment components are added.
func Evaluate(cie1, cie2, lab, assignment, external float64, isLab bool) Evaluation {
	weight := float64(theoryWeight)
	if isLab {
		weight = labWeight
	}

	internal := math.Ceil((cie1+cie2)/50*weight) + lab + assignment
	total := internal + external

	result := ResultFail
	if internal >= minInternal && external >= minExternal && total >= minTotal {
		result = ResultPass
	}
	return Evaluation{Internal: internal, Total: total, Result: result}
}

// FlexNum is a JSON number that tolerates sloppy input: quoted numbers parse
// normally, while anything malformed, empty or null coerces to 0 instead of
// failing the request.
type FlexNum float64

func (n *FlexNum) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		*n = 0
		return nil
	}
	*n = FlexNum(f)
	return nil
}

// MeanSGPA computes the rolling CGPA as the mean of per-semester SGPAs,
// rounded to 2 decimals.
func MeanSGPA(sgpas []float64) float64 {
	if len(sgpas) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sgpas {
		sum += s
	}
	return math.Round(sum/float64(len(sgpas))*100) / 100
}
