package integrals

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CalculationRequest is the JSON body for POST /calculate.
type CalculationRequest struct {
	Function   string `json:"function"`
	Variable   string `json:"variable"`
	LowerLimit Bound  `json:"lower_limit"`
	UpperLimit Bound  `json:"upper_limit"`
}

// Bound is an optional integration limit. Clients may send it as a JSON
// number, a numeric string, or null/absent; anything that does not read as
// a finite real number is treated as unset downstream.
type Bound struct {
	raw string
	set bool
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*b = Bound{}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*b = Bound{raw: asString, set: true}
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*b = Bound{raw: asNumber.String(), set: true}
		return nil
	}
	// Malformed bounds degrade to "unset" rather than failing the request.
	*b = Bound{}
	return nil
}

// IsSet reports whether the client supplied a value at all.
func (b Bound) IsSet() bool { return b.set }

// Float parses the bound as a finite real number.
func (b Bound) Float() (float64, bool) {
	if !b.set {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(b.raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SampleSeries is a pair of equal-length ordered sequences; nil y-entries
// mark points that were non-finite or clamped but preserve position.
type SampleSeries struct {
	X []float64  `json:"x"`
	Y []*float64 `json:"y"`
}

// NewSampleSeries sanitizes both vectors into a transport-ready series.
func NewSampleSeries(xs, ys []float64) *SampleSeries {
	return &SampleSeries{X: xs, Y: Sanitize(ys)}
}

// CalculationResult is the JSON response for a successful calculation.
// Every series field may independently be null; the front end renders
// whatever is available.
type CalculationResult struct {
	Success        bool          `json:"success"`
	Integral       string        `json:"integral"`
	IntegralText   string        `json:"integral_text"`
	FunctionPoints *SampleSeries `json:"function_points"`
	IntegralPoints *SampleSeries `json:"integral_points"`
	DefiniteValue  *float64      `json:"definite_value"`
	AreaPoints     *SampleSeries `json:"area_points"`
}

// CalculationError is the JSON response when parsing, symbol validation or
// indefinite integration fails. The HTTP status is still 200; failure is
// signalled only through the success flag.
type CalculationError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
