package gonewton

import (
	"bytes"
	"encoding/json"
	"math"
)

// DefaultPlotSamples is the number of domain samples in PlotData.
const DefaultPlotSamples = 200

// Value is a float64 that marshals NaN and ±Inf as JSON null, the marker for
// "undefined at this sample".
type Value float64

func (v Value) Finite() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// PlotData samples f around the iteration path for visualization.
type PlotData struct {
	XVals           []Value `json:"x_vals"`
	YVals           []Value `json:"y_vals"`
	IterationPoints []Value `json:"iteration_points"`
	IterationY      []Value `json:"iteration_y"`
}

// BuildPlot samples f on [min-m, max+m] where min and max bound the finite
// entries of points and m is half their spread, or 1 when they coincide.
// samples < 2 selects DefaultPlotSamples.
func BuildPlot(f Evaluator, points []float64, samples int) PlotData {
	if samples < 2 {
		samples = DefaultPlotSamples
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	margin := 0.5 * (hi - lo)
	if margin == 0 {
		margin = 1
	}
	lo, hi = lo-margin, hi+margin

	pd := PlotData{
		XVals:           make([]Value, samples),
		YVals:           make([]Value, samples),
		IterationPoints: make([]Value, len(points)),
		IterationY:      make([]Value, len(points)),
	}
	step := (hi - lo) / float64(samples-1)
	for i := 0; i < samples; i++ {
		x := lo + float64(i)*step
		if i == samples-1 {
			x = hi
		}
		pd.XVals[i] = Value(x)
		pd.YVals[i] = Value(f(x))
	}
	for i, p := range points {
		pd.IterationPoints[i] = Value(p)
		pd.IterationY[i] = Value(f(p))
	}
	return pd
}

// pathOf lists every x_n of the trace followed by the solution.
func pathOf(c *Converged) []float64 {
	points := make([]float64, 0, len(c.Steps)+1)
	for _, s := range c.Steps {
		points = append(points, s.X)
	}
	return append(points, c.Solution)
}
