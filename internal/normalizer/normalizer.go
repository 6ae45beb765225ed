// Package normalizer turns raw spreadsheet rows into planner panels. It
// coerces numeric cells, inflates dimensions by the handling clearance, and
// estimates missing weights, so the planner only ever sees well-formed
// input. Rows it cannot use are skipped and counted, never fatal.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/grcstudio/transport-planner/internal/planner"
)

// RawPanel is one source row before coercion. All fields are the raw cell
// text; Weight may be empty when the source sheet has no weight column.
type RawPanel struct {
	Type   string
	Length string
	Height string
	Depth  string
	Weight string
}

// Options control normalization. Spacing is in millimetres and is added
// twice to every dimension. Thickness (metres), Density (kg/m³) and Buffer
// drive the weight estimate used when a row carries no usable weight.
type Options struct {
	Spacing   float64
	Thickness float64
	Density   float64
	Buffer    float64
}

// DefaultOptions returns the standard clearance and estimation constants.
func DefaultOptions() Options {
	return Options{
		Spacing:   100,
		Thickness: 0.016,
		Density:   2100,
		Buffer:    0.10,
	}
}

// Report summarises a normalization run.
type Report struct {
	Parsed  int
	Skipped int
}

// Normalize converts raw rows into panels. Rows with a blank type label or
// a non-numeric dimension are skipped. Dimensions are inflated by
// 2×spacing; a missing or non-positive weight is estimated from panel
// area, thickness and density. Panels whose depth reads as plate thickness
// (≤ 5 mm) use the configured thickness fallback instead.
func Normalize(rows []RawPanel, opts Options) ([]planner.Panel, Report) {
	panels := make([]planner.Panel, 0, len(rows))
	report := Report{}

	for _, row := range rows {
		label := strings.TrimSpace(row.Type)
		if label == "" {
			report.Skipped++
			continue
		}

		length, okL := parseNumber(row.Length)
		height, okH := parseNumber(row.Height)
		depth, okD := parseNumber(row.Depth)
		if !okL || !okH || !okD || length <= 0 || height <= 0 || depth <= 0 {
			report.Skipped++
			continue
		}

		weight := 0.0
		if w, ok := parseNumber(row.Weight); ok && w > 0 {
			weight = w
		}
		if weight == 0 {
			weight = estimateWeight(length, height, depth, opts)
		}

		panels = append(panels, planner.Panel{
			Type:   label,
			Width:  length + 2*opts.Spacing,
			Height: height + 2*opts.Spacing,
			Depth:  depth + 2*opts.Spacing,
			Weight: weight,
		})
		report.Parsed++
	}

	return panels, report
}

// estimateWeight derives a weight in kilograms from the raw (pre-clearance)
// dimensions: face area × thickness × density, plus a safety buffer. A depth
// above 5 mm is taken as the real panel thickness in millimetres; smaller
// values mean the sheet recorded a plate thickness elsewhere, so the
// configured fallback applies.
func estimateWeight(length, height, depth float64, opts Options) float64 {
	areaM2 := (length / 1000) * (height / 1000)
	thicknessM := opts.Thickness
	if depth > 5 {
		thicknessM = depth / 1000
	}
	volumeM3 := areaM2 * thicknessM
	return math.Round(volumeM3*opts.Density*(1+opts.Buffer)*100) / 100
}

// parseNumber coerces a cell to a float, tolerating surrounding whitespace
// and thousands separators.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
