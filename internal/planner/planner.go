package planner

type firstFitPlanner struct{}

// New creates a Planner based on two-level first-fit packing.
func New() Planner {
	return &firstFitPlanner{}
}

func (p *firstFitPlanner) BuildPlan(panels []Panel, limits Limits) Plan {
	beds := PackBeds(panels, limits.BedWidth, limits.BedWeightLimit)
	trucks := PackTrucks(beds, limits.TruckMaxLength, limits.TruckWeightLimit)

	plan := Plan{
		Beds:        beds,
		Trucks:      trucks,
		TotalBeds:   len(beds),
		TotalTrucks: len(trucks),
	}
	for _, bed := range beds {
		plan.TotalWeight += bed.Weight
	}
	for _, panel := range panels {
		if panel.Depth > limits.BedWidth || panel.Weight > limits.BedWeightLimit {
			plan.OversizePanels++
		}
	}
	return plan
}

// bin accumulates item indices together with its two running totals, so a
// fit check never rescans members.
type bin struct {
	items     []int
	primary   float64
	secondary float64
}

// firstFit packs n items into bins under two scalar capacity constraints.
// Items are processed in input order; each goes into the first open bin
// whose totals stay within both limits, otherwise it opens a new bin. The
// lone item in a fresh bin is accepted unconditionally, even when it
// exceeds a limit on its own: capacity only gates joining an existing bin.
// Input order therefore determines the grouping — this is deliberately a
// reproducible heuristic, not an optimal packing.
func firstFit(n int, primary, secondary func(i int) float64, primaryLimit, secondaryLimit float64) [][]int {
	var bins []bin
	for i := 0; i < n; i++ {
		placed := false
		for b := range bins {
			if bins[b].primary+primary(i) <= primaryLimit && bins[b].secondary+secondary(i) <= secondaryLimit {
				bins[b].items = append(bins[b].items, i)
				bins[b].primary += primary(i)
				bins[b].secondary += secondary(i)
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, bin{
				items:     []int{i},
				primary:   primary(i),
				secondary: secondary(i),
			})
		}
	}

	groups := make([][]int, len(bins))
	for i, b := range bins {
		groups[i] = b.items
	}
	return groups
}

// PackBeds groups panels onto storage beds with first-fit over cumulative
// depth and weight. Summaries are returned in the order beds were opened.
func PackBeds(panels []Panel, bedWidth, bedWeightLimit float64) []BedSummary {
	groups := firstFit(len(panels),
		func(i int) float64 { return panels[i].Depth },
		func(i int) float64 { return panels[i].Weight },
		bedWidth, bedWeightLimit,
	)

	summaries := make([]BedSummary, 0, len(groups))
	for _, group := range groups {
		summary := BedSummary{
			Width:      bedWidth,
			PanelCount: len(group),
			PanelTypes: make([]string, 0, len(group)),
		}
		for _, i := range group {
			if panels[i].Width > summary.Length {
				summary.Length = panels[i].Width
			}
			if panels[i].Height > summary.Height {
				summary.Height = panels[i].Height
			}
			summary.Weight += panels[i].Weight
			summary.PanelTypes = append(summary.PanelTypes, panels[i].Type)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// PackTrucks groups bed summaries onto trucks, first-fit over cumulative
// bed length and weight. Same ordering sensitivity and lone-item acceptance
// as PackBeds, one level up.
func PackTrucks(beds []BedSummary, truckMaxLength, truckWeightLimit float64) []TruckSummary {
	groups := firstFit(len(beds),
		func(i int) float64 { return beds[i].Length },
		func(i int) float64 { return beds[i].Weight },
		truckMaxLength, truckWeightLimit,
	)

	summaries := make([]TruckSummary, 0, len(groups))
	for ti, group := range groups {
		summary := TruckSummary{
			Index:      ti + 1,
			BedCount:   len(group),
			PanelTypes: make([][]string, 0, len(group)),
		}
		for _, i := range group {
			summary.TotalLength += beds[i].Length
			summary.TotalWeight += beds[i].Weight
			summary.PanelTypes = append(summary.PanelTypes, beds[i].PanelTypes)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
