package planner

// Panel is a single precast unit to transport. Dimensions are millimetres
// and already include the handling clearance applied by the normalizer;
// weight is kilograms. Callers must supply positive dimensions and a
// non-negative weight — the packer does not re-validate.
type Panel struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Weight float64 `json:"weight"`
}

// BedSummary describes one storage bed after packing. Length and Height are
// the maxima over member panels, Width is the configured bed capacity, and
// Weight is the member total.
type BedSummary struct {
	Length     float64  `json:"length"`
	Height     float64  `json:"height"`
	Width      float64  `json:"width"`
	Weight     float64  `json:"weight"`
	PanelCount int      `json:"panelCount"`
	PanelTypes []string `json:"panelTypes"`
}

// TruckSummary describes one truck after the second packing pass.
// PanelTypes keeps the raw type list of every member bed, in bed order, so
// renderers decide how to join or dedupe labels.
type TruckSummary struct {
	Index       int        `json:"truck"`
	BedCount    int        `json:"bedCount"`
	TotalLength float64    `json:"totalLength"`
	TotalWeight float64    `json:"totalWeight"`
	PanelTypes  [][]string `json:"panelTypes"`
}

// Limits holds the capacity constants for both packing passes.
type Limits struct {
	BedWidth         float64 `json:"bedWidth"`
	BedWeightLimit   float64 `json:"bedWeightLimit"`
	TruckMaxLength   float64 `json:"truckMaxLength"`
	TruckWeightLimit float64 `json:"truckWeightLimit"`
}

// DefaultLimits returns the standard bed and truck capacities
// (millimetres and kilograms).
func DefaultLimits() Limits {
	return Limits{
		BedWidth:         2400,
		BedWeightLimit:   2500,
		TruckMaxLength:   13620,
		TruckWeightLimit: 15000,
	}
}

// Plan is the full result of one packing run.
type Plan struct {
	Beds           []BedSummary   `json:"beds"`
	Trucks         []TruckSummary `json:"trucks"`
	TotalBeds      int            `json:"totalBeds"`
	TotalTrucks    int            `json:"totalTrucks"`
	TotalWeight    float64        `json:"totalWeight"`
	OversizePanels int            `json:"oversizePanels"`
}

// Planner describes the behaviour required from a transport planner.
type Planner interface {
	BuildPlan(panels []Panel, limits Limits) Plan
}
