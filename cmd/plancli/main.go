// Command plancli computes a transport plan from a panel schedule file and
// writes the result as an xlsx workbook, without running the HTTP service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/grcstudio/transport-planner/internal/logging"
	"github.com/grcstudio/transport-planner/internal/normalizer"
	"github.com/grcstudio/transport-planner/internal/planner"
	"github.com/grcstudio/transport-planner/internal/report"
)

func main() {
	kingpinApp := kingpin.New("plancli", "Compute a precast panel transport plan from a CSV or XLSX schedule")
	input := kingpinApp.Flag("input", "Panel schedule file (.csv or .xlsx)").Required().String()
	output := kingpinApp.Flag("output", "Output workbook path").Default("transport_plan.xlsx").String()
	delimiter := kingpinApp.Flag("delimiter", "CSV column delimiter").Default(";").String()
	headerRow := kingpinApp.Flag("header-row", "Zero-based row holding the column headers").Default("2").Int()
	spacing := kingpinApp.Flag("spacing", "Panel clearance in millimetres, added twice per dimension").Default("100").Float64()
	bedWidth := kingpinApp.Flag("bed-width", "Bed depth capacity in millimetres").Default("2400").Float64()
	bedWeightLimit := kingpinApp.Flag("bed-weight-limit", "Bed weight capacity in kilograms").Default("2500").Float64()
	truckMaxLength := kingpinApp.Flag("truck-max-length", "Truck length capacity in millimetres").Default("13620").Float64()
	truckWeightLimit := kingpinApp.Flag("truck-weight-limit", "Truck weight capacity in kilograms").Default("15000").Float64()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.NewConsole(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	limits := planner.Limits{
		BedWidth:         *bedWidth,
		BedWeightLimit:   *bedWeightLimit,
		TruckMaxLength:   *truckMaxLength,
		TruckWeightLimit: *truckWeightLimit,
	}

	if err := run(*input, *output, *delimiter, *headerRow, *spacing, limits, logger); err != nil {
		logger.Fatal("planning failed", zap.Error(err))
	}
}

func run(input, output, delimiter string, headerRow int, spacing float64, limits planner.Limits, logger *zap.Logger) error {
	rows, err := readRows(input, delimiter, headerRow)
	if err != nil {
		return err
	}

	opts := normalizer.DefaultOptions()
	opts.Spacing = spacing
	panels, parseReport := normalizer.Normalize(rows, opts)
	logger.Info("panels normalized",
		zap.Int("parsed", parseReport.Parsed),
		zap.Int("skipped", parseReport.Skipped),
	)
	if len(panels) == 0 {
		return fmt.Errorf("no usable panels in %s", input)
	}

	plan := planner.New().BuildPlan(panels, limits)
	logger.Info("plan computed",
		zap.Int("panels", len(panels)),
		zap.Int("beds", plan.TotalBeds),
		zap.Int("trucks", plan.TotalTrucks),
		zap.Float64("total_weight_kg", plan.TotalWeight),
		zap.Int("oversize_panels", plan.OversizePanels),
	)

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()

	if err := report.WriteWorkbook(out, plan); err != nil {
		return err
	}
	logger.Info("workbook written", zap.String("path", output))
	return nil
}

func readRows(input, delimiter string, headerRow int) ([]normalizer.RawPanel, error) {
	opts := normalizer.DefaultReadOptions()
	opts.HeaderRow = headerRow
	if delimiter != "" {
		opts.Delimiter = rune(delimiter[0])
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if strings.EqualFold(filepath.Ext(input), ".xlsx") {
		return normalizer.ReadXLSX(f, opts)
	}
	return normalizer.ReadCSV(f, opts)
}
