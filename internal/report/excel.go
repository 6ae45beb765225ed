// Package report renders a computed transport plan as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/grcstudio/transport-planner/internal/planner"
)

const (
	bedsSheet    = "Beds"
	trucksSheet  = "Truck Summary"
	summarySheet = "Summary"
)

// WriteWorkbook writes the plan as a three-sheet workbook: per-bed detail,
// per-truck summary, and overall totals.
func WriteWorkbook(w io.Writer, plan planner.Plan) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), bedsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeBeds(f, plan.Beds); err != nil {
		return err
	}
	if err := writeTrucks(f, plan.Trucks); err != nil {
		return err
	}
	if err := writeSummary(f, plan); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeBeds(f *excelize.File, beds []planner.BedSummary) error {
	header := []interface{}{"Length", "Height", "Width", "Weight", "Num Panels", "Panel Types"}
	if err := setRow(f, bedsSheet, 1, header); err != nil {
		return err
	}
	for i, bed := range beds {
		row := []interface{}{
			bed.Length,
			bed.Height,
			bed.Width,
			bed.Weight,
			bed.PanelCount,
			strings.Join(bed.PanelTypes, ", "),
		}
		if err := setRow(f, bedsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrucks(f *excelize.File, trucks []planner.TruckSummary) error {
	if _, err := f.NewSheet(trucksSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", trucksSheet, err)
	}
	header := []interface{}{"Truck #", "Num Beds", "Total Weight (kg)", "Panel Types"}
	if err := setRow(f, trucksSheet, 1, header); err != nil {
		return err
	}
	for i, truck := range trucks {
		row := []interface{}{
			truck.Index,
			truck.BedCount,
			truck.TotalWeight,
			joinBedTypes(truck.PanelTypes),
		}
		if err := setRow(f, trucksSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, plan planner.Plan) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", summarySheet, err)
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Beds", plan.TotalBeds},
		{"Total Trucks", plan.TotalTrucks},
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// joinBedTypes flattens the per-bed type lists into the comma-joined label
// string the report has always shown; duplicates are kept.
func joinBedTypes(bedTypes [][]string) string {
	parts := make([]string, 0, len(bedTypes))
	for _, types := range bedTypes {
		parts = append(parts, strings.Join(types, ", "))
	}
	return strings.Join(parts, ", ")
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %q: %w", row, sheet, err)
	}
	return nil
}
