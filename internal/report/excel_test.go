package report

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/grcstudio/transport-planner/internal/planner"
)

func testPlan() planner.Plan {
	panels := []planner.Panel{
		{Type: "W-01", Width: 3000, Height: 2000, Depth: 1000, Weight: 800},
		{Type: "W-02", Width: 3200, Height: 2100, Depth: 1000, Weight: 900},
		{Type: "W-03", Width: 2800, Height: 1900, Depth: 1000, Weight: 850},
	}
	return planner.New().BuildPlan(panels, planner.DefaultLimits())
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	plan := testPlan()

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, plan); err != nil {
		t.Fatalf("WriteWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	wantSheets := []string{"Beds", "Truck Summary", "Summary"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, wantSheets) {
		t.Fatalf("expected sheets %v, got %v", wantSheets, got)
	}

	bedRows, err := f.GetRows("Beds")
	if err != nil {
		t.Fatalf("read Beds sheet: %v", err)
	}
	if len(bedRows) != plan.TotalBeds+1 {
		t.Fatalf("expected %d bed rows plus header, got %d", plan.TotalBeds, len(bedRows))
	}
	if bedRows[0][0] != "Length" || bedRows[0][5] != "Panel Types" {
		t.Fatalf("unexpected Beds header: %v", bedRows[0])
	}
	if bedRows[1][5] != "W-01, W-02" {
		t.Fatalf("expected joined panel types, got %q", bedRows[1][5])
	}

	truckRows, err := f.GetRows("Truck Summary")
	if err != nil {
		t.Fatalf("read Truck Summary sheet: %v", err)
	}
	if len(truckRows) != plan.TotalTrucks+1 {
		t.Fatalf("expected %d truck rows plus header, got %d", plan.TotalTrucks, len(truckRows))
	}
	if truckRows[1][0] != "1" {
		t.Fatalf("expected truck index 1, got %q", truckRows[1][0])
	}

	summaryRows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read Summary sheet: %v", err)
	}
	if len(summaryRows) != 3 {
		t.Fatalf("expected 3 summary rows, got %d", len(summaryRows))
	}
	if summaryRows[1][0] != "Total Beds" || summaryRows[2][0] != "Total Trucks" {
		t.Fatalf("unexpected summary rows: %v", summaryRows)
	}
}

func TestWriteWorkbookEmptyPlan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, planner.Plan{}); err != nil {
		t.Fatalf("WriteWorkbook returned error for empty plan: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	bedRows, err := f.GetRows("Beds")
	if err != nil {
		t.Fatalf("read Beds sheet: %v", err)
	}
	if len(bedRows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(bedRows))
	}
}

func TestJoinBedTypes(t *testing.T) {
	t.Parallel()

	got := joinBedTypes([][]string{{"A", "B"}, {"C"}, {"A"}})
	if want := "A, B, C, A"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := joinBedTypes(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
