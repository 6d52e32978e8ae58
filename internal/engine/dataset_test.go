package engine

import (
	"bytes"
	"strings"
	"testing"
)

const sampleCSV = `Product Name,Revenue,Quantity,Supplier Name,Lead time
Widget_A,100,2,Acme,4
Widget_B,50,1,Globex,7
Widget_A,20,1,Acme,
`

func mustParse(t *testing.T, csv string) *Dataset {
	t.Helper()
	ds, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestParseCSV(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	if ds.NumRows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.NumRows())
	}
	if ds.NumColumns() != 5 {
		t.Fatalf("Expected 5 columns, got %d", ds.NumColumns())
	}

	// Revenue is numeric in every row
	rev := ds.ColumnByName("Revenue")
	if rev[0].Kind != Number || rev[0].Num != 100 {
		t.Errorf("Row 0 Revenue: expected Number 100, got %+v", rev[0])
	}

	// Product is text
	prod := ds.ColumnByName("Product Name")
	if prod[1].Kind != Text || prod[1].Str != "Widget_B" {
		t.Errorf("Row 1 Product: expected Text Widget_B, got %+v", prod[1])
	}

	// Empty trailing cell is missing
	lead := ds.ColumnByName("Lead time")
	if lead[2].Kind != Missing {
		t.Errorf("Row 2 Lead time: expected Missing, got %+v", lead[2])
	}
	if ds.MissingCount(4) != 1 {
		t.Errorf("Lead time missing count: expected 1, got %d", ds.MissingCount(4))
	}
}

func TestParseValue(t *testing.T) {
	if v := parseValue("123.45"); v.Kind != Number || v.Num != 123.45 {
		t.Errorf("parseValue numeric failed: %+v", v)
	}
	if v := parseValue("  42 "); v.Kind != Number || v.Num != 42 {
		t.Errorf("parseValue trims before classifying: %+v", v)
	}
	if v := parseValue("N/A"); v.Kind != Text || v.Str != "N/A" {
		t.Errorf("parseValue text failed: %+v", v)
	}
	if v := parseValue("   "); v.Kind != Missing {
		t.Errorf("parseValue blank should be missing: %+v", v)
	}
	// ParseFloat accepts these spellings; they must become missing cells,
	// never Number, or they poison sums and JSON encoding.
	for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity"} {
		if v := parseValue(s); v.Kind != Missing {
			t.Errorf("parseValue(%q): expected Missing, got %+v", s, v)
		}
	}
}

func TestNumericColumns(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	// Revenue, Quantity and Lead time are numeric (missing cells allowed),
	// Product Name and Supplier Name are not.
	numeric := ds.NumericColumns()
	if len(numeric) != 3 {
		t.Fatalf("Expected 3 numeric columns, got %v", numeric)
	}

	// A single text cell disqualifies a column
	mixed := mustParse(t, "Price\n10\nN/A\n20\n")
	if mixed.IsNumericColumn(0) {
		t.Error("Column with text cell should not be numeric")
	}
}

func TestDistinctCount(t *testing.T) {
	ds := mustParse(t, sampleCSV)
	i, _ := ds.ColumnIndex("Product Name")
	if got := ds.DistinctCount(i); got != 2 {
		t.Errorf("Expected 2 distinct products, got %d", got)
	}
}

func TestParseCSVErrors(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err != ErrEmptyDataset {
		t.Errorf("Empty input: expected ErrEmptyDataset, got %v", err)
	}
	// Ragged row
	if _, err := ParseCSV(strings.NewReader("A,B\n1,2,3\n")); err == nil {
		t.Error("Expected error for ragged row")
	}
}

func TestWriteCSV(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	reparsed, err := ParseCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if reparsed.NumRows() != ds.NumRows() || reparsed.NumColumns() != ds.NumColumns() {
		t.Errorf("Export shape mismatch: %dx%d vs %dx%d",
			reparsed.NumRows(), reparsed.NumColumns(), ds.NumRows(), ds.NumColumns())
	}
	if reparsed.Columns[0] != "Product Name" {
		t.Errorf("Export header mismatch: %v", reparsed.Columns)
	}
	if reparsed.ColumnByName("Revenue")[0].Num != 100 {
		t.Error("Export lost a value")
	}
}
