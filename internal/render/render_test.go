package render

import (
	"errors"
	"strings"
	"testing"

	"partsmcp/internal/model"
)

func TestCategoryTable(t *testing.T) {
	got := CategoryTable([]model.Category{
		{ID: 1, Category: "Resistors", Subcategory: "Chip Resistor"},
		{ID: 2, Category: "Capacitors", Subcategory: "MLCC"},
	})
	want := "|Category ID|Category|Subcategory|\n|--|--|--|\n|1|Resistors|Chip Resistor|\n|2|Capacitors|MLCC|"
	if got != want {
		t.Fatalf("unexpected table:\n%s\nwant:\n%s", got, want)
	}
}

func TestListTablesKeepHeaderWhenEmpty(t *testing.T) {
	if got := CategoryTable(nil); got != "|Category ID|Category|Subcategory|\n|--|--|--|" {
		t.Fatalf("unexpected empty category table %q", got)
	}
	if got := ManufacturerTable(nil); got != "|Manufacturer ID|Manufacturer|\n|--|--|" {
		t.Fatalf("unexpected empty manufacturer table %q", got)
	}
	if got := ComponentTable(nil); strings.Count(got, "\n") != 1 {
		t.Fatalf("expected header and separator only, got %q", got)
	}
}

func TestSearchTablesReportNotFound(t *testing.T) {
	if got := ManufacturerSearchTable(nil); got != ManufacturerNotFound {
		t.Fatalf("got %q", got)
	}
	if got := SubcategoryTable([]model.Category{}); got != CategoryNotFound {
		t.Fatalf("got %q", got)
	}
	got := ManufacturerSearchTable([]model.Manufacturer{{ID: 7, Name: "TI"}})
	if !strings.HasSuffix(got, "\n|7|TI|") {
		t.Fatalf("unexpected table %q", got)
	}
}

func TestComponentTable(t *testing.T) {
	got := ComponentTable([]ComponentRow{{
		Component: model.Component{
			LCSC: 25804, CategoryID: 1, ManufacturerID: 2, MFR: "0603WAF1002T5E",
			Basic: true, Preferred: false, Description: "10k", Package: "0603", Stock: 10,
		},
		PriceText:     "1~ 0.001USD/unit",
		AttributeText: "Resistance:10k",
	}})
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if strings.Count(lines[0], "|") != 12 || strings.Count(lines[1], "--") != 11 {
		t.Fatalf("unexpected header %q / %q", lines[0], lines[1])
	}
	want := "|25804|1|2|0603WAF1002T5E|true|false|10k|0603|10|1~ 0.001USD/unit|Resistance:10k|"
	if lines[2] != want {
		t.Fatalf("unexpected row\n got %q\nwant %q", lines[2], want)
	}
}

func TestCellEscaping(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddRow("x|y\nz")
	if got := tbl.String(); !strings.HasSuffix(got, `|x\|y z|`) {
		t.Fatalf("cell not escaped: %q", got)
	}
}

func TestScalarText(t *testing.T) {
	if got := CategoryText(model.Category{Category: "Diodes", Subcategory: "Zener"}); got != "Category: Diodes, Subcategory: Zener" {
		t.Fatalf("got %q", got)
	}
	if got := ErrorText(errors.New("boom")); got != "An error occurred: boom" {
		t.Fatalf("got %q", got)
	}
}
