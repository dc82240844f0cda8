// Package render turns catalog entities into the text returned by tools.
package render

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"partsmcp/internal/model"
)

const (
	CategoryNotFound     = "No matching category found"
	ManufacturerNotFound = "No matching manufacturer found"
	PartNotFound         = "No matching part found"
)

// Table is a Markdown table with a fixed header.
type Table struct {
	header []string
	rows   [][]string
}

func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// AddRow appends one body row. Cells are rendered with cast.ToString.
func (t *Table) AddRow(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = escapeCell(cast.ToString(c))
	}
	t.rows = append(t.rows, row)
}

func (t *Table) String() string {
	var b strings.Builder
	writeRow(&b, t.header)
	sep := make([]string, len(t.header))
	for i := range sep {
		sep[i] = "--"
	}
	b.WriteByte('\n')
	writeRow(&b, sep)
	for _, row := range t.rows {
		b.WriteByte('\n')
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteByte('|')
	for _, c := range cells {
		b.WriteString(c)
		b.WriteByte('|')
	}
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// escapeCell keeps a value inside one cell on one line.
func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}

func CategoryTable(cats []model.Category) string {
	t := NewTable("Category ID", "Category", "Subcategory")
	for _, c := range cats {
		t.AddRow(c.ID, c.Category, c.Subcategory)
	}
	return t.String()
}

// SubcategoryTable renders subcategory search hits, or the not-found message.
func SubcategoryTable(cats []model.Category) string {
	if len(cats) == 0 {
		return CategoryNotFound
	}
	t := NewTable("Category ID", "Subcategory")
	for _, c := range cats {
		t.AddRow(c.ID, c.Subcategory)
	}
	return t.String()
}

func ManufacturerTable(ms []model.Manufacturer) string {
	t := NewTable("Manufacturer ID", "Manufacturer")
	for _, m := range ms {
		t.AddRow(m.ID, m.Name)
	}
	return t.String()
}

// ManufacturerSearchTable is ManufacturerTable, or the not-found message
// when nothing matched.
func ManufacturerSearchTable(ms []model.Manufacturer) string {
	if len(ms) == 0 {
		return ManufacturerNotFound
	}
	return ManufacturerTable(ms)
}

func CategoryText(c model.Category) string {
	return fmt.Sprintf("Category: %s, Subcategory: %s", c.Category, c.Subcategory)
}

// ComponentRow is a search hit with its decoded display fields.
type ComponentRow struct {
	model.Component
	PriceText     string
	AttributeText string
}

func ComponentTable(rows []ComponentRow) string {
	t := NewTable(
		"Part", "Category ID", "Manufacturer ID", "MPN", "Basic", "Preferred",
		"Description", "Package", "Stock", "Price", "Attributes",
	)
	for _, r := range rows {
		t.AddRow(
			r.LCSC, r.CategoryID, r.ManufacturerID, r.MFR, r.Basic, r.Preferred,
			r.Description, r.Package, r.Stock, r.PriceText, r.AttributeText,
		)
	}
	return t.String()
}

// ErrorText is the user-visible form of a failure inside a tool.
func ErrorText(err error) string {
	return "An error occurred: " + err.Error()
}
