// Package storetest builds small jlcparts-shaped catalog databases for tests.
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE categories (
  id INTEGER PRIMARY KEY NOT NULL,
  category TEXT NOT NULL,
  subcategory TEXT NOT NULL
);
CREATE TABLE manufacturers (
  id INTEGER PRIMARY KEY NOT NULL,
  name TEXT NOT NULL
);
CREATE TABLE components (
  lcsc INTEGER PRIMARY KEY NOT NULL,
  category_id INTEGER NOT NULL,
  mfr TEXT NOT NULL,
  package TEXT NOT NULL,
  joints INTEGER NOT NULL DEFAULT 0,
  manufacturer_id INTEGER NOT NULL,
  basic INTEGER NOT NULL,
  description TEXT NOT NULL,
  datasheet TEXT NOT NULL,
  stock INTEGER NOT NULL,
  price TEXT,
  last_update INTEGER NOT NULL DEFAULT 0,
  extra TEXT,
  preferred INTEGER NOT NULL DEFAULT 0
);
`

type Category struct {
	ID          int64
	Category    string
	Subcategory string
}

type Manufacturer struct {
	ID   int64
	Name string
}

// Component is a components row. Nil Price or Extra store SQL NULL.
type Component struct {
	LCSC           int64
	CategoryID     int64
	ManufacturerID int64
	MFR            string
	Package        string
	Basic          bool
	Preferred      bool
	Description    string
	Datasheet      string
	Stock          int64
	Price          *string
	Extra          *string
}

type Catalog struct {
	Categories    []Category
	Manufacturers []Manufacturer
	Components    []Component
}

// Str returns a pointer to s, for Component.Price and Component.Extra.
func Str(s string) *string { return &s }

// Default is a small catalog covering valid, malformed and absent JSON.
func Default() Catalog {
	return Catalog{
		Categories: []Category{
			{ID: 1, Category: "Resistors", Subcategory: "Chip Resistor - Surface Mount"},
			{ID: 2, Category: "Capacitors", Subcategory: "Multilayer Ceramic Capacitors MLCC - SMD/SMT"},
			{ID: 3, Category: "Diodes", Subcategory: "Schottky Barrier Diodes (SBD)"},
		},
		Manufacturers: []Manufacturer{
			{ID: 1, Name: "UNI-ROYAL(Uniroyal Elec)"},
			{ID: 2, Name: "Samsung Electro-Mechanics"},
			{ID: 3, Name: "MDD(Microdiode Electronics)"},
		},
		Components: []Component{
			{
				LCSC: 25804, CategoryID: 1, ManufacturerID: 1,
				MFR: "0603WAF1002T5E", Package: "0603", Basic: true, Preferred: true,
				Description: "100mW 10kΩ ±1% 0603 Chip Resistor",
				Datasheet:   "https://example.com/ds/C25804.pdf",
				Stock:       1200000,
				Price:       Str(`[{"qFrom":1,"qTo":199,"price":0.0011},{"qFrom":200,"qTo":null,"price":0.0006}]`),
				Extra: Str(`{"attributes":{"Resistance":"10kΩ","Tolerance":"±1%"},` +
					`"images":[{"96x96":"https://img.example.com/96/C25804.jpg","224x224":"https://img.example.com/224/C25804.jpg","900x900":"https://img.example.com/900/C25804.jpg"}]}`),
			},
			{
				LCSC: 1525, CategoryID: 2, ManufacturerID: 2,
				MFR: "CL05B104KO5NNNC", Package: "0402", Basic: true, Preferred: false,
				Description: "16V 100nF X7R ±10% 0402 MLCC",
				Datasheet:   "https://example.com/ds/C1525.pdf",
				Stock:       5000000,
				Price:       Str(`[{"qFrom":null,"qTo":100,"price":0.05}]`),
				Extra:       Str(`{"attributes":`),
			},
			{
				LCSC: 8598, CategoryID: 3, ManufacturerID: 3,
				MFR: "SS34", Package: "SMA(DO-214AC)", Basic: false, Preferred: false,
				Description: "40V 3A Schottky Diode",
				Datasheet:   "",
				Stock:       0,
				Price:       nil,
				Extra:       nil,
			},
		},
	}
}

// NewCatalog writes c into a fresh database under t.TempDir and returns its path.
func NewCatalog(t testing.TB, c Catalog) string {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.sqlite3")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	for _, cat := range c.Categories {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO categories(id, category, subcategory) VALUES(?, ?, ?)`,
			cat.ID, cat.Category, cat.Subcategory,
		); err != nil {
			t.Fatalf("insert category %d: %v", cat.ID, err)
		}
	}
	for _, m := range c.Manufacturers {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO manufacturers(id, name) VALUES(?, ?)`, m.ID, m.Name,
		); err != nil {
			t.Fatalf("insert manufacturer %d: %v", m.ID, err)
		}
	}
	for _, comp := range c.Components {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO components(lcsc, category_id, mfr, package, manufacturer_id, basic, description, datasheet, stock, price, extra, preferred)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			comp.LCSC, comp.CategoryID, comp.MFR, comp.Package, comp.ManufacturerID,
			boolToInt(comp.Basic), comp.Description, comp.Datasheet, comp.Stock,
			nullable(comp.Price), nullable(comp.Extra), boolToInt(comp.Preferred),
		); err != nil {
			t.Fatalf("insert component %d: %v", comp.LCSC, err)
		}
	}
	return path
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
