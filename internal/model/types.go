package model

type Category struct {
	ID          int64
	Category    string
	Subcategory string
}

type Manufacturer struct {
	ID   int64
	Name string
}

// Component is one row of the components table. Price and Extra hold the
// raw JSON text as stored; Valid is false when the column is NULL.
type Component struct {
	LCSC           int64
	CategoryID     int64
	ManufacturerID int64
	MFR            string
	Basic          bool
	Preferred      bool
	Description    string
	Package        string
	Stock          int64
	Price          RawJSON
	Extra          RawJSON
}

// RawJSON is a nullable JSON text column.
type RawJSON struct {
	Text  string
	Valid bool
}

// Bound is a price tier quantity limit. The zero value is unbounded, which
// is distinct from a bounded quantity of 0.
type Bound struct {
	Qty     string
	Bounded bool
}

// Unbounded returns the sentinel for "no limit in this direction".
func Unbounded() Bound { return Bound{} }

// BoundAt returns a bound at qty, kept as its decimal text.
func BoundAt(qty string) Bound { return Bound{Qty: qty, Bounded: true} }

type PriceTier struct {
	From  Bound
	To    Bound
	Price string
}

// Attribute is one entry of extra.attributes, in stored order.
type Attribute struct {
	Key   string
	Value string
}

// Image is one quality-label/URL entry of extra.images, in stored order.
type Image struct {
	Label string
	URL   string
}

// SearchCriteria holds the optional filters of a parts search. A nil field
// imposes no filter.
type SearchCriteria struct {
	CategoryID       *int64  `json:"category_id,omitempty" jsonschema:"valid category id, obtained with list_categories"`
	ManufacturerID   *int64  `json:"manufacturer_id,omitempty" jsonschema:"valid manufacturer id, obtained with search_manufacturer or list_manufacturers"`
	ManufacturerPN   *string `json:"manufacturer_pn,omitempty" jsonschema:"manufacturer part number as a SQLite LIKE pattern"`
	Description      *string `json:"description,omitempty" jsonschema:"free-text description as a SQLite LIKE pattern; alternatives and spelling variants need separate searches"`
	Package          *string `json:"package,omitempty" jsonschema:"exact package name"`
	IsBasicParts     *bool   `json:"is_basic_parts,omitempty" jsonschema:"restrict to basic parts (true) or extended parts (false)"`
	IsPreferredParts *bool   `json:"is_preferred_parts,omitempty" jsonschema:"restrict to preferred parts (true) or non-preferred parts (false)"`
}

// ImageBlock is a fetched image ready to be returned as a content block.
type ImageBlock struct {
	MIMEType string
	Data     string // base64
}
