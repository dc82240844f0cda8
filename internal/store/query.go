package store

import (
	"strings"

	"partsmcp/internal/model"
)

const componentColumns = `lcsc, category_id, manufacturer_id, mfr, basic, preferred, description, package, stock, price, extra`

// BuildComponentQuery turns criteria into a WHERE predicate (without the
// keyword) and its positional arguments. Each present field adds exactly one
// clause; absent fields add nothing, so empty criteria yield an empty
// predicate. LIKE patterns are passed through verbatim.
func BuildComponentQuery(c model.SearchCriteria) (string, []any) {
	where := make([]string, 0, 7)
	args := make([]any, 0, 7)

	if c.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *c.CategoryID)
	}
	if c.ManufacturerID != nil {
		where = append(where, "manufacturer_id = ?")
		args = append(args, *c.ManufacturerID)
	}
	if present(c.ManufacturerPN) {
		where = append(where, "mfr LIKE ?")
		args = append(args, *c.ManufacturerPN)
	}
	if present(c.Description) {
		where = append(where, "description LIKE ?")
		args = append(args, *c.Description)
	}
	if present(c.Package) {
		where = append(where, "package = ?")
		args = append(args, *c.Package)
	}
	if c.IsBasicParts != nil {
		where = append(where, "basic = ?")
		args = append(args, boolToInt(*c.IsBasicParts))
	}
	if c.IsPreferredParts != nil {
		where = append(where, "preferred = ?")
		args = append(args, boolToInt(*c.IsPreferredParts))
	}

	return strings.Join(where, " AND "), args
}

// componentSearchSQL returns the full statement for criteria.
func componentSearchSQL(c model.SearchCriteria) (string, []any) {
	query := `SELECT ` + componentColumns + ` FROM components`
	where, args := BuildComponentQuery(c)
	if where != "" {
		query += " WHERE " + where
	}
	return query, args
}

// present reports whether a text filter was supplied. Empty strings count
// as absent.
func present(s *string) bool {
	return s != nil && *s != ""
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
