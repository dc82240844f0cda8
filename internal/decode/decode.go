// Package decode parses the JSON sub-documents stored per component row.
//
// Every decoder works on one field and fails alone: a malformed price list
// never affects the attribute column of the same row, and neither affects
// sibling rows. Callers use the *Field helpers to get a display string that
// falls back to NoInformation.
package decode

import (
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"partsmcp/internal/model"
)

const (
	// NoInformation replaces a field whose stored JSON cannot be used.
	NoInformation = "no information"
	// Separator joins price tiers and attributes in one table cell.
	Separator = "、"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errNull      = errors.New("column is NULL")
	errMalformed = errors.New("malformed JSON")
)

// PriceTiers decodes the price column: an array of {qFrom, qTo, price}.
// A null or absent bound becomes unbounded; a missing price is an error.
func PriceTiers(raw model.RawJSON) ([]model.PriceTier, error) {
	if !raw.Valid {
		return nil, &model.DataDecodeError{Field: "price", Err: errNull}
	}

	if strings.TrimSpace(raw.Text) == "null" {
		return nil, &model.DataDecodeError{Field: "price", Err: errors.New("price list is null")}
	}
	var items []map[string]any
	if err := json.UnmarshalFromString(raw.Text, &items); err != nil {
		return nil, &model.DataDecodeError{Field: "price", Err: err}
	}

	tiers := make([]model.PriceTier, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &model.DataDecodeError{Field: "price", Err: fmt.Errorf("tier %d is null", i)}
		}
		rawPrice, ok := item["price"]
		if !ok || rawPrice == nil {
			return nil, &model.DataDecodeError{Field: "price", Err: fmt.Errorf("tier %d has no price", i)}
		}
		price, err := scalarText(rawPrice)
		if err != nil {
			return nil, &model.DataDecodeError{Field: "price", Err: fmt.Errorf("tier %d price: %w", i, err)}
		}
		from, err := bound(item["qFrom"])
		if err != nil {
			return nil, &model.DataDecodeError{Field: "price", Err: fmt.Errorf("tier %d qFrom: %w", i, err)}
		}
		to, err := bound(item["qTo"])
		if err != nil {
			return nil, &model.DataDecodeError{Field: "price", Err: fmt.Errorf("tier %d qTo: %w", i, err)}
		}
		tiers = append(tiers, model.PriceTier{From: from, To: to, Price: price})
	}
	return tiers, nil
}

func bound(v any) (model.Bound, error) {
	if v == nil {
		return model.Unbounded(), nil
	}
	text, err := scalarText(v)
	if err != nil {
		return model.Bound{}, err
	}
	return model.BoundAt(text), nil
}

// FormatPriceTiers renders tiers as "{from}~{to} {price}USD/unit" joined by
// Separator. Unbounded limits render as the empty string.
func FormatPriceTiers(tiers []model.PriceTier) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		parts = append(parts, fmt.Sprintf("%s~%s %sUSD/unit", boundText(t.From), boundText(t.To), t.Price))
	}
	return strings.Join(parts, Separator)
}

func boundText(b model.Bound) string {
	if !b.Bounded {
		return ""
	}
	return b.Qty
}

// Attributes decodes extra.attributes in stored order.
func Attributes(raw model.RawJSON) ([]model.Attribute, error) {
	var attrs []model.Attribute
	found, err := extraKey(raw, "attributes", func(it *jsoniter.Iterator) error {
		attrs = make([]model.Attribute, 0, 8)
		return readObject(it, func(key string) error {
			text, err := scalarText(it.Read())
			if err != nil {
				return fmt.Errorf("attribute %q: %w", key, err)
			}
			attrs = append(attrs, model.Attribute{Key: key, Value: text})
			return nil
		})
	})
	if err != nil {
		return nil, &model.DataDecodeError{Field: "attributes", Err: err}
	}
	if !found {
		return nil, &model.DataDecodeError{Field: "attributes", Err: errors.New("key not present")}
	}
	return attrs, nil
}

// FormatAttributes renders attributes as "key:value" joined by Separator.
func FormatAttributes(attrs []model.Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Key+":"+a.Value)
	}
	return strings.Join(parts, Separator)
}

// Images decodes extra.images in stored order. The value is either a
// label->URL object or a list of such objects, in which case the first one
// is used.
func Images(raw model.RawJSON) ([]model.Image, error) {
	var images []model.Image
	found, err := extraKey(raw, "images", func(it *jsoniter.Iterator) error {
		switch it.WhatIsNext() {
		case jsoniter.ObjectValue:
			return readImageSet(it, &images)
		case jsoniter.ArrayValue:
			first := true
			var setErr error
			it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				if !first {
					it.Skip()
					return true
				}
				first = false
				if it.WhatIsNext() != jsoniter.ObjectValue {
					setErr = errors.New("images[0] is not an object")
					return false
				}
				if err := readImageSet(it, &images); err != nil {
					setErr = err
					return false
				}
				return true
			})
			if setErr != nil {
				return setErr
			}
			if first {
				return errors.New("images list is empty")
			}
			return iterError(it)
		default:
			return errors.New("images is neither an object nor a list")
		}
	})
	if err != nil {
		return nil, &model.DataDecodeError{Field: "images", Err: err}
	}
	if !found {
		return nil, &model.DataDecodeError{Field: "images", Err: errors.New("key not present")}
	}
	return images, nil
}

func readImageSet(it *jsoniter.Iterator, out *[]model.Image) error {
	set := make([]model.Image, 0, 4)
	err := readObject(it, func(label string) error {
		if it.WhatIsNext() != jsoniter.StringValue {
			return fmt.Errorf("image %q is not a URL string", label)
		}
		set = append(set, model.Image{Label: label, URL: it.ReadString()})
		return nil
	})
	if err != nil {
		return err
	}
	*out = set
	return nil
}

// PriceField returns the display string for the price column, or
// NoInformation together with the decode error.
func PriceField(raw model.RawJSON) (string, error) {
	tiers, err := PriceTiers(raw)
	if err != nil {
		return NoInformation, err
	}
	return FormatPriceTiers(tiers), nil
}

// AttributeField returns the display string for extra.attributes, or
// NoInformation together with the decode error.
func AttributeField(raw model.RawJSON) (string, error) {
	attrs, err := Attributes(raw)
	if err != nil {
		return NoInformation, err
	}
	return FormatAttributes(attrs), nil
}

// extraKey positions an iterator on key inside the extra object and calls
// fn there. The rest of the document is still consumed so trailing damage
// is reported.
func extraKey(raw model.RawJSON, key string, fn func(it *jsoniter.Iterator) error) (bool, error) {
	if !raw.Valid {
		return false, errNull
	}
	// Full decode first: the iterator below stops at the end of the object
	// and would not notice trailing bytes.
	var whole any
	if err := json.UnmarshalFromString(raw.Text, &whole); err != nil {
		return false, fmt.Errorf("%w: %v", errMalformed, err)
	}

	it := jsoniter.ParseString(json, raw.Text)
	found := false
	err := readObject(it, func(k string) error {
		if k != key || found {
			it.Skip()
			return nil
		}
		found = true
		return fn(it)
	})
	return found, err
}

// readObject walks the object at the iterator position in stored order.
func readObject(it *jsoniter.Iterator, fn func(key string) error) error {
	if next := it.WhatIsNext(); next != jsoniter.ObjectValue {
		return fmt.Errorf("expected object, got %s", kindName(next))
	}
	var cbErr error
	it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		if err := fn(key); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	if cbErr != nil {
		return cbErr
	}
	return iterError(it)
}

func iterError(it *jsoniter.Iterator) error {
	if it.Error != nil && !errors.Is(it.Error, io.EOF) {
		return it.Error
	}
	return nil
}

// scalarText renders a decoded JSON value for display. Nested values are
// kept as compact JSON.
func scalarText(v any) (string, error) {
	switch v.(type) {
	case map[string]any, []any:
		return json.MarshalToString(v)
	}
	return cast.ToStringE(v)
}

func kindName(t jsoniter.ValueType) string {
	switch t {
	case jsoniter.StringValue:
		return "string"
	case jsoniter.NumberValue:
		return "number"
	case jsoniter.NilValue:
		return "null"
	case jsoniter.BoolValue:
		return "bool"
	case jsoniter.ArrayValue:
		return "array"
	case jsoniter.ObjectValue:
		return "object"
	default:
		return "invalid"
	}
}
