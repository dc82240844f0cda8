package mcp

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	jsoniter "github.com/json-iterator/go"

	"partsmcp/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type noArgs struct{}

type categoryArgs struct {
	CategoryID int64 `json:"category_id" jsonschema:"category id, obtained with list_categories"`
}

type manufacturerArgs struct {
	ManufacturerID int64 `json:"manufacturer_id" jsonschema:"manufacturer id, obtained with search_manufacturer or list_manufacturers"`
}

type manufacturerNameArgs struct {
	Name string `json:"name" jsonschema:"part of the manufacturer name"`
}

type subcategoryNameArgs struct {
	Name string `json:"name" jsonschema:"part of the subcategory name, in English"`
}

type partArgs struct {
	PartID int64 `json:"part_id" jsonschema:"LCSC part number, digits only (25804 for C25804)"`
}

var (
	errMissing = errors.New("is required")
	errUnknown = errors.New("unknown argument")

	errNotRepresentable = errors.New("value out of range")
)

// inputSchema is the published JSON Schema of one tool plus a resolved
// validator per property, so a failure can name the argument at fault.
type inputSchema struct {
	raw        map[string]any
	required   []string
	properties map[string]*jsonschema.Resolved
}

// maxID is the largest id accepted. Larger JSON numbers lose precision as
// float64 before they reach the int64 fields.
const maxID = 1<<53 - 1

// newInputSchema reflects T into a schema. Properties named in positive get
// minimum 1 and maximum maxID. Unknown properties are not allowed.
func newInputSchema[T any](positive ...string) (*inputSchema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	delete(raw, "$schema")
	delete(raw, "$id")
	raw["type"] = "object"
	raw["additionalProperties"] = false

	props, _ := raw["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
		raw["properties"] = props
	}
	for _, name := range positive {
		prop, ok := props[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema has no property %q", name)
		}
		prop["minimum"] = 1
		prop["maximum"] = maxID
	}

	out := &inputSchema{raw: raw, properties: make(map[string]*jsonschema.Resolved, len(props))}
	for name, p := range props {
		resolved, err := compileRawSchema(p)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		out.properties[name] = resolved
	}
	if req, ok := raw["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				out.required = append(out.required, s)
			}
		}
	}
	sort.Strings(out.required)
	return out, nil
}

func compileRawSchema(v any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}

// RawSchema is the JSON document published in tools/list.
func (s *inputSchema) RawSchema() ([]byte, error) {
	return json.Marshal(s.raw)
}

// validate checks args field by field. A JSON null counts as absent.
func (s *inputSchema) validate(args map[string]any) error {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := s.properties[k]; !ok {
			return &model.ValidationError{Field: k, Err: errUnknown}
		}
	}
	for _, k := range s.required {
		if v, ok := args[k]; !ok || v == nil {
			return &model.ValidationError{Field: k, Err: errMissing}
		}
	}
	for _, k := range keys {
		v := args[k]
		if v == nil {
			continue
		}
		if err := s.properties[k].Validate(v); err != nil {
			return &model.ValidationError{Field: k, Err: err}
		}
	}
	return nil
}

// bindArgs validates args and decodes them into T.
func bindArgs[T any](s *inputSchema, args map[string]any) (T, error) {
	var out T
	if err := s.validate(args); err != nil {
		return out, err
	}
	keys := make([]string, 0, len(args))
	for k, v := range args {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// One key at a time so a decode failure names its argument.
	for _, k := range keys {
		data, err := json.Marshal(map[string]any{k: args[k]})
		if err != nil {
			return out, &model.ValidationError{Field: k, Err: err}
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return out, &model.ValidationError{Field: k, Err: errNotRepresentable}
		}
	}
	return out, nil
}
