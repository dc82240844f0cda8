package decode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsmcp/internal/model"
)

func raw(s string) model.RawJSON { return model.RawJSON{Text: s, Valid: true} }

func TestPriceField_NullLowerBound(t *testing.T) {
	got, err := PriceField(raw(`[{"qFrom":null,"qTo":100,"price":0.05}]`))
	require.NoError(t, err)
	assert.Equal(t, "~100 0.05USD/unit", got)
}

func TestPriceField_MultipleTiers(t *testing.T) {
	got, err := PriceField(raw(`[{"qFrom":1,"qTo":199,"price":0.0011},{"qFrom":200,"qTo":null,"price":0.0006}]`))
	require.NoError(t, err)
	assert.Equal(t, "1~199 0.0011USD/unit、200~ 0.0006USD/unit", got)
}

func TestPriceTiers_AbsentBoundIsUnbounded(t *testing.T) {
	tiers, err := PriceTiers(raw(`[{"qTo":10,"price":"1.5"}]`))
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.False(t, tiers[0].From.Bounded)
	assert.Equal(t, model.BoundAt("10"), tiers[0].To)
	assert.Equal(t, "1.5", tiers[0].Price)
}

func TestPriceTiers_ZeroIsNotUnbounded(t *testing.T) {
	tiers, err := PriceTiers(raw(`[{"qFrom":0,"qTo":null,"price":2}]`))
	require.NoError(t, err)
	assert.Equal(t, model.BoundAt("0"), tiers[0].From)
	assert.NotEqual(t, model.Unbounded(), tiers[0].From)
	assert.Equal(t, "0~ 2USD/unit", FormatPriceTiers(tiers))
}

func TestPriceField_Failures(t *testing.T) {
	cases := map[string]model.RawJSON{
		"null column":   {},
		"malformed":     raw(`[{"qFrom":1,`),
		"json null":     raw(`null`),
		"not an array":  raw(`{"qFrom":1}`),
		"missing price": raw(`[{"qFrom":1,"qTo":2}]`),
		"null tier":     raw(`[null]`),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := PriceField(in)
			assert.Equal(t, NoInformation, got)
			var decErr *model.DataDecodeError
			require.True(t, errors.As(err, &decErr), "want DataDecodeError, got %v", err)
			assert.Equal(t, "price", decErr.Field)
		})
	}
}

func TestPriceField_EmptyList(t *testing.T) {
	got, err := PriceField(raw(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestAttributes_KeepStoredOrder(t *testing.T) {
	attrs, err := Attributes(raw(`{"images":[],"attributes":{"Zeta":"1","Alpha":2,"Mid":true}}`))
	require.NoError(t, err)
	assert.Equal(t, []model.Attribute{
		{Key: "Zeta", Value: "1"},
		{Key: "Alpha", Value: "2"},
		{Key: "Mid", Value: "true"},
	}, attrs)
	assert.Equal(t, "Zeta:1、Alpha:2、Mid:true", FormatAttributes(attrs))
}

func TestAttributeField_Failures(t *testing.T) {
	cases := map[string]model.RawJSON{
		"null column":      {},
		"malformed":        raw(`{"attributes":`),
		"missing key":      raw(`{"images":{}}`),
		"not an object":    raw(`{"attributes":["a"]}`),
		"top level array":  raw(`[1,2]`),
		"trailing garbage": raw(`{"attributes":{"a":"b"}} x`),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := AttributeField(in)
			assert.Equal(t, NoInformation, got)
			var decErr *model.DataDecodeError
			require.True(t, errors.As(err, &decErr), "want DataDecodeError, got %v", err)
			assert.Equal(t, "attributes", decErr.Field)
		})
	}
}

func TestAttributeField_EmptyObject(t *testing.T) {
	got, err := AttributeField(raw(`{"attributes":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestImages_ObjectAndList(t *testing.T) {
	want := []model.Image{
		{Label: "96x96", URL: "https://img/a.jpg"},
		{Label: "224x224", URL: "https://img/b.jpg"},
		{Label: "900x900", URL: "https://img/c.jpg"},
	}

	got, err := Images(raw(`{"images":{"96x96":"https://img/a.jpg","224x224":"https://img/b.jpg","900x900":"https://img/c.jpg"}}`))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Images(raw(`{"attributes":{},"images":[{"96x96":"https://img/a.jpg","224x224":"https://img/b.jpg","900x900":"https://img/c.jpg"},{"96x96":"https://img/other.jpg"}]}`))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestImages_Failures(t *testing.T) {
	cases := map[string]model.RawJSON{
		"null column": {},
		"missing key": raw(`{"attributes":{}}`),
		"empty list":  raw(`{"images":[]}`),
		"bad entry":   raw(`{"images":{"96x96":12}}`),
		"bad shape":   raw(`{"images":"https://img/a.jpg"}`),
		"malformed":   raw(`{"images":{"a":"b"`),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Images(in)
			var decErr *model.DataDecodeError
			require.True(t, errors.As(err, &decErr), "want DataDecodeError, got %v", err)
			assert.Equal(t, "images", decErr.Field)
		})
	}
}
