package mcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsmcp/internal/model"
)

func TestBindArgs_DecodeFailureNamesField(t *testing.T) {
	// No bounds published, so 1e20 passes the integer check and fails
	// only when decoded into int64.
	schema, err := newInputSchema[categoryArgs]()
	require.NoError(t, err)

	_, err = bindArgs[categoryArgs](schema, map[string]any{"category_id": 1e20})
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, "category_id", vErr.Field)
	assert.ErrorIs(t, err, errNotRepresentable)
}

func TestBindArgs_DecodesPresentFields(t *testing.T) {
	schema, err := newInputSchema[model.SearchCriteria]("category_id", "manufacturer_id")
	require.NoError(t, err)

	got, err := bindArgs[model.SearchCriteria](schema, map[string]any{
		"category_id":    float64(maxID),
		"package":        "0402",
		"is_basic_parts": false,
		"description":    nil,
	})
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.EqualValues(t, maxID, *got.CategoryID)
	require.NotNil(t, got.Package)
	assert.Equal(t, "0402", *got.Package)
	require.NotNil(t, got.IsBasicParts)
	assert.False(t, *got.IsBasicParts)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.ManufacturerID)
}

func TestBindArgs_AboveMaximumRejected(t *testing.T) {
	schema, err := newInputSchema[partArgs]("part_id")
	require.NoError(t, err)

	_, err = bindArgs[partArgs](schema, map[string]any{"part_id": float64(maxID) * 4})
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, "part_id", vErr.Field)
}
