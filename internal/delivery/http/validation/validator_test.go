package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty" validate:"gte=0"`
}

func TestStructValidator_ReportsJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Limit: -1})
	require.Error(t, err)

	d := Details(err)
	assert.Equal(t, "required", d["query"])
	assert.Equal(t, "gte", d["limit"])
}

func TestStructValidator_Valid(t *testing.T) {
	assert.NoError(t, New().Validate(&sample{Query: "go"}))
}

func TestDetails_ForeignError(t *testing.T) {
	assert.Nil(t, Details(errors.New("boom")))
}
