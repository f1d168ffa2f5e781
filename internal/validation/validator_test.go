package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Mode  string `json:"mode" validate:"omitempty,oneof=content collaborative"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
	Pages *int   `json:"min_pages,omitempty" validate:"omitempty,gte=0"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Mode: "content", Limit: 10}))
	assert.NoError(t, Struct(&sample{}))
}

func TestStructCollectsFieldErrors(t *testing.T) {
	neg := -1
	err := Struct(&sample{Mode: "popular", Limit: 99, Pages: &neg})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)

	assert.Equal(t, "mode", verr.Fields[0].Field)
	assert.Equal(t, "oneof", verr.Fields[0].Tag)
	assert.Equal(t, "limit must be at most 50", verr.Fields[1].Message)
	assert.Equal(t, "min_pages", verr.Fields[2].Field)
}
