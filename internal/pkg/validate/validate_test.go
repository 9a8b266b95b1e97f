package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Region string `validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Limit: 5, Region: "us-east-1"}))
	assert.NoError(t, Struct(&sample{Region: "us-east-1"}))
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(&sample{Limit: 500})

	assert.EqualError(t, err, "field 'limit' failed 'max=100'; field 'Region' failed 'required'")
}
