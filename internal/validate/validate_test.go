package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/saude-connect/internal/apperr"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Turn  string `json:"turn" validate:"required,oneof=morning afternoon"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Count int    `json:"count" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"valid", sample{Name: "a", Turn: "morning", Count: 1}, ""},
		{"missing name", sample{Turn: "morning", Count: 1}, "name is required"},
		{"bad turn", sample{Name: "a", Turn: "night", Count: 1}, "turn must be one of: morning, afternoon"},
		{"bad date", sample{Name: "a", Turn: "morning", Date: "06/06/2025", Count: 1}, "date must be formatted as 2006-01-02"},
		{"zero count", sample{Name: "a", Turn: "morning"}, "count must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}
