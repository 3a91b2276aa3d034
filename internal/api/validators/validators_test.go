package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

type sample struct {
	Name   string   `json:"name" validate:"required,max=5"`
	Status *string  `json:"status" validate:"omitempty,oneof=open closed"`
	Tags   []string `json:"tags" validate:"max=2,dive,max=3"`
}

func TestStruct(t *testing.T) {
	v := New()
	assert.Same(t, v, New())

	open := "open"
	require.NoError(t, v.Struct(sample{Name: "ok", Status: &open, Tags: []string{"a"}}))

	bad := "pending"
	cases := []struct {
		name  string
		in    sample
		field string
		msg   string
	}{
		{"required", sample{}, "name", "name is required"},
		{"too long", sample{Name: "abcdefg"}, "name", "name must be at most 5 characters"},
		{"oneof", sample{Name: "ok", Status: &bad}, "status", "status must be one of open, closed"},
		{"too many items", sample{Name: "ok", Tags: []string{"a", "b", "c"}}, "tags", "tags must contain at most 2 items"},
		{"item too long", sample{Name: "ok", Tags: []string{strings.Repeat("x", 4)}}, "tags[0]", "tags[0] must be at most 3 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.in)
			ae, ok := appErr.As(err)
			require.True(t, ok)
			assert.Equal(t, appErr.CodeInvalid, ae.Code)
			assert.Equal(t, tc.field, ae.Field)
			assert.Equal(t, tc.msg, ae.Message)
		})
	}
}
