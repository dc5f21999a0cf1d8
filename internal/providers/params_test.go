package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	params := map[string]interface{}{"id": "sbx_1", "empty": "", "n": 1.0}

	v, err := String(params, "id")
	require.NoError(t, err)
	assert.Equal(t, "sbx_1", v)

	_, err = String(params, "empty")
	assert.Error(t, err)
	_, err = String(params, "n")
	assert.Error(t, err)

	assert.Equal(t, "", OptionalString(params, "missing"))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int
		wantErr bool
	}{
		{"json number", 2.0, 2, false},
		{"int", 3, 3, false},
		{"int64", int64(4), 4, false},
		{"fraction", 1.5, 0, true},
		{"string", "1", 0, true},
		{"missing", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Int(map[string]interface{}{"choice": tt.value}, "choice")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionals(t *testing.T) {
	params := map[string]interface{}{"limit": 5.0, "shuffle": true}

	n, err := OptionalInt(params, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = OptionalInt(params, "absent", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	assert.True(t, OptionalBool(params, "shuffle"))
	assert.False(t, OptionalBool(params, "absent"))
}
