package invocation_test

import (
	"testing"

	"github.com/aretw0/machine/internal/invocation"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	inv, err := invocation.Parse()
	require.NoError(t, err)

	assert.Equal(t, domain.Argins{}, inv.Argins)
	assert.Equal(t, domain.Metadata{}, inv.Metadata)
	assert.Nil(t, inv.Callback)
}

func TestParse_AllPositions(t *testing.T) {
	called := false
	inv, err := invocation.Parse(
		map[string]any{"a": 1},
		func(error, any) { called = true },
		map[string]any{"user": "ana"},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.Argins{"a": 1}, inv.Argins)
	assert.Equal(t, domain.Metadata{"user": "ana"}, inv.Metadata)
	require.NotNil(t, inv.Callback)
	inv.Callback(nil, nil)
	assert.True(t, called)
}

func TestParse_CallbackFirst(t *testing.T) {
	var cb domain.Callback = func(error, any) {}

	for _, args := range [][]any{{cb}, {cb, nil}, {cb, nil, nil}} {
		inv, err := invocation.Parse(args...)
		require.NoError(t, err)
		assert.Equal(t, domain.Argins{}, inv.Argins)
		assert.NotNil(t, inv.Callback)
	}
}

func TestParse_NilMapsBecomeEmpty(t *testing.T) {
	inv, err := invocation.Parse(domain.Argins(nil), nil, domain.Metadata(nil))
	require.NoError(t, err)

	assert.NotNil(t, inv.Argins)
	assert.NotNil(t, inv.Metadata)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{
			name: "too many values",
			args: []any{nil, nil, nil, nil},
			want: "at most 3 values",
		},
		{
			name: "argins not a map",
			args: []any{"hello"},
			want: "argins must be a map",
		},
		{
			name: "callback not callable",
			args: []any{nil, 42},
			want: "callback must be a func(error, any)",
		},
		{
			name: "switchback value",
			args: []any{nil, engine.Switchback{}},
			want: "use .Switch()",
		},
		{
			name: "switchback pointer",
			args: []any{nil, &engine.Switchback{}},
			want: "use .Switch()",
		},
		{
			name: "switchback map",
			args: []any{nil, map[string]func(any){"success": func(any) {}}},
			want: "use .Switch()",
		},
		{
			name: "metadata not a map",
			args: []any{nil, nil, []string{"x"}},
			want: "metadata must be a map",
		},
		{
			name: "callback followed by argins",
			args: []any{func(error, any) {}, func(error, any) {}},
			want: "argins must be a map",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invocation.Parse(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUsage)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
