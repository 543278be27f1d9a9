package feel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decimal string

func (d decimal) String() string {
	return string(d)
}

func TestUnaryTestComparesVariables(t *testing.T) {
	rt := NewFeelRuntime()

	approved, err := rt.UnaryTest("amount > 10", map[string]any{"amount": 12})
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = rt.UnaryTest("amount > 10", map[string]any{"amount": 5})
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestUnaryTestRejectsNonBoolean(t *testing.T) {
	rt := NewFeelRuntime()

	_, err := rt.UnaryTest(`"text"`, nil)

	assert.Error(t, err)
}

func TestNormalizeDecimals(t *testing.T) {
	assert.Equal(t, 1.5, normalize(decimal("1.5")))
	assert.Equal(t, "gold", normalize(decimal("gold")))
	assert.Equal(t, []any{2.0, true}, normalize([]any{decimal("2"), true}))
	assert.Equal(t, map[string]any{"total": 3.0}, normalize(map[string]any{"total": decimal("3")}))
}
