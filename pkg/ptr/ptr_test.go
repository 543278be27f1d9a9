package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, 3, Deref(To(3), 7))
	assert.Equal(t, 7, Deref[int](nil, 7))
}

func TestNonZero(t *testing.T) {
	assert.Nil(t, NonZero(""))
	assert.Nil(t, NonZero(int64(0)))
	assert.Equal(t, "k", *NonZero("k"))
}
