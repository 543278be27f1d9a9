package zenflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeMask(t *testing.T) {
	node, err := NewNode("engine-a")
	assert.NoError(t, err)

	id := node.Generate()
	assert.Equal(t, NodeNumber("engine-a"), GetNodeNumber(id.Int64()))
	assert.Equal(t, id.Node(), GetNodeNumber(id.Int64()))
}

func TestNodeNumberIsStable(t *testing.T) {
	assert.Equal(t, NodeNumber("engine-a"), NodeNumber("engine-a"))
	assert.LessOrEqual(t, NodeNumber("some-very-long-node-identifier"), nodeMax)
}
