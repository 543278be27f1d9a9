// Package zenflake derives snowflake node numbers from engine node ids so that keys
// generated by different engines sharing one store never collide.
package zenflake

import (
	"fmt"
	"hash/adler32"

	"github.com/bwmarrin/snowflake"
)

var (
	// NodeBits holds the number of bits to use for Node
	// Remember, you have a total 22 bits to share between Node/Step
	NodeBits uint8 = 10

	// StepBits holds the number of bits to use for Step
	// Remember, you have a total 22 bits to share between Node/Step
	StepBits uint8 = 12

	// internal values of bwmarrin/snowflake
	nodeMax   int64 = -1 ^ (-1 << NodeBits)
	nodeMask        = nodeMax << StepBits
	nodeShift       = StepBits
)

// NodeNumber hashes nodeId into the snowflake node range.
func NodeNumber(nodeId string) int64 {
	return int64(adler32.Checksum([]byte(nodeId))) & nodeMax
}

// NewNode creates a key generator for the engine identified by nodeId.
func NewNode(nodeId string) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(NodeNumber(nodeId))
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node for %s: %w", nodeId, err)
	}
	return node, nil
}

func GetNodeMask() int64 {
	return nodeMask
}

// GetNodeNumber returns the node number that generated id.
func GetNodeNumber(id int64) int64 {
	return (id & GetNodeMask()) >> int64(nodeShift)
}
