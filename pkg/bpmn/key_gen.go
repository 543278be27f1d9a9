package bpmn

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pbinitiative/zenflow/pkg/zenflake"
)

func (engine *Engine) generateKey() int64 {
	return engine.keys.Generate().Int64()
}

// newKeyGenerator creates the snowflake node of an engine; engines sharing a store must use different node ids.
func newKeyGenerator(nodeId string) (*snowflake.Node, error) {
	return zenflake.NewNode(nodeId)
}
