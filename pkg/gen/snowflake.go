// Package gen issues the snowflake ids stored in catalog Oid columns.
package gen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

var Module = fx.Module("gen",
	fx.Provide(ProvideSnowflakeNode),
)

type SnowflakeNode struct {
	id   int64
	node *snowflake.Node
}

// ProvideSnowflakeNode uses SNOWFLAKE_NODE_ID so replicas sharing a database never collide.
func ProvideSnowflakeNode(cfg *config.Config) (*SnowflakeNode, error) {
	node, err := NewSnowflakeNodeWithID(cfg.Snowflake.NodeID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("[Gen] Snowflake node ready", zap.Int64("node_id", node.id))
	return node, nil
}

func NewSnowflakeNodeWithID(id int64) (*SnowflakeNode, error) {
	node, err := snowflake.NewNode(id)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", id, err)
	}
	return &SnowflakeNode{id: id, node: node}, nil
}

// NewID returns a fresh id in its decimal string form.
func (s *SnowflakeNode) NewID() string {
	return s.node.Generate().String()
}
