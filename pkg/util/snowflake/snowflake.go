// Package snowflake 封装雪花算法 ID 生成
// 消息 ID 在进程内单调递增且不会因同一毫秒内多次发送而冲突
package snowflake

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator 雪花 ID 生成器，并发安全
type Generator struct {
	node *snowflake.Node
}

// NewGenerator 创建生成器
// machineID 范围 0-1023，越界返回错误
func NewGenerator(machineID int64) (*Generator, error) {
	if machineID < 0 || machineID > 1023 {
		return nil, fmt.Errorf("snowflake machine id %d out of range [0,1023]", machineID)
	}
	node, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

// NextID 生成雪花 ID (int64)
func (g *Generator) NextID() int64 {
	return g.node.Generate().Int64()
}
