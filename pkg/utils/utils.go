// Package utils 提供结算周期 ID（雪花）生成与错误包装等通用工具
package utils

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator 基于雪花算法的 ID 生成器，并发安全
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator 创建 ID 生成器，nodeID 取值 0..1023
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &IDGenerator{node: node}, nil
}

// Generate 生成一个递增的 int64 ID
func (g *IDGenerator) Generate() int64 {
	return g.node.Generate().Int64()
}

// NextID 生成带前缀的字符串 ID，如 NET-1798223412345
func (g *IDGenerator) NextID(prefix string) string {
	id := strconv.FormatInt(g.Generate(), 10)
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// ErrorWrapper 错误包装器
type ErrorWrapper struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

// NewErrorWrapper 创建错误包装器
func NewErrorWrapper(code, message string, cause error) *ErrorWrapper {
	return &ErrorWrapper{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithDetails 添加错误详情
func (ew *ErrorWrapper) WithDetails(details any) *ErrorWrapper {
	ew.Details = details
	return ew
}

// Error 实现 error 接口
func (ew *ErrorWrapper) Error() string {
	if ew.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", ew.Code, ew.Message, ew.Cause)
	}
	return fmt.Sprintf("[%s] %s", ew.Code, ew.Message)
}

// Unwrap 支持 errors.Is / errors.As
func (ew *ErrorWrapper) Unwrap() error {
	return ew.Cause
}
