// internal/tools/types.go
package tools

import (
	"context"
	"time"
)

// Tool defines the interface that all model-callable tools implement
type Tool interface {
	// Name returns the unique identifier the model calls the tool by
	Name() string

	// Description tells the model when the tool is useful
	Description() string

	// Parameters returns the JSON schema of the tool's arguments
	Parameters() map[string]interface{}

	// Execute runs the tool with the decoded arguments
	Execute(ctx context.Context, params map[string]interface{}) (*ToolResult, error)
}

// ToolResult contains the outcome of a tool execution
type ToolResult struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ExecutionContext carries per-call limits
type ExecutionContext struct {
	Timeout time.Duration // zero means DefaultTimeout
}

// DefaultTimeout bounds a tool call made while the user waits for an answer
const DefaultTimeout = 10 * time.Second
