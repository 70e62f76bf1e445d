// internal/tools/registry.go
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry manages all available tools
type Registry struct {
	tools  map[string]Tool
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewRegistry creates a new tool registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.Named("tools"),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.logger.Info("registered tool", zap.String("tool", name))
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	return tool, nil
}

// Tools returns every registered tool ordered by name
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// List returns all registered tool names and descriptions
func (r *Registry) List() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make(map[string]string, len(r.tools))
	for name, tool := range r.tools {
		list[name] = tool.Description()
	}
	return list
}

// Execute runs a tool with the given parameters under the call's timeout
func (r *Registry) Execute(ctx context.Context, toolName string, params map[string]interface{}, execCtx ExecutionContext) (*ToolResult, error) {
	tool, err := r.Get(toolName)
	if err != nil {
		return nil, err
	}

	execTimeout := execCtx.Timeout
	if execTimeout == 0 {
		execTimeout = DefaultTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	r.logger.Debug("executing tool", zap.String("tool", toolName), zap.Duration("timeout", execTimeout))

	startTime := time.Now()
	result, err := tool.Execute(timeoutCtx, params)
	duration := time.Since(startTime)

	if err != nil {
		r.logger.Warn("tool failed", zap.String("tool", toolName), zap.Duration("duration", duration), zap.Error(err))
		return &ToolResult{
			Success:  false,
			Error:    err.Error(),
			Duration: duration,
		}, err
	}

	result.Duration = duration
	r.logger.Info("tool completed", zap.String("tool", toolName),
		zap.Duration("duration", duration), zap.Bool("success", result.Success))

	return result, nil
}
