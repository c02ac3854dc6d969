package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Logger     logging.Logger
	References *artifact.References
	RunID      string
	AgentName  string
}

// Dispatcher executes invocations against a registry. It never panics and
// never returns an error: every fault becomes an error ToolResult the model
// can read.
type Dispatcher struct {
	registry *tool.Registry
	opts     DispatcherOptions
}

// NewDispatcher creates a dispatcher. Without References every `@key` token
// fails to resolve.
func NewDispatcher(registry *tool.Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.References == nil {
		opts.References = artifact.NewReferences(nil, opts.RunID)
	}
	return &Dispatcher{registry: registry, opts: opts}
}

// DispatchAll runs invocations sequentially in order and returns one result each.
func (d *Dispatcher) DispatchAll(ctx context.Context, invs []parser.Invocation) []core.ToolResult {
	results := make([]core.ToolResult, 0, len(invs))
	for _, inv := range invs {
		results = append(results, d.Dispatch(ctx, inv))
	}
	return results
}

// Dispatch executes one invocation:
//
//  1. a parser error on the invocation is reported as is
//  2. the tool name is resolved
//  3. `@key` argument tokens are replaced by their stored payloads
//  4. arguments are validated against the compiled schema
//  5. the tool runs under recover
//
// Successful string output is passed through, everything else is JSON encoded.
func (d *Dispatcher) Dispatch(ctx context.Context, inv parser.Invocation) core.ToolResult {
	call := inv.Call
	logger := d.opts.Logger
	start := time.Now()

	logger.Debug("tool.dispatch.start", "tool", call.Name, "function_call_id", call.ID)

	result, err := d.execute(ctx, inv)

	dur := time.Since(start)
	logging.LogToolCall(logger, call.Name, dur, err == nil, err)

	if err != nil {
		logger.Warn("tool.dispatch.error", "tool", call.Name, "function_call_id", call.ID, "error", err.Error())
		return core.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Output:     "Error: " + err.Error(),
			IsError:    true,
		}
	}

	return core.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Output:     serializeOutput(result),
	}
}

func (d *Dispatcher) execute(ctx context.Context, inv parser.Invocation) (any, error) {
	call := inv.Call

	if inv.Err != nil {
		code := tool.CodeParse
		if errors.Is(inv.Err, core.ErrArgumentDecode) {
			code = tool.CodeArgumentDecode
		}
		return nil, &tool.ToolError{Tool: call.Name, Message: inv.Err.Error(), Code: code, Details: inv.Err}
	}

	impl, err := d.registry.Resolve(call.Name)
	if err != nil {
		return nil, tool.NewToolError(call.Name, err.Error(), tool.CodeNotFound)
	}

	args, err := d.opts.References.ResolveArgs(call.Arguments)
	if err != nil {
		return nil, tool.NewToolError(call.Name, err.Error(), tool.CodeReferenceNotFound)
	}

	if schema, ok := d.registry.Schema(call.Name); ok {
		if err := schema.Validate(args); err != nil {
			return nil, &tool.ToolError{Tool: call.Name, Message: err.Error(), Code: tool.CodeValidation, Details: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, tool.NewToolError(call.Name, fmt.Sprintf("cancelled before execution: %v", err), tool.CodeExecution)
	}

	toolCtx := core.NewToolContext(ctx, call.ID, func(o *core.ToolContextOptions) {
		o.RunID = d.opts.RunID
		o.AgentName = d.opts.AgentName
		o.References = d.opts.References
		o.Logger = d.opts.Logger
	})

	return d.invoke(impl, toolCtx, args)
}

// invoke calls the tool and converts panics and plain errors into *ToolError.
func (d *Dispatcher) invoke(impl tool.Tool, toolCtx *core.ToolContext, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.opts.Logger.Error("tool.dispatch.panic",
				"tool", impl.Name(),
				"function_call_id", toolCtx.FunctionCallID(),
				"recover", r,
				"stack", string(debug.Stack()),
			)
			result = nil
			err = tool.NewToolError(impl.Name(), fmt.Sprintf("panic: %v", r), tool.CodePanic)
		}
	}()

	result, err = impl.Call(toolCtx, args)
	if err == nil {
		return result, nil
	}

	var toolErr *tool.ToolError
	if errors.As(err, &toolErr) {
		return nil, toolErr
	}

	code := tool.CodeExecution
	if errors.Is(err, core.ErrReferenceNotFound) {
		code = tool.CodeReferenceNotFound
	}
	return nil, tool.NewToolError(impl.Name(), fmt.Sprintf("%T: %v", err, err), code)
}

// serializeOutput renders a tool return value as observation text.
func serializeOutput(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case json.RawMessage:
		return string(t)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
