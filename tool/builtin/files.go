package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// FileArgs are the read_file parameters.
type FileArgs struct {
	Filename string `json:"filename" description:"Path relative to the workspace directory"`
}

// WriteFileArgs are the write_file parameters.
type WriteFileArgs struct {
	Filename string `json:"filename" description:"Path relative to the workspace directory"`
	Content  string `json:"content" description:"File content"`
}

// NewReadFile returns a tool reading files below root.
func NewReadFile(root string) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"read_file",
		"Read a text file from the workspace directory",
		FileArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			path, err := sandboxPath(root, args["filename"])
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		},
	)
}

// NewWriteFile returns a tool writing files below root. Parent directories
// are created as needed.
func NewWriteFile(root string) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"write_file",
		"Create or replace a text file in the workspace directory",
		WriteFileArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			path, err := sandboxPath(root, args["filename"])
			if err != nil {
				return nil, err
			}
			content, _ := args["content"].(string)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, err
			}
			tc.LogInfo("tool.file.written", "path", path, "bytes", len(content))
			return fmt.Sprintf("wrote %d characters to %s", len(content), args["filename"]), nil
		},
	)
}

// sandboxPath resolves name below root and rejects escapes.
func sandboxPath(root string, name any) (string, error) {
	rel, _ := name.(string)
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("filename must not be empty")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}

	base, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(base, filepath.Clean(rel))
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes workspace: %s", rel)
	}
	return full, nil
}
