package builtin

import (
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// Options selects which builtin tools get registered.
type Options struct {
	// WorkDir enables read_file/write_file sandboxed below it.
	WorkDir string
	// Knowledge enables knowledge_search.
	Knowledge core.KnowledgeStore
}

// Register adds the builtin tools to reg. The calculator is always included.
func Register(reg *tool.Registry, optFns ...func(o *Options)) error {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := []tool.Tool{NewCalculator()}
	if opts.WorkDir != "" {
		tools = append(tools, NewReadFile(opts.WorkDir), NewWriteFile(opts.WorkDir))
	}
	if opts.Knowledge != nil {
		tools = append(tools, NewKnowledgeSearch(opts.Knowledge))
	}

	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
