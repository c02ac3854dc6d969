package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/core"
	internalutil "github.com/Chan-Developer/ReAct-agent/internal/util"
	"github.com/Chan-Developer/ReAct-agent/parser"
)

// DefaultInstruction is used when a loop is built without an instruction.
const DefaultInstruction = "You are a helpful assistant that solves tasks step by step, using the available tools when they help."

const taggedFormat = `## Response format

Use the following format:

Thought: reason about what to do next
Action: tool_name(arg1, key=value)
Observation: the tool result (provided to you, never write it yourself)

Repeat Thought/Action/Observation as needed. Use exactly one Action per reply.
Arguments may also be given as a JSON object: Action: tool_name({"key": "value"}).
When you know the answer reply with:

Thought: I now know the final answer
Final Answer: the answer to the task`

const structuredFormat = `## Response format

Call tools through function calling when they help. When you are done, reply
with plain text starting with "Final Answer:".`

const artifactHint = `## Artifacts

Large values are stored as artifacts. Pass ` + "`@key`" + ` as an argument value
to use one; it is replaced by the stored content before the tool runs.`

// PromptData is the input of BuildSystemPrompt.
type PromptData struct {
	Instruction string
	Mode        parser.Mode
	Tools       []core.ToolSpec
	Artifacts   []string
	// Vars are exposed to the instruction template.
	Vars map[string]any
}

// BuildSystemPrompt renders the instruction template with Vars and appends
// the tool catalogue and the response format for the strategy.
func BuildSystemPrompt(data PromptData) (string, error) {
	instruction := data.Instruction
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	rendered, err := internalutil.RenderTemplate(instruction, data.Vars)
	if err != nil {
		return "", fmt.Errorf("failed to render instruction: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(rendered))

	if len(data.Tools) > 0 {
		b.WriteString("\n\n## Tools\n\n")
		for _, spec := range data.Tools {
			b.WriteString(describeTool(spec, data.Mode))
		}
	}

	if len(data.Artifacts) > 0 {
		b.WriteString("\n")
		b.WriteString(artifactHint)
		b.WriteString("\nAvailable: ")
		tokens := make([]string, len(data.Artifacts))
		for i, k := range data.Artifacts {
			tokens[i] = "@" + k
		}
		b.WriteString(strings.Join(tokens, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if data.Mode == parser.ModeTagged {
		b.WriteString(taggedFormat)
	} else {
		b.WriteString(structuredFormat)
	}

	return b.String(), nil
}

func describeTool(spec core.ToolSpec, mode parser.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Description)

	if mode != parser.ModeTagged {
		return b.String()
	}

	// Tagged backends receive no declarations, so the schema goes inline.
	params := spec.Parameters
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if raw, err := json.Marshal(params); err == nil {
		fmt.Fprintf(&b, "  parameters: %s\n", raw)
	}
	return b.String()
}

// RenderHistory returns the messages sent to the backend. In tagged mode
// assistant tool calls are dropped and tool results become user messages,
// for backends without native tool-calling support.
func RenderHistory(msgs []core.Message, mode parser.Mode) []core.Message {
	if mode != parser.ModeTagged {
		return msgs
	}

	out := make([]core.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case core.RoleTool:
			out = append(out, core.NewUserMessage(fmt.Sprintf("Observation [%s]: %s", m.Name, m.Content)))
		case core.RoleAssistant:
			out = append(out, core.NewAssistantMessage(m.Content))
		default:
			out = append(out, m)
		}
	}
	return out
}

func correctiveParse(err error) string {
	return fmt.Sprintf("Observation: your last reply could not be parsed (%v). "+
		"Reply with one line `Action: tool_name(arguments)` or `Final Answer: <answer>`.", err)
}

const correctiveNoAction = "Observation: no Action or Final Answer found in your last reply. " +
	"Use `Action: tool_name(arguments)` to call a tool, or `Final Answer: <answer>` when you are done."
