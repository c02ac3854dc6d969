// Package core provides the foundational domain types and interfaces shared by
// every other package of the agent engine. It defines:
//
//   - Messages, tool calls and tool results (the conversation data model)
//   - Tool specifications exposed to model backends
//   - AgentResult / Task / TaskResult returned by agents and crews
//   - Small store interfaces (messages, artifacts, knowledge) with concrete
//     implementations living in their own packages
//   - ToolContext (scoped execution surface handed to tool implementations)
//   - RoundBudget and the sentinel error taxonomy
//
// The package keeps implementation concerns (persistence, model transport,
// orchestration) out of scope so that it stays dependency free apart from
// logging.
package core
