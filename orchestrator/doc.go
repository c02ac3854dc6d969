// Package orchestrator routes tasks to crews and exposes agents and pipeline
// steps as tools for a driving ReAct agent.
//
// In driven mode a specialist wrapped by AgentTool stores its bulky result in
// the run's artifact references and returns only the `@key` token plus a
// short summary. A failed specialist becomes an error observation for that
// one call and the driving loop continues.
package orchestrator
