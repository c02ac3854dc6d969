// Package flow drives the reason-act loop: it renders the system prompt,
// calls the model, parses tool invocations, dispatches them and feeds the
// observations back until a final answer or the round budget ends the run.
//
// The Dispatcher never fails a run: unknown tools, invalid arguments,
// unresolved `@key` references, tool errors and panics all become error
// observations the model can react to.
package flow
