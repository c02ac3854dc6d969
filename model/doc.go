// Package model defines the provider-agnostic contract between the agent loop
// and a language model backend.
//
// A backend receives the full conversation (core.Message) plus the declared
// tool specs and answers on a response channel; failures arrive on a separate
// error channel. Collect drains both and is the single suspension point the
// loop uses.
//
// Implementations:
//   - ScriptedModel: deterministic replay for tests and the CLI mock provider
//   - openai: OpenAI Chat Completions and compatible endpoints (vLLM, ModelScope)
//   - anthropic: Anthropic Messages API
package model
