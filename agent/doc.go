// Package agent contains the agents built on top of the flow and model
// packages:
//
//  1. ReActAgent wraps a bounded reason-act loop with identity and an
//     instruction.
//  2. Specialist runs a Think-Execute-Reflect cycle for a domain Expert,
//     retrying malformed output before giving up.
//
// Both embed BaseAgent for identity and cancellation of in-flight runs.
package agent
