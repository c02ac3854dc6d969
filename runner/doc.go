// Package runner executes a ReAct agent with one artifact scope per run.
//
// Every run gets a fresh run ID and a References view over a private store,
// optionally seeded with inputs. The artifacts are copied to the Persist
// store when one is configured and are otherwise dropped with the Outcome.
// Active runs can be cancelled by ID and the number of concurrent runs is
// bounded.
package runner
