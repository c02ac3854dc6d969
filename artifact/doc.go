// Package artifact contains implementations of core.ArtifactStore and the
// run-bound References view that turns stored payloads into short `@key`
// tokens.
//
// The canonical ArtifactStore interface lives in the core package to avoid
// dependency cycles. InMemoryStore backs a single process run; the sqlstore
// subpackage persists artifacts when a caller explicitly asks for it.
//
// Token syntax is `@<key>` where key matches [A-Za-z0-9_.-]+. A string
// argument is treated as a reference only when the whole value is a token,
// so e-mail addresses and free text containing "@" are never rewritten.
package artifact
