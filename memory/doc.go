// Package memory contains concrete core.KnowledgeStore implementations.
// Depend on core.KnowledgeStore in your code and select an implementation at
// wiring time.
package memory
