// Package pipeline runs a fixed sequence of steps over one run scope of
// artifact references. The input is stored as `@input`, every step output is
// stored under the step's key before the next step starts, and the first
// failing step aborts the run.
package pipeline
