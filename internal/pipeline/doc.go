// Package pipeline runs one analysis end to end: snapshot the expense
// records, resolve how to invoke the analyzer, run it, classify what it wrote
// to stderr and open the generated report.
//
// Every stage fails fast. A run ends in exactly one of StateDone or
// StateFailed, and a failed run carries a *Error naming the stage and kind.
// Nothing is retried; the caller triggers a new run instead.
package pipeline
