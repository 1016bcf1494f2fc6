// Package pipeline runs a read as a sequence of steps.
//
// A read goes through four steps, strictly in order:
//
//	fetch -> sniff -> decode -> recognize
//
// Each step receives the shared model.ReadReport, fills in what it learned,
// and returns an *outcome.Error on failure. The first failure ends the run;
// later steps never execute. Processor wraps one run in the per-read
// deadline and turns the final report into an outcome.Outcome.
//
// BatchProcessor reads several URLs concurrently using errgroup, each URL
// in its own isolated run.
package pipeline
