// Package pipeline runs a bundle build as a sequence of steps.
//
// A build crawls the root document, assembles the single-page output,
// writes it to the destination, reports what happened and records the
// build in the history database. Each stage is a Step that receives the
// Build and adds its results to it.
//
// Design decision: We keep the stages as separate steps rather than one
// function because:
//  1. Reporting and history are optional and are simply left out
//  2. Every step is logged and checked for cancellation the same way
//  3. Tests can run a partial pipeline against an in-memory source
//
// Several independent documents can be built at once with BatchProcessor.
// Each build still crawls on a single goroutine.
package pipeline
