// Package model defines the data structures shared by the pipeline, the
// history store and the report writers.
//
// This package contains the following main types:
//   - ReadReport: the working record of one read, filled in by pipeline steps
//   - ReadRecord: a stored read as listed from the history database
//   - Summary: outcome counts over a set of reads
//
// Models are serializable to JSON for report output and database storage.
package model
