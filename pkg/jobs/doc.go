// Package jobs classifies raw scheduler job records into named summary
// buckets.
//
// The job source reports loosely typed argument values. This package
// normalizes them into a small sealed union (Scalar, ModuleSet, Mapping)
// at the boundary so the classification rule can match exhaustively on
// concrete types instead of duck-typing each record.
package jobs
