// Package evaluator decides which profile's rule set matches the current
// network environment.
//
// An [Evaluator] keeps state between passes: compiled SSID patterns, the
// latest network snapshot and the last profile it selected. It is not safe
// for concurrent use; hand it to one goroutine at a time.
package evaluator
