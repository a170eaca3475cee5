// Package rules defines the conditions and rule sets that decide when a
// profile should be activated automatically.
//
// A [Condition] is a closed set of kinds identified by [ConditionType]. Rule
// sets combine conditions with a single [Operator] and carry a priority used
// to order profiles during evaluation.
package rules
