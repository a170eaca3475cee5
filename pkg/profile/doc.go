// Package profile defines the named network configurations that the engine
// chooses between.
//
// The engine never applies a profile itself. It only selects a profile ID,
// which is handed to an activation entry point.
package profile
