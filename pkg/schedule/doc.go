// Package schedule matches five-field cron expressions against wall-clock
// time to find the profiles that should be activated.
//
// The supported field grammar is deliberately small: "*", integers, ranges
// ("a-b"), steps ("*/n") and comma separated lists of those. Anything else
// never matches. Matching never returns errors; [Schedule.Validate] reports
// problems at configuration time instead.
package schedule
