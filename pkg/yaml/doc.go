// Package yaml wraps [github.com/goccy/go-yaml] with positioned errors,
// JSON schema validation and comment-preserving edits.
package yaml
