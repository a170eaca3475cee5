package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOperator is returned for operators other than "and" and "or".
var ErrInvalidOperator = errors.New("invalid operator")

// Operator combines the conditions of a [RuleSet].
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// RuleSet is a combination of conditions that selects a profile.
type RuleSet struct {
	// Enabled defaults to true when unset.
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled,default=true"`
	// Operator defaults to "and".
	Operator Operator `json:"operator,omitempty" jsonschema:"title=Operator,enum=and,enum=or,default=and"`
	// Conditions are evaluated in order. An empty list never matches.
	Conditions []Condition `json:"conditions" jsonschema:"title=Conditions"`
	// Priority orders rule sets across profiles; higher values win.
	Priority int32 `json:"priority,omitempty" jsonschema:"title=Priority,default=0"`
}

// NewRuleSet creates an enabled [RuleSet] with the given operator and conditions.
func NewRuleSet(op Operator, conditions ...Condition) *RuleSet {
	enabled := true

	return &RuleSet{
		Enabled:    &enabled,
		Operator:   op,
		Conditions: conditions,
	}
}

// And creates an enabled rule set requiring all conditions.
func And(conditions ...Condition) *RuleSet {
	return NewRuleSet(OperatorAnd, conditions...)
}

// Or creates an enabled rule set requiring any condition.
func Or(conditions ...Condition) *RuleSet {
	return NewRuleSet(OperatorOr, conditions...)
}

// WithPriority sets the priority and returns rs.
func (rs *RuleSet) WithPriority(p int32) *RuleSet {
	rs.Priority = p

	return rs
}

// SetEnabled sets the enabled flag.
func (rs *RuleSet) SetEnabled(enabled bool) {
	rs.Enabled = &enabled
}

// Add appends a condition.
func (rs *RuleSet) Add(c Condition) {
	rs.Conditions = append(rs.Conditions, c)
}

// IsEnabled reports whether the rule set is enabled.
func (rs *RuleSet) IsEnabled() bool {
	return rs.Enabled == nil || *rs.Enabled
}

// IsEmpty reports whether the rule set has no conditions.
func (rs *RuleSet) IsEmpty() bool {
	return len(rs.Conditions) == 0
}

// Len returns the number of conditions.
func (rs *RuleSet) Len() int {
	return len(rs.Conditions)
}

// Eligible reports whether the rule set takes part in evaluation.
func (rs *RuleSet) Eligible() bool {
	return rs != nil && rs.IsEnabled() && !rs.IsEmpty()
}

// Op returns the effective operator.
func (rs *RuleSet) Op() Operator {
	if rs.Operator == "" {
		return OperatorAnd
	}

	return rs.Operator
}

// Validate checks the operator and every condition.
func (rs *RuleSet) Validate() error {
	switch rs.Operator {
	case "", OperatorAnd, OperatorOr:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOperator, rs.Operator)
	}

	for i, c := range rs.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
	}

	return nil
}

// Description joins the condition descriptions with the operator.
func (rs *RuleSet) Description() string {
	descs := make([]string, 0, len(rs.Conditions))
	for _, c := range rs.Conditions {
		descs = append(descs, c.Description())
	}

	return strings.Join(descs, " "+strings.ToUpper(string(rs.Op()))+" ")
}
