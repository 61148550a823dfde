package query

import "strings"

// andCondition joins its children with AND. An empty And matches everything.
type andCondition struct {
	children []Condition
}

// And combines conditions with AND logic. nil children are skipped.
func And(conds ...Condition) Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c == nil {
			continue
		}
		if a, ok := c.(*andCondition); ok {
			out = append(out, a.children...)
			continue
		}
		out = append(out, c)
	}
	return &andCondition{children: out}
}

// All matches every row.
func All() Condition {
	return &andCondition{}
}

// IsAll reports whether c places no constraint at all.
func IsAll(c Condition) bool {
	a, ok := c.(*andCondition)
	return c == nil || (ok && len(a.children) == 0)
}

func (c *andCondition) SQL() (string, []interface{}) {
	return join(c.children, " AND ", "TRUE")
}

func (c *andCondition) Match(r Record) bool {
	for _, ch := range c.children {
		if !ch.Match(r) {
			return false
		}
	}
	return true
}

// orCondition joins its children with OR. An empty Or matches nothing.
type orCondition struct {
	children []Condition
}

// Or combines conditions with OR logic.
func Or(conds ...Condition) Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return &orCondition{children: out}
}

// None matches no row.
func None() Condition {
	return &orCondition{}
}

func (c *orCondition) SQL() (string, []interface{}) {
	return join(c.children, " OR ", "FALSE")
}

func (c *orCondition) Match(r Record) bool {
	for _, ch := range c.children {
		if ch.Match(r) {
			return true
		}
	}
	return false
}

func join(children []Condition, sep, empty string) (string, []interface{}) {
	if len(children) == 0 {
		return empty, nil
	}
	if len(children) == 1 {
		return children[0].SQL()
	}
	parts := make([]string, 0, len(children))
	var args []interface{}
	for _, ch := range children {
		sql, a := ch.SQL()
		parts = append(parts, "("+sql+")")
		args = append(args, a...)
	}
	return strings.Join(parts, sep), args
}
