package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a row that conditions can be evaluated against in memory.
// Value reports false when the field is unknown to the record.
type Record interface {
	Value(field string) (interface{}, bool)
}

// Condition represents a WHERE clause condition.
// SQL renders a fragment using gorm's "?" placeholders; Match evaluates the
// same condition against a Record so both paths agree on semantics.
type Condition interface {
	SQL() (string, []interface{})
	Match(r Record) bool
}

// eqCondition implements equality comparison (field = value).
type eqCondition struct {
	field string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("products.is_live", true) generates "products.is_live = ?"
func Eq(field string, value interface{}) Condition {
	return &eqCondition{field: field, value: value}
}

func (c *eqCondition) SQL() (string, []interface{}) {
	return fmt.Sprintf("%s = ?", c.field), []interface{}{c.value}
}

func (c *eqCondition) Match(r Record) bool {
	v, ok := r.Value(c.field)
	if !ok {
		return false
	}
	cmp, ok := compare(v, c.value)
	return ok && cmp == 0
}

// cmpCondition implements ordered comparison (>, >=, <, <=).
type cmpCondition struct {
	field string
	op    string
	value interface{}
}

// Gt creates "field > value".
func Gt(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: ">", value: value}
}

// Lte creates "field <= value".
func Lte(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "<=", value: value}
}

func (c *cmpCondition) SQL() (string, []interface{}) {
	return fmt.Sprintf("%s %s ?", c.field, c.op), []interface{}{c.value}
}

func (c *cmpCondition) Match(r Record) bool {
	v, ok := r.Value(c.field)
	if !ok {
		return false
	}
	cmp, ok := compare(v, c.value)
	if !ok {
		return false
	}
	switch c.op {
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	}
	return false
}

// containsCondition implements a case-insensitive substring match.
type containsCondition struct {
	field string
	text  string
}

// Contains creates "field ILIKE %text%". LIKE wildcards in text are escaped.
func Contains(field, text string) Condition {
	return &containsCondition{field: field, text: text}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c *containsCondition) SQL() (string, []interface{}) {
	return fmt.Sprintf("%s ILIKE ?", c.field), []interface{}{"%" + likeEscaper.Replace(c.text) + "%"}
}

func (c *containsCondition) Match(r Record) bool {
	v, ok := r.Value(c.field)
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(c.text))
}

// IsNotNull creates a WHERE condition for NOT NULL checks.
// Example: IsNotNull("products.discounted_price") generates "products.discounted_price IS NOT NULL"
func IsNotNull(field string) Condition {
	return &isNotNullCondition{field: field}
}

type isNotNullCondition struct {
	field string
}

func (c *isNotNullCondition) SQL() (string, []interface{}) {
	return fmt.Sprintf("%s IS NOT NULL", c.field), nil
}

func (c *isNotNullCondition) Match(r Record) bool {
	v, ok := r.Value(c.field)
	return ok && v != nil
}

// compare returns -1, 0 or 1. ok is false when the two values are not comparable.
func compare(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if x == y {
			return 0, true
		}
		if !x {
			return -1, true
		}
		return 1, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case decimal.Decimal:
		y, ok := toDecimal(b)
		if !ok {
			return 0, false
		}
		return x.Cmp(y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}

	x, ok := toInt64(a)
	if !ok {
		return 0, false
	}
	y, ok := toInt64(b)
	if !ok {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	if i, ok := toInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}
