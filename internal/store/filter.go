package store

import "github.com/albapepper/soccerscore/internal/document"

// Op is a comparison operator. Values mirror MongoDB query operators.
type Op string

const (
	OpEq Op = "$eq"
	OpGt Op = "$gt"
	OpLt Op = "$lt"
)

// Condition compares one document field against a value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. The empty filter matches everything.
type Filter []Condition

// All matches every document in a collection.
var All = Filter(nil)

// Where starts a filter with an equality condition.
func Where(field string, value any) Filter {
	return Filter{{Field: field, Op: OpEq, Value: value}}
}

// Eq adds an equality condition.
func (f Filter) Eq(field string, value any) Filter {
	return append(f[:len(f):len(f)], Condition{Field: field, Op: OpEq, Value: value})
}

// Gt adds an exclusive lower bound on a string field.
func (f Filter) Gt(field, value string) Filter {
	return append(f[:len(f):len(f)], Condition{Field: field, Op: OpGt, Value: value})
}

// Lt adds an exclusive upper bound on a string field.
func (f Filter) Lt(field, value string) Filter {
	return append(f[:len(f):len(f)], Condition{Field: field, Op: OpLt, Value: value})
}

// Match evaluates the filter against doc. Range conditions only match
// string fields and compare them byte-wise.
func (f Filter) Match(doc document.Document) bool {
	for _, c := range f {
		if !c.match(doc) {
			return false
		}
	}
	return true
}

func (c Condition) match(doc document.Document) bool {
	v, present := doc[c.Field]
	switch c.Op {
	case OpEq:
		if !present {
			return c.Value == nil
		}
		return document.Equal(v, c.Value)
	case OpGt, OpLt:
		got, ok := v.(string)
		bound, boundOK := c.Value.(string)
		if !ok || !boundOK {
			return false
		}
		if c.Op == OpGt {
			return got > bound
		}
		return got < bound
	default:
		return false
	}
}
