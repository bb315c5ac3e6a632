package model

// CompareOp is a price comparison operator in a structured filter.
type CompareOp string

const (
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpEqual        CompareOp = "="
	OpGreaterEqual CompareOp = ">="
	OpGreater      CompareOp = ">"
)

// Valid reports whether the operator is one of the supported five.
func (op CompareOp) Valid() bool {
	switch op {
	case OpLess, OpLessEqual, OpEqual, OpGreaterEqual, OpGreater:
		return true
	}
	return false
}

// Matches applies the operator to a listing price and a filter value.
func (op CompareOp) Matches(price, value int) bool {
	switch op {
	case OpLess:
		return price < value
	case OpLessEqual:
		return price <= value
	case OpGreaterEqual:
		return price >= value
	case OpGreater:
		return price > value
	default:
		return price == value
	}
}

// PriceComparator is a single-bound price constraint, e.g. "<2500000".
type PriceComparator struct {
	Op    CompareOp
	Value int
}

// PriceRange is an inclusive price interval. Min is never greater than Max;
// the parser swaps the bounds if the query had them reversed.
type PriceRange struct {
	Min int
	Max int
}

// StructuredFilter is the parsed form of a user query. It lives for a single
// search and is never persisted. Later query tokens overwrite earlier ones of
// the same kind, so each field holds at most one value.
type StructuredFilter struct {
	Year     *int
	PriceCmp *PriceComparator
	Range    *PriceRange
	Terms    []string // lowercase free-text terms, ANDed together
}

// Empty reports whether the filter constrains nothing, in which case a
// search returns the newest active listings.
func (f StructuredFilter) Empty() bool {
	return f.Year == nil && f.PriceCmp == nil && f.Range == nil && len(f.Terms) == 0
}
