package query

import (
	"math"
	"strings"
)

// Kind identifies one of the supported aggregate functions.
type Kind int

const (
	KindMin Kind = iota
	KindMax
	KindSum
	KindAvg
	KindCount
)

var kindNames = map[string]Kind{
	"MIN":   KindMin,
	"MAX":   KindMax,
	"SUM":   KindSum,
	"AVG":   KindAvg,
	"COUNT": KindCount,
}

// ParseKind maps a function name (any case) to its Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindNames[strings.ToUpper(name)]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case KindMin:
		return "MIN"
	case KindMax:
		return "MAX"
	case KindSum:
		return "SUM"
	case KindAvg:
		return "AVG"
	case KindCount:
		return "COUNT"
	}
	return "UNKNOWN"
}

// Accumulator folds a stream of values into one statistic.
// The zero value is not usable; create one with NewAccumulator.
type Accumulator struct {
	kind  Kind
	value float64 // running extreme (min/max) or total (sum/avg)
	count int64   // applied values (avg/count)
	init  bool    // min/max have seen a value
}

// NewAccumulator returns an empty accumulator of the given kind.
func NewAccumulator(kind Kind) *Accumulator {
	return &Accumulator{kind: kind}
}

// Apply folds v into the accumulator. COUNT ignores v.
//
// MIN and MAX never let NaN win a comparison: the first value always
// initialises the state, and a NaN state is replaced by the next value.
func (a *Accumulator) Apply(v float64) {
	switch a.kind {
	case KindMin:
		if !a.init || math.IsNaN(a.value) || v < a.value {
			a.value = v
			a.init = true
		}
	case KindMax:
		if !a.init || math.IsNaN(a.value) || v > a.value {
			a.value = v
			a.init = true
		}
	case KindSum:
		a.value += v
	case KindAvg:
		a.value += v
		a.count++
	case KindCount:
		a.count++
	}
}

// Result returns the current statistic. MIN, MAX and AVG are NaN until a
// value has been applied; SUM and COUNT start at 0.
func (a *Accumulator) Result() float64 {
	switch a.kind {
	case KindMin, KindMax:
		if !a.init {
			return math.NaN()
		}
		return a.value
	case KindSum:
		return a.value
	case KindAvg:
		if a.count == 0 {
			return math.NaN()
		}
		return a.value / float64(a.count)
	case KindCount:
		return float64(a.count)
	}
	return math.NaN()
}

// Registry holds the accumulators of one query, keyed by the full aggregate
// label such as "SUM(amount)". Identical labels share an accumulator.
type Registry struct {
	accs  map[string]*Accumulator
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{accs: make(map[string]*Accumulator)}
}

// Add registers label with the given kind and returns its accumulator.
// Registering an existing label returns the accumulator already present.
func (r *Registry) Add(label string, kind Kind) *Accumulator {
	if acc, ok := r.accs[label]; ok {
		return acc
	}
	acc := NewAccumulator(kind)
	r.accs[label] = acc
	r.order = append(r.order, label)
	return acc
}

// Apply feeds v to the accumulator registered under label.
// It reports false when no such label exists.
func (r *Registry) Apply(label string, v float64) bool {
	acc, ok := r.accs[label]
	if !ok {
		return false
	}
	acc.Apply(v)
	return true
}

// Get returns the accumulator for label.
func (r *Registry) Get(label string) (*Accumulator, bool) {
	acc, ok := r.accs[label]
	return acc, ok
}

// Labels returns the registered labels in registration order.
func (r *Registry) Labels() []string {
	return r.order
}

// Results returns the result of each requested label. Labels that were never
// registered map to NaN.
func (r *Registry) Results(labels []string) map[string]float64 {
	out := make(map[string]float64, len(labels))
	for _, label := range labels {
		if acc, ok := r.accs[label]; ok {
			out[label] = acc.Result()
		} else {
			out[label] = math.NaN()
		}
	}
	return out
}
