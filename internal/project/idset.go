package project

import "slices"

// IDSet is an association set of entity ids. Membership is all that matters;
// the slice form keeps JSON and YAML encodings simple.
type IDSet []string

func NewIDSet(ids ...string) IDSet {
	var out IDSet
	for _, id := range ids {
		if !out.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s IDSet) Has(id string) bool { return slices.Contains(s, id) }

// Toggle returns a new set with id removed when present, added otherwise.
func (s IDSet) Toggle(id string) IDSet {
	if i := slices.Index(s, id); i >= 0 {
		out := make(IDSet, 0, len(s)-1)
		out = append(out, s[:i]...)
		return append(out, s[i+1:]...)
	}
	out := make(IDSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

// Equal reports set equality, ignoring order.
func (s IDSet) Equal(o IDSet) bool {
	if len(s) != len(o) {
		return false
	}
	for _, id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (s IDSet) clone() IDSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
