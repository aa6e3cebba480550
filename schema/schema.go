// Package schema infers a structural type description from sampled
// Values, per spec.md §4.E, and renders it as text. Inference walks a
// bounded number of samples concurrently via golang.org/x/sync/errgroup
// (the same bounded-worker-pool shape the rest of the pack uses for I/O
// fan-out), then merges results in index order so the outcome is
// independent of goroutine scheduling.
package schema

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/go-pathql/pathql/value"
)

// Kind discriminates a Schema node.
type Kind int8

const (
	KPrim Kind = iota
	KArray
	KObject
	KUnion
	KAny
)

// Schema is the structural description of a sampled value, spec.md §4.E.
type Schema struct {
	Kind Kind

	// KPrim
	Prim value.Kind

	// Constant holds a scalar's single observed value when every sample
	// agreed on it, for the "constant scalar value" render annotation in
	// spec.md §6. Nil unless Kind == KPrim and the field is constant.
	Constant *value.Value

	// KArray
	Elem    *Schema
	MinLen  int
	MaxLen  int
	SawArray bool

	// KObject: Fields is keyed by field name; Required lists which field
	// names appeared in every sampled object, spec.md §4.E's
	// "requiredness: present in every sample."
	Fields   map[string]*Schema
	Required map[string]bool
	// FieldOrder preserves first-seen field order across samples so
	// rendering is deterministic and reads naturally.
	FieldOrder []string

	// KUnion: alternative schemas, deduplicated by shape. A Null
	// alternative renders specially (spec.md §6: "T | null").
	Alts []*Schema
}

// Infer samples up to maxSamples elements from root (root itself if it is
// not an array, or its first maxSamples elements if it is, matching
// spec.md §4.E's "sample N elements of the target array, or the value
// itself if scalar/object") and merges their inferred shapes.
//
// Sampling fans out across a worker pool bounded to eight goroutines via
// errgroup.Group.SetLimit, but merge order always walks samples by index
// (0..k-1) regardless of completion order, so Infer is deterministic.
func Infer(ctx context.Context, root *value.Value, maxSamples int) (*Schema, error) {
	samples := selectSamples(root, maxSamples)
	if len(samples) == 0 {
		return &Schema{Kind: KAny}, nil
	}

	results := make([]*Schema, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = inferOne(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := results[0]
	for _, r := range results[1:] {
		merged = Merge(merged, r)
	}
	return merged, nil
}

// selectSamples implements spec.md §4.E's deterministic first-N sampling:
// no shuffling, no reservoir sampling, just a prefix.
func selectSamples(root *value.Value, maxSamples int) []*value.Value {
	if root.Kind() != value.Array {
		return []*value.Value{root}
	}
	n := root.Len()
	if maxSamples > 0 && maxSamples < n {
		n = maxSamples
	}
	out := make([]*value.Value, n)
	copy(out, root.Elements()[:n])
	return out
}

func inferOne(v *value.Value) *Schema {
	switch v.Kind() {
	case value.Array:
		s := &Schema{Kind: KArray, MinLen: v.Len(), MaxLen: v.Len(), SawArray: true}
		for _, elem := range v.Elements() {
			es := inferOne(elem)
			if s.Elem == nil {
				s.Elem = es
			} else {
				s.Elem = Merge(s.Elem, es)
			}
		}
		if s.Elem == nil {
			s.Elem = &Schema{Kind: KAny}
		}
		return s
	case value.Object:
		s := &Schema{Kind: KObject, Fields: map[string]*Schema{}, Required: map[string]bool{}}
		for _, m := range v.Members() {
			s.Fields[m.Key] = inferOne(m.Val)
			s.Required[m.Key] = true
			s.FieldOrder = append(s.FieldOrder, m.Key)
		}
		return s
	default:
		cv := v
		return &Schema{Kind: KPrim, Prim: v.Kind(), Constant: cv}
	}
}

// Merge combines two schemas per spec.md §4.E's merge rules: identical
// shapes collapse, differing prims become a Union, objects union their
// keys with requiredness as the AND across inputs, arrays merge
// elementwise, and a Union absorbs new alternatives without nesting
// Unions inside Unions.
func Merge(a, b *Schema) *Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind == KAny {
		return b
	}
	if b.Kind == KAny {
		return a
	}
	if a.Kind == KUnion || b.Kind == KUnion {
		return mergeUnion(a, b)
	}
	if a.Kind != b.Kind {
		return mergeUnion(a, b)
	}
	switch a.Kind {
	case KPrim:
		if a.Prim != b.Prim {
			return mergeUnion(a, b)
		}
		if a.Constant != nil && b.Constant != nil && value.Equal(a.Constant, b.Constant) {
			return &Schema{Kind: KPrim, Prim: a.Prim, Constant: a.Constant}
		}
		return &Schema{Kind: KPrim, Prim: a.Prim}
	case KArray:
		lo := min(a.MinLen, b.MinLen)
		hi := max(a.MaxLen, b.MaxLen)
		return &Schema{Kind: KArray, Elem: Merge(a.Elem, b.Elem), MinLen: lo, MaxLen: hi, SawArray: true}
	case KObject:
		out := &Schema{Kind: KObject, Fields: map[string]*Schema{}, Required: map[string]bool{}}
		seen := map[string]bool{}
		order := append([]string(nil), a.FieldOrder...)
		for _, k := range b.FieldOrder {
			if !contains(order, k) {
				order = append(order, k)
			}
		}
		for _, k := range order {
			if seen[k] {
				continue
			}
			seen[k] = true
			as, aok := a.Fields[k]
			bs, bok := b.Fields[k]
			switch {
			case aok && bok:
				out.Fields[k] = Merge(as, bs)
				out.Required[k] = a.Required[k] && b.Required[k]
			case aok:
				out.Fields[k] = as
				out.Required[k] = false
			default:
				out.Fields[k] = bs
				out.Required[k] = false
			}
			out.FieldOrder = append(out.FieldOrder, k)
		}
		return out
	default:
		return mergeUnion(a, b)
	}
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

// mergeUnion flattens a and b's alternatives into one Union, deduping
// structurally identical shapes so repeated merges don't grow unbounded.
func mergeUnion(a, b *Schema) *Schema {
	var alts []*Schema
	add := func(s *Schema) {
		if s.Kind == KUnion {
			for _, alt := range s.Alts {
				alts = appendUnique(alts, alt)
			}
			return
		}
		alts = appendUnique(alts, s)
	}
	add(a)
	add(b)
	if len(alts) == 1 {
		return alts[0]
	}
	return &Schema{Kind: KUnion, Alts: alts}
}

func appendUnique(alts []*Schema, s *Schema) []*Schema {
	for i, alt := range alts {
		if shapeEqual(alt, s) {
			alts[i] = Merge(alt, s)
			return alts
		}
	}
	return append(alts, s)
}

// shapeEqual reports whether two schemas describe the same shape
// (ignoring Constant, which Merge reconciles separately), used only to
// decide whether two alternatives in a Union should collapse into one.
func shapeEqual(a, b *Schema) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KPrim:
		return a.Prim == b.Prim
	case KArray:
		return shapeEqual(a.Elem, b.Elem)
	case KObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for k, as := range a.Fields {
			bs, ok := b.Fields[k]
			if !ok || !shapeEqual(as, bs) {
				return false
			}
		}
		return true
	case KAny:
		return true
	default:
		return false
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// SortedFieldNames returns an object schema's field names in a stable,
// deterministic order: first-seen order from FieldOrder, falling back to
// lexicographic for any stragglers (defensive against hand-built
// Schemas that skip FieldOrder).
func SortedFieldNames(s *Schema) []string {
	if len(s.FieldOrder) == len(s.Fields) {
		return s.FieldOrder
	}
	names := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
