package schema

import (
	"fmt"
	"strings"

	"github.com/go-pathql/pathql/value"
)

// Render formats s per spec.md §6: two-space indentation, `key: type`
// lines for object fields (optional fields suffixed with `?`), array
// element type on its own indented line, and trailing `# ...` annotations
// for array length, object key count, and constant scalar values.
func Render(s *Schema) string {
	var b strings.Builder
	renderNode(&b, s, 0, "")
	return strings.TrimRight(b.String(), "\n")
}

func indent(n int) string { return strings.Repeat("  ", n) }

func renderNode(b *strings.Builder, s *Schema, depth int, namePrefix string) {
	switch s.Kind {
	case KPrim:
		fmt.Fprintf(b, "%s%s%s\n", indent(depth), namePrefix, primLine(s))
	case KAny:
		fmt.Fprintf(b, "%s%sany\n", indent(depth), namePrefix)
	case KUnion:
		fmt.Fprintf(b, "%s%s%s\n", indent(depth), namePrefix, unionLine(s))
	case KArray:
		fmt.Fprintf(b, "%s%sarray  # %s\n", indent(depth), namePrefix, arrayLenAnnotation(s))
		renderNode(b, s.Elem, depth+1, "")
	case KObject:
		fmt.Fprintf(b, "%s%sobject  # %d key%s\n", indent(depth), namePrefix, len(s.Fields), plural(len(s.Fields)))
		for _, name := range SortedFieldNames(s) {
			field := s.Fields[name]
			label := name
			if !s.Required[name] {
				label += "?"
			}
			renderNode(b, field, depth+1, label+": ")
		}
	}
}

func arrayLenAnnotation(s *Schema) string {
	if s.MinLen == s.MaxLen {
		return fmt.Sprintf("%d element%s", s.MaxLen, plural(s.MaxLen))
	}
	return fmt.Sprintf("%d-%d elements", s.MinLen, s.MaxLen)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func primLine(s *Schema) string {
	base := s.Prim.String()
	if s.Constant != nil {
		return fmt.Sprintf("%s  # %s", base, constantAnnotation(s.Constant))
	}
	return base
}

func constantAnnotation(v *value.Value) string {
	switch v.Kind() {
	case value.String:
		return fmt.Sprintf("always %q", v.Str())
	case value.Number:
		return fmt.Sprintf("always %s", value.CanonicalKey(v))
	case value.Bool:
		return fmt.Sprintf("always %s", value.CanonicalKey(v))
	case value.Null:
		return "always null"
	default:
		return "constant"
	}
}

// unionLine renders a Union's alternatives as "T1 | T2 | null", per
// spec.md §6. A Null alternative is always rendered last regardless of
// when it was first observed, matching the example in spec.md §6.
func unionLine(s *Schema) string {
	var nonNull []string
	hasNull := false
	for _, alt := range s.Alts {
		if alt.Kind == KPrim && alt.Prim == value.Null {
			hasNull = true
			continue
		}
		nonNull = append(nonNull, shortTypeName(alt))
	}
	parts := nonNull
	if hasNull {
		parts = append(parts, "null")
	}
	return strings.Join(parts, " | ")
}

// shortTypeName names an alternative for inline use within a union line;
// nested object/array detail is not expanded inline, matching spec.md
// §6's compact union rendering.
func shortTypeName(s *Schema) string {
	switch s.Kind {
	case KPrim:
		return s.Prim.String()
	case KArray:
		return "array"
	case KObject:
		return "object"
	case KAny:
		return "any"
	case KUnion:
		return unionLine(s)
	default:
		return "any"
	}
}
