package schema

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// MergePath inserts leaf into tree at the position named by parts, creating
// intermediate objects and leaving siblings untouched.
//
// A leaf of option<option<T>> means the path crossed two optional hops: the
// container at the first segment becomes option<object> and the remainder
// is merged with option<T>, so the stored leaf is never doubly optional.
//
// `x.*.name` stores array<leaf> at "name"; a bare trailing `*` stores
// array<leaf> under the key "*". Descending into an existing node of any
// other shape fails with ErrCodeUnsupported. A wildcard expansion and a
// dotted path rooted at the same field are not reconciled.
func MergePath(tree kind.Object, parts []ast.Part, leaf kind.Kind) error {
	if len(parts) == 0 {
		return nil
	}

	switch p := parts[0].(type) {
	case *ast.Field:
		if len(parts) == 1 {
			tree[p.Name] = leaf
			return nil
		}

		if kind.IsDoubleOptional(leaf) {
			node, ok := tree[p.Name]
			if !ok {
				node = kind.Option{Inner: kind.Object{}}
				tree[p.Name] = node
			}
			if opt, ok := node.(kind.Option); ok {
				if nested, ok := opt.Inner.(kind.Object); ok {
					return MergePath(nested, parts[1:], leaf.(kind.Option).Inner)
				}
			}
			return Unsupported(p.Name, "unsupported field return type %s at %q", node, p.Name)
		}

		node, ok := tree[p.Name]
		if !ok {
			node = kind.Object{}
			tree[p.Name] = node
		}
		nested, ok := node.(kind.Object)
		if !ok {
			return Unsupported(p.Name, "unsupported field return type %s at %q", node, p.Name)
		}
		return MergePath(nested, parts[1:], leaf)

	case *ast.All:
		if len(parts) > 1 {
			if f, ok := parts[1].(*ast.Field); ok {
				tree[f.Name] = kind.ArrayOf(leaf)
				return nil
			}
		}
		tree["*"] = kind.ArrayOf(leaf)
		return nil

	default:
		return Unsupported(parts[0].String(), "unsupported path part %s", parts[0])
	}
}
