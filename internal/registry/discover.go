package registry

import "github.com/hanpama/typegraph/internal/typemodel"

// discriminators maps the discriminator value of every reachable object type
// to its type name. The first object seen for a value wins.
func (r Registry) discriminators() map[string]string {
	out := make(map[string]string)
	seen := make(map[typemodel.Node]bool)
	var visit func(n typemodel.Node)
	visitFields := func(fields []typemodel.Field) {
		for _, f := range fields {
			visit(f.Type)
			for _, a := range typemodel.ArgsOf(f.Type) {
				visit(a.Type)
			}
		}
	}
	visit = func(n typemodel.Node) {
		n = typemodel.Unwrap(n)
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		switch v := n.(type) {
		case *typemodel.ObjectType:
			if _, ok := out[v.Discriminator]; !ok {
				out[v.Discriminator] = v.Name
			}
			visitFields(v.Fields)
		case *typemodel.InterfaceType:
			visitFields(v.Fields)
		case *typemodel.UnionType:
			for _, m := range v.Members {
				visit(m)
			}
		case *typemodel.ListType:
			visit(v.Items)
		case *typemodel.RecordType:
			visitFields(v.Fields)
		}
	}
	for _, t := range r.Types() {
		visit(t)
	}
	for _, fields := range r.roots {
		visitFields(fields)
	}
	return out
}
