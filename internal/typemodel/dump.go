package typemodel

// Dump returns a structural, JSON-friendly description of n. Named types
// nested below the top level appear as {"$ref": name}, so cyclic models stay
// finite.
func Dump(n Node) any { return dump(n, true) }

func dump(n Node, top bool) any {
	if n == nil {
		return nil
	}
	m := map[string]any{"kind": n.Kind().String()}
	meta := n.Metadata()
	if meta.Description != "" {
		m["description"] = meta.Description
	}
	if meta.Default != nil {
		m["default"] = meta.Default
	}
	switch v := n.(type) {
	case *Scalar:
		m["type"] = string(v.Scalar)
	case *ObjectType, *InterfaceType, *UnionType, *EnumType:
		named := v.(Named)
		if !top {
			return map[string]any{"$ref": named.TypeName()}
		}
		m["name"] = named.TypeName()
		switch nv := v.(type) {
		case *ObjectType:
			dumpComposite(m, &nv.composite)
		case *InterfaceType:
			dumpComposite(m, &nv.composite)
		case *UnionType:
			members := make([]any, len(nv.Members))
			for i, mem := range nv.Members {
				members[i] = dump(mem, false)
			}
			m["anyOf"] = members
		case *EnumType:
			m["enum"] = nv.Values
		}
	case *ListType:
		m["items"] = dump(v.Items, false)
	case *OptionalType:
		m["optional"] = dump(v.Of, top)
	case *RecordType:
		if v.ID != "" {
			m["$id"] = v.ID
		}
		m["properties"] = dumpFields(v.Fields)
	case *FieldWithArgs:
		m["result"] = dump(v.Result, false)
		m["args"] = dumpFields(v.Args)
	case *ScalarTransform:
		if v.ID != "" {
			m["$id"] = v.ID
		}
		m["external"] = dump(v.External, false)
		m["internal"] = dump(v.Internal, false)
	case *Transform:
		m["wire"] = dump(v.Wire, false)
	}
	return m
}

func dumpComposite(m map[string]any, c *composite) {
	m["properties"] = dumpFields(c.Fields)
	if len(c.Extends) > 0 {
		ext := make([]string, len(c.Extends))
		for i, iface := range c.Extends {
			ext[i] = iface.Name
		}
		m["extends"] = ext
	}
}

func dumpFields(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = map[string]any{"name": f.Name, "type": dump(f.Type, false)}
	}
	return out
}
