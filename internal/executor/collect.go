package executor

import (
	"slices"

	language "github.com/hanpama/typegraph/internal/language"
	schema "github.com/hanpama/typegraph/internal/schema"
)

// fieldGroup is every selection of one response key, in document order.
type fieldGroup struct {
	name   string
	fields []*language.Field
}

type collector struct {
	ex      *execution
	obj     *schema.Type
	groups  []fieldGroup
	byName  map[string]int
	visited map[string]bool
}

// collect groups the fields selected on obj by response key, applying @skip,
// @include and fragment type conditions. Each named fragment is expanded
// once.
func (ex *execution) collect(obj *schema.Type, set language.SelectionSet) []fieldGroup {
	c := ex.collector(obj)
	c.add(set)
	return c.groups
}

// collectSubfields merges the selection sets of all fields completed into
// one object value.
func (ex *execution) collectSubfields(obj *schema.Type, fields []*language.Field) []fieldGroup {
	c := ex.collector(obj)
	for _, f := range fields {
		c.add(f.SelectionSet)
	}
	return c.groups
}

func (ex *execution) collector(obj *schema.Type) *collector {
	return &collector{ex: ex, obj: obj, byName: map[string]int{}, visited: map[string]bool{}}
}

func (c *collector) add(set language.SelectionSet) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			if !c.ex.included(sel.Directives) {
				continue
			}
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			if i, ok := c.byName[key]; ok {
				c.groups[i].fields = append(c.groups[i].fields, sel)
				continue
			}
			c.byName[key] = len(c.groups)
			c.groups = append(c.groups, fieldGroup{name: key, fields: []*language.Field{sel}})
		case *language.InlineFragment:
			if c.ex.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.add(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if c.visited[sel.Name] || !c.ex.included(sel.Directives) {
				continue
			}
			c.visited[sel.Name] = true
			frag := c.ex.document.Fragments.ForName(sel.Name)
			if frag != nil && c.applies(frag.TypeCondition) {
				c.add(frag.SelectionSet)
			}
		}
	}
}

// applies reports whether a fragment on condition selects fields of the
// collector's object type.
func (c *collector) applies(condition string) bool {
	if condition == "" || condition == c.obj.Name {
		return true
	}
	t := c.ex.schema.Types[condition]
	if t == nil || !t.IsAbstract() {
		return false
	}
	return t.HasPossibleType(c.obj.Name) || slices.Contains(c.obj.Interfaces, condition)
}

// included evaluates @skip and @include.
func (ex *execution) included(dirs language.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil && ex.directiveIf(d) {
		return false
	}
	if d := dirs.ForName("include"); d != nil && !ex.directiveIf(d) {
		return false
	}
	return true
}

func (ex *execution) directiveIf(d *language.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, err := coerceLiteral(ex.schema, arg.Value, schema.NonNullType(schema.NamedType("Boolean")), ex.vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}
