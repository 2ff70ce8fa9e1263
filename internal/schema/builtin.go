package schema

import "slices"

func builtinScalar(name, description string) *Type {
	return NewType(name, TypeKindScalar, description)
}

var (
	stringType  = builtinScalar("String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences.")
	intType     = builtinScalar("Int", "The `Int` scalar type represents non-fractional signed whole numeric values.")
	floatType   = builtinScalar("Float", "The `Float` scalar type represents signed double-precision fractional values.")
	booleanType = builtinScalar("Boolean", "The `Boolean` scalar type represents `true` or `false`.")
	idType      = builtinScalar("ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.")

	builtinScalars = []*Type{stringType, intType, floatType, booleanType, idType}
)

// BuiltinScalar returns the shared definition of a specified scalar, or nil.
func BuiltinScalar(name string) *Type {
	i := slices.IndexFunc(builtinScalars, func(t *Type) bool { return t.Name == name })
	if i < 0 {
		return nil
	}
	return builtinScalars[i]
}

// IsBuiltinScalar reports whether name is one of the specified scalars.
func IsBuiltinScalar(name string) bool { return BuiltinScalar(name) != nil }

// conditionDirective declares @include or @skip.
func conditionDirective(name, description, argDescription string) *Directive {
	d := NewDirective(name, description).
		AddArgument(NewInputValue("if", argDescription, NonNullType(NamedType("Boolean"))))
	d.Locations = []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}
	return d
}

var (
	includeDirective = conditionDirective("include",
		"Directs the executor to include this field or fragment only when the `if` argument is true.", "Included when true.")
	skipDirective = conditionDirective("skip",
		"Directs the executor to skip this field or fragment when the `if` argument is true.", "Skipped when true.")
)
