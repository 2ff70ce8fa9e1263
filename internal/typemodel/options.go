package typemodel

// Option configures a node at construction time.
type Option func(*options)

type options struct {
	meta          Meta
	id            string
	extends       []*InterfaceType
	discriminator string
}

func applyOptions(opts []Option) options {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return o
}

// Describe attaches free-text documentation.
func Describe(text string) Option { return func(o *options) { o.meta.Description = text } }

// Default sets the default value used when the node is an input field or argument.
func Default(v any) Option { return func(o *options) { o.meta.Default = v } }

// WithID sets the stable id of a transform or record.
func WithID(id string) Option { return func(o *options) { o.id = id } }

// Extends declares the direct supertypes of an object or interface.
func Extends(ifaces ...*InterfaceType) Option {
	return func(o *options) { o.extends = append(o.extends, ifaces...) }
}

// Discriminator overrides the value of the reserved discriminator field.
func Discriminator(value string) Option { return func(o *options) { o.discriminator = value } }
