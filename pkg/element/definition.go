package element

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

// Type is the value type of an attribute-backed property.
type Type uint8

const (
	String  Type = iota // attribute text as-is
	Number              // attribute parsed as float64
	Boolean             // attribute presence
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case String:
		return "String"
	case Number:
		return "Number"
	case Boolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Converter turns an attribute value into a property value. A nil value
// means the attribute is absent.
type Converter func(value *string, t Type) any

// DefaultConverter converts by type: Number parses the text (absent and
// empty are 0, unparsable is NaN), Boolean reports presence, and String
// returns the text or nil.
func DefaultConverter(value *string, t Type) any {
	switch t {
	case Number:
		if value == nil || strings.TrimSpace(*value) == "" {
			return float64(0)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(*value), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case Boolean:
		return value != nil
	default:
		if value == nil {
			return nil
		}
		return *value
	}
}

// PropertyOptions configures an attribute-backed property.
type PropertyOptions struct {
	// Attribute is the attribute name. It defaults to the property name.
	Attribute string

	Type Type

	// Unobserved properties do not react to attribute changes.
	Unobserved bool

	// Internal properties are not backed by an attribute and behave like
	// state initialized to Default.
	Internal bool

	// Converter replaces DefaultConverter.
	Converter Converter

	// Default is returned when a non-boolean attribute is absent or empty.
	Default any
}

// WatchOptions configures a watch.
type WatchOptions struct {
	// Immediate calls the watch once with the initial value.
	Immediate bool
}

// Hooks are the lifecycle callbacks of an element type. Every field is
// optional.
type Hooks struct {
	// DidMount runs after the first render following a connect.
	DidMount func(e *Element)

	// DidUpdate runs after the render that follows a property or state
	// change. It does not run for changes made before the first mount
	// when DidMount is set.
	DidUpdate func(e *Element, name string, oldValue, newValue any)

	// Updated runs after every render following the first.
	Updated func(e *Element)

	// WillUnmount runs when the element is disconnected.
	WillUnmount func(e *Element)

	// ShouldUpdate vetoes a change when it returns false.
	ShouldUpdate func(e *Element, name string, oldValue, newValue any) bool
}

// RenderFunc renders the element's shadow content. It returns anything the
// reconciler accepts as a root.
type RenderFunc func(e *Element) any

type fieldKind uint8

const (
	fieldProperty fieldKind = iota + 1
	fieldState
	fieldComputed
)

type field struct {
	kind fieldKind
	name string

	// property
	attr    string
	opts    PropertyOptions
	convert func(*string) any

	// state and internal property
	initial any

	// computed
	compute func(e *Element) any
}

type watch struct {
	path string
	fn   func(e *Element, newValue, oldValue any)
	opts WatchOptions
}

// Definition is the static schema of an element type. It is built once by
// a Builder and shared by every instance.
type Definition struct {
	Tag string

	fields  []*field
	byName  map[string]*field
	byAttr  map[string]*field
	watches []watch
	render  RenderFunc
	hooks   Hooks

	observed []string
}

// ObservedAttributes lists the attributes whose changes notify readers.
func (d *Definition) ObservedAttributes() []string { return d.observed }

// Fields returns the declared property, state and computed names in
// declaration order.
func (d *Definition) Fields() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.name
	}
	return names
}

// Builder declares an element type.
type Builder struct {
	def  *Definition
	errs []string
}

// Define starts the declaration of the element type for tag.
func Define(tag string) *Builder {
	return &Builder{def: &Definition{
		Tag:    strings.ToLower(tag),
		byName: make(map[string]*field),
		byAttr: make(map[string]*field),
	}}
}

func (b *Builder) add(f *field) {
	if f.name == "" {
		b.errs = append(b.errs, "empty field name")
		return
	}
	if _, dup := b.def.byName[f.name]; dup {
		b.errs = append(b.errs, fmt.Sprintf("field %q declared twice", f.name))
		return
	}
	b.def.fields = append(b.def.fields, f)
	b.def.byName[f.name] = f
}

// Property declares an attribute-backed property.
func (b *Builder) Property(name string, opts PropertyOptions) *Builder {
	f := &field{kind: fieldProperty, name: name, opts: opts}
	if opts.Internal {
		f.kind = fieldState
		f.initial = opts.Default
		b.add(f)
		return b
	}

	f.attr = opts.Attribute
	if f.attr == "" {
		f.attr = name
	}
	f.attr = strings.ToLower(f.attr)
	if _, dup := b.def.byAttr[f.attr]; dup {
		b.errs = append(b.errs, fmt.Sprintf("attribute %q backs two properties", f.attr))
		return b
	}

	conv := opts.Converter
	if conv == nil {
		conv = DefaultConverter
	}
	f.convert = func(value *string) any {
		// Boolean properties always follow attribute presence.
		if opts.Type != Boolean && emptyAttr(value) && !emptyDefault(opts.Default) {
			return opts.Default
		}
		return conv(value, opts.Type)
	}

	b.add(f)
	b.def.byAttr[f.attr] = f
	if !opts.Unobserved {
		b.def.observed = append(b.def.observed, f.attr)
	}
	return b
}

// State declares internal reactive state.
func (b *Builder) State(name string, initial any) *Builder {
	b.add(&field{kind: fieldState, name: name, initial: initial})
	return b
}

// Computed declares a cached value derived from other fields. It is
// recomputed on read after one of the fields it read changed.
func (b *Builder) Computed(name string, fn func(e *Element) any) *Builder {
	b.add(&field{kind: fieldComputed, name: name, compute: fn})
	return b
}

// Watch calls fn after the value of field path changed.
func (b *Builder) Watch(path string, fn func(e *Element, newValue, oldValue any), opts WatchOptions) *Builder {
	b.def.watches = append(b.def.watches, watch{path: path, fn: fn, opts: opts})
	return b
}

// Render sets the render function.
func (b *Builder) Render(fn RenderFunc) *Builder {
	b.def.render = fn
	return b
}

// Hooks sets the lifecycle hooks.
func (b *Builder) Hooks(h Hooks) *Builder {
	b.def.hooks = h
	return b
}

// Build validates the declaration and returns the definition.
func (b *Builder) Build() (*Definition, error) {
	errs := b.errs
	if !strings.Contains(b.def.Tag, "-") {
		errs = append(errs, fmt.Sprintf("tag %q has no hyphen", b.def.Tag))
	}
	for _, w := range b.def.watches {
		if _, ok := b.def.byName[w.path]; !ok {
			errs = append(errs, fmt.Sprintf("watch on undeclared field %q", w.path))
		}
	}
	if len(errs) > 0 {
		return nil, qerrors.New("Q040").WithDetail(b.def.Tag + ": " + strings.Join(errs, "; "))
	}
	return b.def, nil
}

// MustBuild is like Build but panics on an invalid declaration.
func (b *Builder) MustBuild() *Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

func emptyAttr(v *string) bool { return v == nil || *v == "" }

// emptyDefault treats nil and "" as no default; false and 0 are defaults.
func emptyDefault(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
