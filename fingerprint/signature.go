package fingerprint

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrBadCall marks calls that do not fit the declared signature.
var ErrBadCall = errors.New("fingerprint: call does not match signature")

// ErrBadSignature marks invalid parameter lists.
var ErrBadSignature = errors.New("fingerprint: invalid signature")

// Kind is how a parameter receives its value.
type Kind int

const (
	// Positional params take one value, by position or by name.
	Positional Kind = iota
	// VarPositional collects the positional values left over.
	VarPositional
	// VarKeyword collects named values that match no Positional param.
	VarKeyword
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case VarPositional:
		return "var-positional"
	case VarKeyword:
		return "var-keyword"
	default:
		return "unknown"
	}
}

// Param describes one parameter of a memoized function.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Arg is a required positional parameter.
func Arg(name string) Param { return Param{Name: name, Kind: Positional} }

// ArgDefault is a positional parameter that falls back to v when omitted.
func ArgDefault(name string, v any) Param {
	return Param{Name: name, Kind: Positional, Default: v, HasDefault: true}
}

// Variadic collects extra positional values.
func Variadic(name string) Param { return Param{Name: name, Kind: VarPositional} }

// Keywords collects extra named values.
func Keywords(name string) Param { return Param{Name: name, Kind: VarKeyword} }

// Signature is the parameter list of a memoized function. Build it once with
// NewSignature and reuse it for every call.
type Signature struct {
	params     []Param
	index      map[string]int
	positional []int
	varPos     int // -1 when absent
	varKw      int // -1 when absent
}

// NewSignature validates params. Names must be unique and non-empty, at most
// one VarPositional and one VarKeyword may appear, VarPositional must follow
// every Positional param and VarKeyword must come last.
func NewSignature(params ...Param) (*Signature, error) {
	s := &Signature{
		params: append([]Param(nil), params...),
		index:  make(map[string]int, len(params)),
		varPos: -1,
		varKw:  -1,
	}
	for i, p := range s.params {
		if p.Name == "" {
			return nil, errors.Wrapf(ErrBadSignature, "parameter %d has no name", i)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, errors.Wrapf(ErrBadSignature, "duplicate parameter %q", p.Name)
		}
		if s.varKw >= 0 {
			return nil, errors.Wrapf(ErrBadSignature, "parameter %q follows var-keyword %q", p.Name, s.params[s.varKw].Name)
		}
		switch p.Kind {
		case Positional:
			if s.varPos >= 0 {
				return nil, errors.Wrapf(ErrBadSignature, "positional %q follows var-positional %q", p.Name, s.params[s.varPos].Name)
			}
			s.positional = append(s.positional, i)
		case VarPositional:
			if s.varPos >= 0 {
				return nil, errors.Wrapf(ErrBadSignature, "second var-positional %q", p.Name)
			}
			if p.HasDefault {
				return nil, errors.Wrapf(ErrBadSignature, "var-positional %q cannot have a default", p.Name)
			}
			s.varPos = i
		case VarKeyword:
			if p.HasDefault {
				return nil, errors.Wrapf(ErrBadSignature, "var-keyword %q cannot have a default", p.Name)
			}
			s.varKw = i
		default:
			return nil, errors.Wrapf(ErrBadSignature, "parameter %q has unknown kind %d", p.Name, int(p.Kind))
		}
		s.index[p.Name] = i
	}
	return s, nil
}

// MustSignature is NewSignature that panics on error. Intended for package
// level declarations.
func MustSignature(params ...Param) *Signature {
	s, err := NewSignature(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Params returns a copy of the parameter list.
func (s *Signature) Params() []Param { return append([]Param(nil), s.params...) }

// Call is one invocation: positional values and named values.
type Call struct {
	Args   []any
	Kwargs map[string]any
}

// Args builds a Call from positional values only.
func Args(args ...any) Call { return Call{Args: args} }

// Argument is one bound parameter. VarPositional values are []any and
// VarKeyword values are map[string]any.
type Argument struct {
	Name  string
	Kind  Kind
	Value any
}

// Bound lists the bound arguments in signature order.
type Bound []Argument

// Lookup returns the value bound to name.
func (b Bound) Lookup(name string) (any, bool) {
	for _, a := range b {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Bind maps call onto the signature and applies defaults. Binding is
// partial: a required param the call leaves out is simply absent from the
// result. VarPositional and VarKeyword params are always present, empty when
// nothing was collected.
func (s *Signature) Bind(call Call) (Bound, error) {
	vals := make([]any, len(s.params))
	set := make([]bool, len(s.params))

	var extra []any
	for i, v := range call.Args {
		if i < len(s.positional) {
			idx := s.positional[i]
			vals[idx], set[idx] = v, true
			continue
		}
		if s.varPos < 0 {
			return nil, errors.Wrapf(ErrBadCall, "too many positional arguments: got %d, want at most %d", len(call.Args), len(s.positional))
		}
		extra = append(extra, v)
	}

	names := make([]string, 0, len(call.Kwargs))
	for name := range call.Kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	var extraKw map[string]any
	for _, name := range names {
		v := call.Kwargs[name]
		if idx, ok := s.index[name]; ok && s.params[idx].Kind == Positional {
			if set[idx] {
				return nil, errors.Wrapf(ErrBadCall, "multiple values for argument %q", name)
			}
			vals[idx], set[idx] = v, true
			continue
		}
		if s.varKw < 0 {
			return nil, errors.Wrapf(ErrBadCall, "unexpected keyword argument %q", name)
		}
		if extraKw == nil {
			extraKw = make(map[string]any)
		}
		extraKw[name] = v
	}

	out := make(Bound, 0, len(s.params))
	for i, p := range s.params {
		switch p.Kind {
		case VarPositional:
			if extra == nil {
				extra = []any{}
			}
			out = append(out, Argument{Name: p.Name, Kind: p.Kind, Value: extra})
		case VarKeyword:
			if extraKw == nil {
				extraKw = map[string]any{}
			}
			out = append(out, Argument{Name: p.Name, Kind: p.Kind, Value: extraKw})
		default:
			switch {
			case set[i]:
				out = append(out, Argument{Name: p.Name, Kind: p.Kind, Value: vals[i]})
			case p.HasDefault:
				out = append(out, Argument{Name: p.Name, Kind: p.Kind, Value: p.Default})
			}
		}
	}
	return out, nil
}
