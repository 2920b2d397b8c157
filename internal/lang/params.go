package lang

import "strings"

// Param describes one function or method parameter.
//
// Every front-end serializes parameters through String() into exactly one of
// four shapes, and the change classifier parses them back apart with
// ParseParam. The shapes are, in priority order:
//
//	name=...     parameter has a default value
//	name?        parameter carries an optional marker
//	name: Type   parameter has a type annotation
//	name         bare parameter
//
// A new front-end must conform to this encoding or the breaking-change
// heuristics downstream will mis-fire.
type Param struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Optional   bool   `json:"optional,omitempty"`
}

// String encodes the parameter into its wire shape.
func (p Param) String() string {
	switch {
	case p.HasDefault:
		return p.Name + "=..."
	case p.Optional:
		return p.Name + "?"
	case p.Type != "":
		return p.Name + ": " + p.Type
	default:
		return p.Name
	}
}

// ParseParam decodes a wire-shape parameter string back into a Param.
func ParseParam(s string) Param {
	s = strings.TrimSpace(s)
	if name, ok := strings.CutSuffix(s, "=..."); ok {
		return Param{Name: strings.TrimSpace(name), HasDefault: true}
	}
	if name, ok := strings.CutSuffix(s, "?"); ok {
		return Param{Name: strings.TrimSpace(name), Optional: true}
	}
	if name, typ, ok := strings.Cut(s, ":"); ok {
		return Param{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}
	}
	return Param{Name: s}
}

// EncodeParams serializes a parameter list into wire shapes.
func EncodeParams(params []Param) []string {
	if len(params) == 0 {
		return nil
	}
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.String()
	}
	return out
}

// DecodeParams parses a list of wire-shape strings.
func DecodeParams(encoded []string) []Param {
	if len(encoded) == 0 {
		return nil
	}
	out := make([]Param, len(encoded))
	for i, s := range encoded {
		out[i] = ParseParam(s)
	}
	return out
}
