// Package extension reads engine.extend(...) registration blocks out of
// passage JavaScript. It is a mini-evaluator over object-literal-shaped
// text: a fixed schema of known field names is walked by recursive descent,
// and anything outside the schema becomes a Warning rather than a wider
// interpretation. No script is ever executed.
package extension

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Input is one JavaScript body to read, with enough document context to
// report diagnostics at editor coordinates.
type Input struct {
	URI      string
	Document string
	Start    int
	End      int
	Mapper   *position.Mapper
	Format   format.StoryFormat
}

// Result carries the registrations and diagnostics one body produced.
type Result struct {
	Definitions []symbols.Definition
	Diagnostics []symbols.Diagnostic
}

var (
	extendCall = regexp.MustCompile(`engine\s*\.\s*extend\s*\(`)

	// templateCall matches both spellings of a registration call: the
	// qualified engine.template.inserts.add(...) and the chained
	// engine.extend(...).inserts.add(...).
	templateCall = regexp.MustCompile(`(?:engine\s*\.\s*template|\))\s*\.\s*(\w+)\s*\.\s*(\w+)\s*\(`)
)

type run struct {
	in     Input
	result Result
}

// Parse scans the body for engine.extend calls and reads every registration
// they make. Definitions are recorded whenever their matcher compiles, even
// when the declared version gates the extension off; gating affects usage
// diagnostics, not registration.
func Parse(in Input) Result {
	r := &run{in: in}
	body := in.Document[in.Start:in.End]

	calls := extendCall.FindAllStringIndex(body, -1)
	for i, call := range calls {
		scopeEnd := len(body)
		if i+1 < len(calls) {
			scopeEnd = calls[i+1][0]
		}
		r.parseExtend(body, call[1], scopeEnd)
	}
	return r.result
}

func (r *run) errorAt(start, end int, msg string) {
	r.diag(symbols.SeverityError, start, end, msg)
}

func (r *run) warnAt(start, end int, msg string) {
	r.diag(symbols.SeverityWarning, start, end, msg)
}

// diag records a diagnostic over a body-relative span.
func (r *run) diag(severity symbols.Severity, start, end int, msg string) {
	r.result.Diagnostics = append(r.result.Diagnostics, symbols.Diagnostic{
		Range:    r.in.Mapper.Range(r.in.Start+start, r.in.Start+end),
		Severity: severity,
		Message:  msg,
	})
}

// parseExtend handles one engine.extend call: the version string directly
// after the open parenthesis, then every template registration up to the
// next extend call.
func (r *run) parseExtend(body string, argsStart, scopeEnd int) {
	i := argsStart
	for i < scopeEnd && isJSSpace(body[i]) {
		i++
	}
	if i < scopeEnd && (body[i] == '\'' || body[i] == '"') {
		litEnd := skipString(body, i)
		version := unquoteJS(body[i:litEnd])
		if _, err := format.ParseVersion(version); err != nil {
			r.errorAt(i, litEnd, "The version must be a dot-separated list of numbers")
		} else if r.in.Format.VersionKnown() && format.Compare(r.in.Format.FormatVersion, version) > 0 {
			r.warnAt(i, litEnd, fmt.Sprintf(
				"The story format version is %s, so this extension will be ignored",
				r.in.Format.FormatVersion))
		}
	}

	scope := body[argsStart:scopeEnd]
	for _, m := range templateCall.FindAllStringSubmatchIndex(scope, -1) {
		namespace := scope[m[2]:m[3]]
		fn := scope[m[4]:m[5]]
		switch {
		case namespace == "inserts" && fn == "add":
			r.parseAdd(body, argsStart+m[1], symbols.KindCustomInsert)
		case namespace == "modifiers" && fn == "add":
			r.parseAdd(body, argsStart+m[1], symbols.KindCustomModifier)
		default:
			r.warnAt(argsStart+m[2], argsStart+m[5], "Unrecognized engine template function")
		}
	}
}

// parseAdd reads one inserts.add or modifiers.add argument: a restricted
// object literal starting at the call's first non-space byte.
func (r *run) parseAdd(body string, argsStart int, kind symbols.SymbolKind) {
	i := argsStart
	for i < len(body) && isJSSpace(body[i]) {
		i++
	}
	if i >= len(body) || body[i] != '{' {
		return
	}
	closing := matchJSDelim(body, i)
	if closing < 0 {
		return
	}
	r.parseObject(body, i, closing+1, kind)
}

// parseObject walks the top-level keys of one registration object. The
// Definition is recorded as soon as the matcher compiles; every other field
// only decorates it.
func (r *run) parseObject(body string, objStart, objEnd int, kind symbols.SymbolKind) {
	def := symbols.Definition{
		Kind: kind,
		Location: symbols.Location{
			URI:   r.in.URI,
			Range: r.in.Mapper.Range(r.in.Start+objStart, r.in.Start+objEnd),
		},
	}
	hasMatch := false
	compiled := false

	inner := body[objStart+1 : objEnd-1]
	base := objStart + 1
	for _, entry := range splitJSTop(inner, ',') {
		entry = trimSeg(entry)
		if entry.text == "" {
			continue
		}
		colon := indexJSTop(entry.text, ':')
		if colon < 0 {
			continue
		}
		key := trimSeg(seg{text: entry.text[:colon], off: entry.off})
		value := trimSeg(seg{text: entry.text[colon+1:], off: entry.off + colon + 1})
		name := key.text
		if isJSString(name) {
			name = unquoteJS(name)
		}
		vStart := base + value.off
		vEnd := vStart + len(value.text)

		switch name {
		case "match":
			hasMatch = true
			compiled = r.parseMatch(value.text, vStart, vEnd, kind, &def)
		case "name":
			if s, ok := r.stringValue(value.text, vStart, vEnd, "name"); ok {
				def.Name = s
			}
		case "description":
			if s, ok := r.stringValue(value.text, vStart, vEnd, "description"); ok {
				def.Description = s
			}
		case "syntax":
			if s, ok := r.stringValue(value.text, vStart, vEnd, "syntax"); ok {
				def.Syntax = s
			}
		case "completions":
			def.Completions = r.parseCompletions(value.text, vStart, vEnd)
		case "arguments":
			r.parseArguments(value.text, vStart, kind, &def)
		case "render", "apply", "process":
			// Behavior code; the analyzer doesn't read it.
		default:
			kStart := base + key.off
			r.warnAt(kStart, kStart+len(key.text), fmt.Sprintf("The property %q isn't recognized", name))
		}
	}

	if !hasMatch {
		word := "inserts"
		if kind == symbols.KindCustomModifier {
			word = "modifiers"
		}
		r.errorAt(objStart, objEnd, "Custom "+word+" must have a match property")
		return
	}
	if !compiled {
		return
	}
	if def.Name == "" {
		def.Name = def.Contents
	}
	r.result.Definitions = append(r.result.Definitions, def)
}

// parseMatch reads the mandatory regex literal. It reports whether a usable
// matcher was compiled; the whitespace-construct rule for inserts is checked
// after compilation so the definition is still recorded when it fails.
func (r *run) parseMatch(value string, vStart, vEnd int, kind symbols.SymbolKind, def *symbols.Definition) bool {
	pattern, flags, ok := parseRegexLiteral(value)
	if !ok {
		r.errorAt(vStart, vEnd, "The match property must be a regular expression")
		return false
	}

	inline := ""
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline += string(f)
		default:
			r.errorAt(vStart, vEnd, fmt.Sprintf("The regular expression flag %q isn't supported", string(f)))
			return false
		}
	}
	goPattern := pattern
	if inline != "" {
		goPattern = "(?" + inline + ")" + pattern
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		r.errorAt(vStart, vEnd, "This regular expression couldn't be parsed")
		return false
	}

	if kind == symbols.KindCustomInsert &&
		!strings.Contains(pattern, " ") && !strings.Contains(pattern, `\s`) {
		r.errorAt(vStart, vEnd, "Custom inserts must have a space in their match")
	}

	def.Contents = pattern
	def.Match = re
	return true
}

// parseRegexLiteral splits a /pattern/flags literal into its parts.
func parseRegexLiteral(value string) (pattern, flags string, ok bool) {
	if len(value) < 2 || value[0] != '/' {
		return "", "", false
	}
	end := skipRegex(value, 0)
	if end != len(value) {
		return "", "", false
	}
	closing := strings.LastIndexByte(value, '/')
	if closing == 0 {
		return "", "", false
	}
	return value[1:closing], value[closing+1:], true
}

func (r *run) stringValue(value string, vStart, vEnd int, key string) (string, bool) {
	if !isJSString(value) {
		r.warnAt(vStart, vEnd, fmt.Sprintf("The %s property must be a string", key))
		return "", false
	}
	return unquoteJS(value), true
}

// parseCompletions accepts a string or an array of strings.
func (r *run) parseCompletions(value string, vStart, vEnd int) []string {
	if isJSString(value) {
		return []string{unquoteJS(value)}
	}
	if len(value) >= 2 && value[0] == '[' && matchJSDelim(value, 0) == len(value)-1 {
		var out []string
		for _, item := range splitJSTop(value[1:len(value)-1], ',') {
			item = trimSeg(item)
			if item.text == "" {
				continue
			}
			if !isJSString(item.text) {
				r.warnAt(vStart, vEnd, "The completions property must be a string or an array of strings")
				return nil
			}
			out = append(out, unquoteJS(item.text))
		}
		return out
	}
	r.warnAt(vStart, vEnd, "The completions property must be a string or an array of strings")
	return nil
}

// parseArguments reads the nested arguments object: firstArgument plus the
// two property maps. Modifiers take neither map, so supplying one warns.
func (r *run) parseArguments(value string, vStart int, kind symbols.SymbolKind, def *symbols.Definition) {
	if len(value) < 2 || value[0] != '{' || matchJSDelim(value, 0) != len(value)-1 {
		r.warnAt(vStart, vStart+len(value), "The arguments property must be an object")
		return
	}
	inner := value[1 : len(value)-1]
	base := vStart + 1
	for _, entry := range splitJSTop(inner, ',') {
		entry = trimSeg(entry)
		if entry.text == "" {
			continue
		}
		colon := indexJSTop(entry.text, ':')
		if colon < 0 {
			continue
		}
		key := trimSeg(seg{text: entry.text[:colon], off: entry.off})
		val := trimSeg(seg{text: entry.text[colon+1:], off: entry.off + colon + 1})
		name := key.text
		if isJSString(name) {
			name = unquoteJS(name)
		}
		kStart := base + key.off
		kEnd := kStart + len(key.text)
		vOff := base + val.off

		switch name {
		case "firstArgument":
			def.FirstArgument = r.parseFirstArgument(val.text, vOff)
		case "requiredProps":
			if kind == symbols.KindCustomModifier {
				r.warnAt(kStart, kEnd, "Custom modifiers can't have required properties")
				continue
			}
			def.RequiredProps = r.parseProps(val.text, vOff)
		case "optionalProps":
			if kind == symbols.KindCustomModifier {
				r.warnAt(kStart, kEnd, "Custom modifiers can't have optional properties")
				continue
			}
			def.OptionalProps = r.parseProps(val.text, vOff)
		default:
			r.warnAt(kStart, kEnd, fmt.Sprintf("The property %q isn't recognized", name))
		}
	}
}

// parseFirstArgument reads {required, type, placeholder}. required accepts a
// boolean or one of the words required/optional/ignored.
func (r *run) parseFirstArgument(value string, vStart int) *symbols.FirstArgument {
	if len(value) < 2 || value[0] != '{' || matchJSDelim(value, 0) != len(value)-1 {
		r.warnAt(vStart, vStart+len(value), "The firstArgument property must be an object")
		return nil
	}
	arg := &symbols.FirstArgument{Required: symbols.ArgOptional}
	inner := value[1 : len(value)-1]
	base := vStart + 1
	for _, entry := range splitJSTop(inner, ',') {
		entry = trimSeg(entry)
		if entry.text == "" {
			continue
		}
		colon := indexJSTop(entry.text, ':')
		if colon < 0 {
			continue
		}
		key := trimSeg(seg{text: entry.text[:colon], off: entry.off})
		val := trimSeg(seg{text: entry.text[colon+1:], off: entry.off + colon + 1})
		name := key.text
		if isJSString(name) {
			name = unquoteJS(name)
		}
		vOff := base + val.off
		vEnd := vOff + len(val.text)

		switch name {
		case "required":
			word := val.text
			if isJSString(word) {
				word = unquoteJS(word)
			}
			switch word {
			case "true", "required":
				arg.Required = symbols.ArgRequired
			case "false", "optional":
				arg.Required = symbols.ArgOptional
			case "ignored":
				arg.Required = symbols.ArgIgnored
			default:
				r.warnAt(vOff, vEnd, `The required property must be a boolean, "required", "optional", or "ignored"`)
			}
		case "type":
			if s, ok := r.stringValue(val.text, vOff, vEnd, "type"); ok {
				arg.Type = symbols.ValueTypeFromString(s)
				if arg.Type == symbols.ValueUnknown {
					r.warnAt(vOff, vEnd, fmt.Sprintf("The type %q isn't recognized", s))
				}
			}
		case "placeholder":
			// The JS string layer comes off; inner quotes stay, matching
			// catalog entries like `'sound name'`.
			if isJSString(val.text) {
				arg.Placeholder = unquoteJS(val.text)
			} else {
				r.warnAt(vOff, vEnd, "The placeholder property must be a string")
			}
		default:
			kStart := base + key.off
			r.warnAt(kStart, kStart+len(key.text), fmt.Sprintf("The property %q isn't recognized", name))
		}
	}
	return arg
}

// parseProps reads a requiredProps or optionalProps map. Each value may be
// null, a placeholder string, or a {type, placeholder} object.
func (r *run) parseProps(value string, vStart int) []symbols.Prop {
	if len(value) < 2 || value[0] != '{' || matchJSDelim(value, 0) != len(value)-1 {
		r.warnAt(vStart, vStart+len(value), "Property lists must be objects")
		return nil
	}
	var out []symbols.Prop
	inner := value[1 : len(value)-1]
	base := vStart + 1
	for _, entry := range splitJSTop(inner, ',') {
		entry = trimSeg(entry)
		if entry.text == "" {
			continue
		}
		colon := indexJSTop(entry.text, ':')
		if colon < 0 {
			continue
		}
		key := trimSeg(seg{text: entry.text[:colon], off: entry.off})
		val := trimSeg(seg{text: entry.text[colon+1:], off: entry.off + colon + 1})
		name := key.text
		if isJSString(name) {
			name = unquoteJS(name)
		}
		prop := symbols.Prop{Name: name}
		vOff := base + val.off
		vEnd := vOff + len(val.text)

		switch {
		case val.text == "null" || val.text == "undefined" || val.text == "":
		case isJSString(val.text):
			prop.Placeholder = unquoteJS(val.text)
		case len(val.text) >= 2 && val.text[0] == '{':
			r.parsePropSpec(val.text, vOff, &prop)
		default:
			r.warnAt(vOff, vEnd, fmt.Sprintf("The property %q must be null, a string, or an object", name))
		}
		out = append(out, prop)
	}
	return out
}

func (r *run) parsePropSpec(value string, vStart int, prop *symbols.Prop) {
	if matchJSDelim(value, 0) != len(value)-1 {
		return
	}
	inner := value[1 : len(value)-1]
	base := vStart + 1
	for _, entry := range splitJSTop(inner, ',') {
		entry = trimSeg(entry)
		if entry.text == "" {
			continue
		}
		colon := indexJSTop(entry.text, ':')
		if colon < 0 {
			continue
		}
		key := trimSeg(seg{text: entry.text[:colon], off: entry.off})
		val := trimSeg(seg{text: entry.text[colon+1:], off: entry.off + colon + 1})
		name := key.text
		if isJSString(name) {
			name = unquoteJS(name)
		}
		vOff := base + val.off
		vEnd := vOff + len(val.text)

		switch name {
		case "type":
			if s, ok := r.stringValue(val.text, vOff, vEnd, "type"); ok {
				prop.Type = symbols.ValueTypeFromString(s)
				if prop.Type == symbols.ValueUnknown {
					r.warnAt(vOff, vEnd, fmt.Sprintf("The type %q isn't recognized", s))
				}
			}
		case "placeholder":
			if isJSString(val.text) {
				prop.Placeholder = unquoteJS(val.text)
			} else {
				r.warnAt(vOff, vEnd, "The placeholder property must be a string")
			}
		default:
			kStart := base + key.off
			r.warnAt(kStart, kStart+len(key.text), fmt.Sprintf("The property %q isn't recognized", name))
		}
	}
}
