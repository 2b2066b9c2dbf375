// Package completion classifies a cursor position inside a passage and
// offers the candidates that position can take: modifier names, insert
// names, property names, and typed property values. A position with nothing
// to offer yields a nil result, which callers surface as "no results"
// rather than an empty list.
package completion

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twinetools/chapbook-ls/pkg/builtins"
	"github.com/twinetools/chapbook-ls/pkg/format"
	"github.com/twinetools/chapbook-ls/pkg/parser"
	"github.com/twinetools/chapbook-ls/pkg/position"
	"github.com/twinetools/chapbook-ls/pkg/scanner"
	"github.com/twinetools/chapbook-ls/pkg/symbols"
)

// Item is one candidate. InsertText may be a snippet: a required first
// argument extends the inserted name with a placeholder continuation.
type Item struct {
	Label      string
	InsertText string
	Kind       symbols.SymbolKind
	Deprecated bool
}

// Result is a candidate list plus the edit range all items replace: exactly
// the identifier run touching the caret, quote marks excluded.
type Result struct {
	Items     []Item
	EditRange position.Range
}

// Complete generates candidates for pos. index may be nil; custom
// registrations then don't contribute.
func Complete(ctx context.Context, passage parser.Passage, pos position.Pos, storyFormat format.StoryFormat, index symbols.Index) *Result {
	c := &completer{
		doc:    passage.Document,
		m:      position.NewMapper(passage.Document),
		format: storyFormat,
		index:  index,
	}
	res := c.complete(c.m.Offset(pos))
	if res != nil {
		zerolog.Ctx(ctx).Debug().
			Str("uri", passage.URI).
			Int("items", len(res.Items)).
			Msg("generated completions")
	}
	return res
}

type completer struct {
	doc    string
	m      *position.Mapper
	format format.StoryFormat
	index  symbols.Index
}

func (c *completer) complete(offset int) *Result {
	li := c.m.Pos(offset).Line
	lineStart := c.m.LineStart(li)
	line := c.doc[lineStart:c.m.LineEnd(li)]
	col := offset - lineStart

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[[") {
		return c.completeModifier(lineStart, line, col)
	}
	return c.completeInsert(lineStart, line, col)
}

// completeModifier handles the inside of a modifier block. Only the name
// position of the current semicolon-separated segment offers candidates;
// parameter positions have nothing to suggest.
func (c *completer) completeModifier(lineStart int, line string, col int) *Result {
	open := strings.IndexByte(line, '[')
	if col <= open {
		return nil
	}
	segStart := open + 1
	for _, seg := range scanner.SplitTopLevel(line[open+1:], ';') {
		if open+1+seg.Offset <= col {
			segStart = open + 1 + seg.Offset
		}
	}
	before := strings.TrimLeft(line[segStart:col], " \t")
	if strings.ContainsAny(before, " \t") {
		return nil
	}

	editStart, editEnd := c.nameRun(lineStart, line, col, segStart, false)
	prefix := strings.ToLower(c.doc[editStart : lineStart+col])

	var items []Item
	catalog := builtins.Modifiers()
	for i := range catalog {
		if !c.available(&catalog[i]) {
			continue
		}
		for _, word := range catalog[i].Completions {
			if hasPrefixFold(word, prefix) {
				items = append(items, Item{Label: word, InsertText: word, Kind: symbols.KindBuiltInModifier})
			}
		}
	}
	for _, def := range c.customDefs(symbols.KindCustomModifier) {
		if hasPrefixFold(def.Name, prefix) {
			items = append(items, Item{Label: def.Name, InsertText: def.Name, Kind: symbols.KindCustomModifier})
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &Result{Items: items, EditRange: c.m.Range(editStart, editEnd)}
}

// completeInsert handles the inside of a `{...}` form: the name position,
// the first argument after its colon, property names, and property values.
func (c *completer) completeInsert(lineStart int, line string, col int) *Result {
	open := -1
	for i := 0; i < col; i++ {
		switch line[i] {
		case '{':
			open = i
		case '}':
			open = -1
		}
	}
	if open < 0 {
		return nil
	}

	content := line[open+1 : col]
	segs := scanner.SplitTopLevel(content, ',')
	current := segs[len(segs)-1]
	segStart := open + 1 + current.Offset

	if len(segs) == 1 {
		if colon := scanner.IndexTopLevel(current.Text, ':'); colon >= 0 {
			contract := c.resolveContract(strings.TrimSpace(current.Text[:colon]))
			if contract == nil || contract.firstArg == nil {
				return nil
			}
			return c.completeValue(lineStart, line, col, segStart+colon+1,
				contract.firstArg.Type, contract.firstArg.Placeholder)
		}
		return c.completeInsertName(lineStart, line, col, open+1)
	}

	leading := strings.TrimSpace(segs[0].Text)
	name := leading
	if colon := scanner.IndexTopLevel(leading, ':'); colon >= 0 {
		name = strings.TrimSpace(leading[:colon])
	}
	contract := c.resolveContract(name)

	if colon := scanner.IndexTopLevel(current.Text, ':'); colon >= 0 {
		if contract == nil {
			return nil
		}
		propName := strings.TrimSpace(current.Text[:colon])
		prop := contract.prop(propName)
		if prop == nil {
			return nil
		}
		return c.completeValue(lineStart, line, col, segStart+colon+1, prop.Type, prop.Placeholder)
	}
	return c.completePropertyName(lineStart, line, col, segStart, content, contract)
}

// completeInsertName offers built-in and custom insert names. A required
// first argument extends the snippet; required-property placeholders are
// appended only when the name run starts bare at the opening brace.
func (c *completer) completeInsertName(lineStart int, line string, col, contentStart int) *Result {
	editStart, editEnd := c.nameRun(lineStart, line, col, contentStart, true)
	prefix := strings.ToLower(c.doc[editStart : lineStart+col])

	bare := true
	for i := contentStart; i < editStart-lineStart; i++ {
		if line[i] != ' ' && line[i] != '\t' {
			bare = false
			break
		}
	}

	var items []Item
	add := func(name string, contract *insertContract, kind symbols.SymbolKind, deprecated bool) {
		if !hasPrefixFold(name, prefix) {
			return
		}
		items = append(items, Item{
			Label:      name,
			InsertText: insertSnippet(name, contract, bare),
			Kind:       kind,
			Deprecated: deprecated,
		})
	}
	catalog := builtins.Inserts()
	for i := range catalog {
		if !c.available(&catalog[i]) {
			continue
		}
		add(catalog[i].Name, contractFromDescriptor(&catalog[i]), symbols.KindBuiltInInsert, catalog[i].Deprecated)
	}
	for _, def := range c.customDefs(symbols.KindCustomInsert) {
		add(def.Name, contractFromDefinition(def), symbols.KindCustomInsert, false)
	}
	if len(items) == 0 {
		return nil
	}
	return &Result{Items: items, EditRange: c.m.Range(editStart, editEnd)}
}

// completePropertyName offers the contract's property names not already
// present in the insert.
func (c *completer) completePropertyName(lineStart int, line string, col, segStart int, content string, contract *insertContract) *Result {
	if contract == nil {
		return nil
	}
	used := map[string]bool{}
	for _, prop := range scanner.SplitInsert(content).Properties {
		used[strings.TrimSpace(prop.Name)] = true
	}

	editStart, editEnd := c.nameRun(lineStart, line, col, segStart, false)
	prefix := strings.ToLower(c.doc[editStart : lineStart+col])

	var items []Item
	for _, p := range append(append([]symbols.Prop(nil), contract.required...), contract.optional...) {
		if used[p.Name] || !hasPrefixFold(p.Name, prefix) {
			continue
		}
		items = append(items, Item{Label: p.Name, InsertText: p.Name, Kind: symbols.KindProperty})
	}
	if len(items) == 0 {
		return nil
	}
	return &Result{Items: items, EditRange: c.m.Range(editStart, editEnd)}
}

// completeValue offers a typed value position's candidates: the declared
// placeholder, plus every known passage name for passage-typed values.
// Untyped positions with no placeholder yield nil.
func (c *completer) completeValue(lineStart int, line string, col, valueStart int, t symbols.ValueType, placeholder string) *Result {
	passageTyped := t == symbols.ValuePassage || t == symbols.ValueURLOrPassage
	if placeholder == "" && !passageTyped {
		return nil
	}

	vs := valueStart
	for vs < col && (line[vs] == ' ' || line[vs] == '\t') {
		vs++
	}
	quoted := vs < col && (line[vs] == '\'' || line[vs] == '"')
	editStart := lineStart + vs
	if quoted {
		editStart++
	}
	editEnd := lineStart + col
	for e := col; e < len(line); e++ {
		b := line[e]
		if quoted && b == line[vs] {
			break
		}
		if !quoted && (b == ',' || b == '}') {
			break
		}
		editEnd = lineStart + e + 1
	}
	for editEnd > editStart && (c.doc[editEnd-1] == ' ' || c.doc[editEnd-1] == '\t') {
		editEnd--
	}
	prefix := strings.ToLower(c.doc[editStart : lineStart+col])

	needsQuotes := !quoted && (t == symbols.ValuePlain || passageTyped)
	wrap := func(s string) string {
		if needsQuotes {
			return "'" + s + "'"
		}
		return s
	}

	var items []Item
	if passageTyped && c.index != nil {
		for _, ref := range c.index.ProjectReferences(symbols.KindPassage) {
			if hasPrefixFold(ref.Contents, prefix) {
				items = append(items, Item{Label: ref.Contents, InsertText: wrap(ref.Contents), Kind: symbols.KindPassage})
			}
		}
	}
	if placeholder != "" {
		bare := stripQuotes(placeholder)
		if hasPrefixFold(bare, prefix) {
			items = append(items, Item{Label: bare, InsertText: wrap(bare), Kind: symbols.KindProperty})
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &Result{Items: items, EditRange: c.m.Range(editStart, editEnd)}
}

// nameRun finds the identifier run touching col: word characters, plus
// internal spaces when allowSpaces is set, bounded below by floor. Returns
// document offsets.
func (c *completer) nameRun(lineStart int, line string, col, floor int, allowSpaces bool) (int, int) {
	isRun := func(b byte) bool {
		if b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			return true
		}
		return allowSpaces && b == ' '
	}
	start := col
	for start > floor && isRun(line[start-1]) {
		start--
	}
	for start < col && line[start] == ' ' {
		start++
	}
	end := col
	for end < len(line) && isRun(line[end]) {
		end++
	}
	for end > col && line[end-1] == ' ' {
		end--
	}
	return lineStart + start, lineStart + end
}

// available hides built-ins the active format version can't use.
func (c *completer) available(d *symbols.Descriptor) bool {
	if !c.format.VersionKnown() {
		return true
	}
	if d.Since != "" && format.Compare(c.format.FormatVersion, d.Since) < 0 {
		return false
	}
	if d.Removed != "" && format.Compare(c.format.FormatVersion, d.Removed) >= 0 {
		return false
	}
	return true
}

func (c *completer) customDefs(kind symbols.SymbolKind) []symbols.Definition {
	if c.index == nil {
		return nil
	}
	return c.index.ProjectDefinitions(kind)
}

// insertContract mirrors the parser's unified view of an insert's argument
// and property obligations.
type insertContract struct {
	firstArg *symbols.FirstArgument
	required []symbols.Prop
	optional []symbols.Prop
}

func (ic *insertContract) prop(name string) *symbols.Prop {
	for i := range ic.required {
		if ic.required[i].Name == name {
			return &ic.required[i]
		}
	}
	for i := range ic.optional {
		if ic.optional[i].Name == name {
			return &ic.optional[i]
		}
	}
	return nil
}

func contractFromDescriptor(d *symbols.Descriptor) *insertContract {
	return &insertContract{firstArg: d.FirstArgument, required: d.RequiredProps, optional: d.OptionalProps}
}

func contractFromDefinition(def symbols.Definition) *insertContract {
	return &insertContract{firstArg: def.FirstArgument, required: def.RequiredProps, optional: def.OptionalProps}
}

func (c *completer) resolveContract(name string) *insertContract {
	if d := builtins.MatchInsert(name); d != nil {
		return contractFromDescriptor(d)
	}
	for _, def := range c.customDefs(symbols.KindCustomInsert) {
		if def.Match != nil && def.Match.MatchString(name) {
			return contractFromDefinition(def)
		}
	}
	return nil
}

// insertSnippet builds an insert name's insert text. A required first
// argument always extends it with a `: '${1:placeholder}'` continuation;
// required properties are appended in declared order only at the bare
// trigger position.
func insertSnippet(name string, contract *insertContract, bare bool) string {
	text := name
	tab := 1
	if contract.firstArg != nil && contract.firstArg.Required == symbols.ArgRequired {
		ph := stripQuotes(contract.firstArg.Placeholder)
		if ph == "" {
			ph = "arg"
		}
		text += ": '${1:" + ph + "}'"
		tab++
	}
	if bare {
		for _, p := range contract.required {
			text += ", " + p.Name + ": " + propPlaceholder(p, tab)
			tab++
		}
	}
	return text
}

func propPlaceholder(p symbols.Prop, tab int) string {
	n := strconv.Itoa(tab)
	ph := p.Placeholder
	if ph == "" {
		return "${" + n + "}"
	}
	if scanner.IsQuoted(ph) {
		return "'${" + n + ":" + stripQuotes(ph) + "}'"
	}
	return "${" + n + ":" + ph + "}"
}

func stripQuotes(s string) string {
	if scanner.IsQuoted(s) {
		return scanner.Unquote(s)
	}
	return s
}

func hasPrefixFold(s, lowerPrefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), lowerPrefix)
}
