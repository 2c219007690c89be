// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package asciidoc

import (
	"fmt"
	"strings"
)

// An Inline is a unit of formatted text within a block's content.
// Inlines are emitted in left-to-right document order;
// nested spans hold child sequences, never flattened.
type Inline struct {
	kind     InlineKind
	text     string
	target   string
	name     string
	attrs    *AttrList
	children []*Inline
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	StrongKind
	EmphasisKind
	MonospaceKind
	SuperscriptKind
	SubscriptKind
	MarkKind
	LinkKind
	MacroKind
	AttributeRefKind
	LineBreakKind
	CharRefKind
)

func (k InlineKind) String() string {
	switch k {
	case TextKind:
		return "Text"
	case StrongKind:
		return "Strong"
	case EmphasisKind:
		return "Emphasis"
	case MonospaceKind:
		return "Monospace"
	case SuperscriptKind:
		return "Superscript"
	case SubscriptKind:
		return "Subscript"
	case MarkKind:
		return "Mark"
	case LinkKind:
		return "Link"
	case MacroKind:
		return "Macro"
	case AttributeRefKind:
		return "AttributeRef"
	case LineBreakKind:
		return "LineBreak"
	case CharRefKind:
		return "CharRef"
	default:
		return fmt.Sprintf("InlineKind(%d)", uint16(k))
	}
}

// Kind returns the node's kind tag, or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Text returns the node's literal text:
// the run for [TextKind], the replacement character for [CharRefKind],
// the referenced attribute name for [AttributeRefKind],
// and the raw content for pass macros.
func (inline *Inline) Text() string {
	if inline == nil {
		return ""
	}
	return inline.text
}

// Target returns the link or macro target.
func (inline *Inline) Target() string {
	if inline == nil {
		return ""
	}
	return inline.target
}

// Name returns the macro name for [MacroKind] nodes.
func (inline *Inline) Name() string {
	if inline == nil {
		return ""
	}
	return inline.name
}

// Attrs returns the macro's bracketed attribute list, if any.
func (inline *Inline) Attrs() *AttrList {
	if inline == nil {
		return nil
	}
	return inline.attrs
}

// Children returns the node's nested inline sequence.
func (inline *Inline) Children() []*Inline {
	if inline == nil {
		return nil
	}
	return inline.children
}

// inlineText flattens a node sequence to its plain text,
// for alt text and ID generation.
func inlineText(nodes []*Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Kind() {
		case TextKind, CharRefKind:
			sb.WriteString(n.text)
		case AttributeRefKind:
			sb.WriteString("{" + n.text + "}")
		case LineBreakKind:
			sb.WriteByte(' ')
		default:
			sb.WriteString(inlineText(n.children))
		}
	}
	return sb.String()
}

// maxInlineDepth bounds span nesting.
// Beyond the bound, markers degrade to literal text.
const maxInlineDepth = 16

// parseInlines runs the substitution pipeline over a block's raw content
// and returns the resulting inline sequence.
// Attribute references expand before quote parsing,
// so an attribute value may introduce formatting markers;
// references that remain unresolved surface as [AttributeRefKind] nodes.
func (p *parser) parseInlines(text string, subs SubstitutionSet, loc Location, hardbreaks bool) []*Inline {
	if subs.Has(SubAttributes) {
		text = p.table.expandReferences(text)
	}
	ip := &inlineParser{
		table:      p.table,
		diags:      p.diags,
		loc:        loc,
		subs:       subs,
		hardbreaks: hardbreaks || p.table.IsSet("hardbreaks"),
	}
	return ip.parse(text, 0)
}

type inlineParser struct {
	table      *AttributeTable
	diags      *diagSink
	loc        Location
	subs       SubstitutionSet
	hardbreaks bool
}

func (ip *inlineParser) parse(s string, depth int) []*Inline {
	var nodes []*Inline
	plain := 0
	flush := func(end int) {
		if end > plain {
			nodes = append(nodes, &Inline{kind: TextKind, text: s[plain:end]})
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		// Curved-quote digraphs outrank quote markers:
		// the closing half starts with a backtick.
		if ip.subs.Has(SubReplacements) && c != '\\' {
			if text, n := matchCurlyQuote(s, i); n > 0 {
				flush(i)
				nodes = append(nodes, &Inline{kind: CharRefKind, text: text})
				i += n
				plain = i
				continue
			}
		}
		switch {
		case c == '\\':
			if i+1 < len(s) && ip.specialAt(s, i+1) {
				flush(i)
				nodes = append(nodes, &Inline{kind: TextKind, text: s[i+1 : i+2]})
				i += 2
				plain = i
			} else {
				// The following character was not special;
				// the backslash stays literal.
				i++
			}

		case isQuoteMarker(c) && ip.subs.Has(SubQuotes):
			node, n := ip.parseQuote(s, i, depth)
			if n == 0 {
				i++
				continue
			}
			flush(i)
			nodes = append(nodes, node)
			i += n
			plain = i

		case c == '{' && ip.subs.Has(SubAttributes):
			name, end := scanAttrRef(s, i)
			if end < 0 {
				i++
				continue
			}
			// Still unresolved after expansion: surface as a reference node.
			flush(i)
			nodes = append(nodes, &Inline{kind: AttributeRefKind, text: name})
			i = end
			plain = i

		case c == '<' && ip.subs.Has(SubMacros) && strings.HasPrefix(s[i:], "<<"):
			node, n := ip.parseXrefShorthand(s, i, depth)
			if n == 0 {
				i++
				continue
			}
			flush(i)
			nodes = append(nodes, node)
			i += n
			plain = i

		case isMacroStartByte(c) && ip.subs.Has(SubMacros) && (i == 0 || !isWordByte(s[i-1])):
			node, n := ip.parseMacro(s, i, depth)
			if n == 0 {
				i++
				continue
			}
			flush(i)
			nodes = append(nodes, node)
			i += n
			plain = i

		case c == '\n':
			if ip.subs.Has(SubPostReplacements) {
				if i >= 2 && s[i-2] == ' ' && s[i-1] == '+' {
					flush(i - 2)
					nodes = append(nodes, &Inline{kind: LineBreakKind})
					plain = i
					i++
					continue
				}
				if ip.hardbreaks {
					flush(i)
					nodes = append(nodes, &Inline{kind: LineBreakKind})
					plain = i
					i++
					continue
				}
			}
			i++

		case ip.subs.Has(SubReplacements):
			text, n := matchReplacement(s, i)
			if n == 0 {
				i++
				continue
			}
			flush(i)
			nodes = append(nodes, &Inline{kind: CharRefKind, text: text})
			i += n
			plain = i

		default:
			i++
		}
	}
	flush(len(s))
	return coalesceText(nodes)
}

// specialAt reports whether scanning at s[i] would begin a special construct,
// which is what a preceding backslash can suppress.
func (ip *inlineParser) specialAt(s string, i int) bool {
	c := s[i]
	switch {
	case isQuoteMarker(c) && ip.subs.Has(SubQuotes):
		return true
	case c == '{' && ip.subs.Has(SubAttributes):
		_, end := scanAttrRef(s, i)
		return end >= 0
	case c == '<' && ip.subs.Has(SubMacros) && strings.HasPrefix(s[i:], "<<"):
		return true
	case isMacroStartByte(c) && ip.subs.Has(SubMacros):
		_, n := ip.probeMacro(s, i)
		return n > 0
	case ip.subs.Has(SubReplacements):
		if _, n := matchCurlyQuote(s, i); n > 0 {
			return true
		}
		_, n := matchReplacement(s, i)
		return n > 0
	}
	return false
}

func isQuoteMarker(c byte) bool {
	switch c {
	case '*', '_', '`', '^', '~', '#':
		return true
	}
	return false
}

func quoteKind(c byte) InlineKind {
	switch c {
	case '*':
		return StrongKind
	case '_':
		return EmphasisKind
	case '`':
		return MonospaceKind
	case '^':
		return SuperscriptKind
	case '~':
		return SubscriptKind
	case '#':
		return MarkKind
	}
	return 0
}

// parseQuote matches an emphasis span starting at s[i].
// Double markers are unconstrained (may occur mid-word);
// single markers are constrained to word boundaries.
// An opening marker matches the nearest valid unescaped closing marker;
// no match means the marker stays literal (n == 0).
func (ip *inlineParser) parseQuote(s string, i, depth int) (*Inline, int) {
	if depth >= maxInlineDepth {
		return nil, 0
	}
	c := s[i]
	kind := quoteKind(c)

	if i+1 < len(s) && s[i+1] == c {
		// Unconstrained double marker.
		close := findUnconstrainedClose(s, i+2, c)
		if close < 0 {
			return nil, 0
		}
		inner := s[i+2 : close]
		return &Inline{kind: kind, children: ip.parse(inner, depth+1)}, close + 2 - i
	}

	// Constrained single marker: must open at a word boundary
	// and not be followed by whitespace.
	if i > 0 && isWordByte(s[i-1]) {
		return nil, 0
	}
	if i+1 >= len(s) || s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == c {
		return nil, 0
	}
	close := findConstrainedClose(s, i+1, c)
	if close < 0 {
		return nil, 0
	}
	inner := s[i+1 : close]
	return &Inline{kind: kind, children: ip.parse(inner, depth+1)}, close + 1 - i
}

func findUnconstrainedClose(s string, from int, c byte) int {
	for j := from; j+1 < len(s); j++ {
		if s[j] == c && s[j+1] == c && !isEndEscaped(s[:j]) && j > from {
			return j
		}
	}
	return -1
}

func findConstrainedClose(s string, from int, c byte) int {
	for j := from; j < len(s); j++ {
		if s[j] != c || isEndEscaped(s[:j]) {
			continue
		}
		if s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' {
			continue
		}
		if j+1 < len(s) && isWordByte(s[j+1]) {
			continue
		}
		if j == from {
			continue
		}
		return j
	}
	return -1
}

func isMacroStartByte(c byte) bool {
	return 'a' <= c && c <= 'z'
}

var urlSchemes = []string{"https://", "http://", "ftp://", "irc://"}

// probeMacro reports whether s[i:] begins a macro or URL,
// without committing to a full parse.
func (ip *inlineParser) probeMacro(s string, i int) (name string, n int) {
	rest := s[i:]
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(rest, scheme) && len(rest) > len(scheme) {
			// Bare URL: reported with an empty name.
			return "", len(scheme)
		}
	}
	j := i
	for j < len(s) && 'a' <= s[j] && s[j] <= 'z' {
		j++
	}
	if j == i || j >= len(s) || s[j] != ':' {
		return "", 0
	}
	name = s[i:j]
	// Block macro form (name::target) is not an inline macro.
	if j+1 < len(s) && s[j+1] == ':' {
		return "", 0
	}
	// Require a bracketed attribute list on the same line.
	target := j + 1
	k := target
	for k < len(s) && s[k] != '[' && s[k] != ' ' && s[k] != '\t' && s[k] != '\n' {
		k++
	}
	if k >= len(s) || s[k] != '[' {
		return "", 0
	}
	switch name {
	case "link", "mailto", "image", "xref", "kbd", "footnote", "pass", "btn", "menu":
		return name, k - i
	}
	if k > target {
		return name, k - i
	}
	return "", 0
}

// parseMacro parses an inline macro or bare URL starting at s[i].
// Malformed bracket content degrades to literal text with a warning.
func (ip *inlineParser) parseMacro(s string, i, depth int) (*Inline, int) {
	name, _ := ip.probeMacro(s, i)
	if name == "" {
		return ip.parseBareURL(s, i, depth)
	}
	rest := s[i:]

	switch name {
	case "link", "mailto":
		body := rest[len(name)+1:]
		end := strings.IndexByte(body, '[')
		target := body[:end]
		if name == "mailto" {
			target = "mailto:" + target
		}
		content, n, ok := scanBracket(body, end)
		if !ok {
			// Degrade to a bare link so the rescan does not
			// warn a second time on the target.
			ip.diags.warnf(ip.loc, "unterminated %s macro", name)
			return &Inline{kind: LinkKind, target: target}, len(name) + 1 + end
		}
		attrs := parseAttrList(content)
		node := &Inline{kind: LinkKind, target: target, attrs: attrs}
		if text := attrs.Positional(1); text != "" {
			node.children = ip.parse(text, depth+1)
		}
		return node, len(name) + 1 + end + n

	case "image", "xref", "btn", "menu":
		body := rest[len(name)+1:]
		end := strings.IndexByte(body, '[')
		target := body[:end]
		content, n, ok := scanBracket(body, end)
		if !ok {
			ip.diags.warnf(ip.loc, "unterminated %s macro", name)
			return &Inline{kind: MacroKind, name: name, target: target}, len(name) + 1 + end
		}
		attrs := parseAttrList(content)
		node := &Inline{kind: MacroKind, name: name, target: target, attrs: attrs}
		if text := attrs.Positional(1); text != "" && name == "xref" {
			node.children = ip.parse(text, depth+1)
		}
		return node, len(name) + 1 + end + n

	case "kbd":
		body := rest[len("kbd:"):]
		content, n, ok := scanBracket(body, 0)
		if !ok {
			ip.diags.warnf(ip.loc, "unterminated kbd macro")
			return nil, 0
		}
		attrs := new(AttrList)
		for _, key := range strings.Split(content, "+") {
			attrs.positional = append(attrs.positional, strings.TrimSpace(key))
		}
		return &Inline{kind: MacroKind, name: "kbd", attrs: attrs}, len("kbd:") + n

	case "footnote":
		body := rest[len("footnote:"):]
		end := strings.IndexByte(body, '[')
		id := body[:end]
		content, n, ok := scanBracket(body, end)
		if !ok {
			ip.diags.warnf(ip.loc, "unterminated footnote macro")
			return &Inline{kind: MacroKind, name: "footnote", target: id}, len("footnote:") + end
		}
		return &Inline{
			kind:     MacroKind,
			name:     "footnote",
			target:   id,
			children: ip.parse(content, depth+1),
		}, len("footnote:") + end + n

	case "pass":
		body := rest[len("pass:"):]
		content, n, ok := scanBracket(body, 0)
		if !ok {
			ip.diags.warnf(ip.loc, "unterminated pass macro")
			return nil, 0
		}
		return &Inline{kind: MacroKind, name: "pass", text: content}, len("pass:") + n

	default:
		// Generic name:target[attrs] macro.
		body := rest[len(name)+1:]
		end := strings.IndexByte(body, '[')
		target := body[:end]
		content, n, ok := scanBracket(body, end)
		if !ok {
			ip.diags.warnf(ip.loc, "unterminated %s macro", name)
			return &Inline{kind: MacroKind, name: name, target: target}, len(name) + 1 + end
		}
		return &Inline{
			kind:   MacroKind,
			name:   name,
			target: target,
			attrs:  parseAttrList(content),
		}, len(name) + 1 + end + n
	}
}

// parseBareURL matches an autolink starting at s[i].
func (ip *inlineParser) parseBareURL(s string, i, depth int) (*Inline, int) {
	rest := s[i:]
	matched := ""
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(rest, scheme) && len(rest) > len(scheme) {
			matched = scheme
			break
		}
	}
	if matched == "" {
		return nil, 0
	}
	end := len(rest)
	for j := len(matched); j < len(rest); j++ {
		if c := rest[j]; c == ' ' || c == '\t' || c == '\n' || c == '[' {
			end = j
			break
		}
	}
	hasBracket := end < len(rest) && rest[end] == '['
	target := strings.TrimRight(rest[:end], ".,;:!?")
	if len(target) <= len(matched) {
		return nil, 0
	}
	if !hasBracket {
		return &Inline{kind: LinkKind, target: target}, len(target)
	}
	content, n, ok := scanBracket(rest, end)
	if !ok {
		ip.diags.warnf(ip.loc, "unterminated link macro")
		return &Inline{kind: LinkKind, target: target}, len(target)
	}
	attrs := parseAttrList(content)
	node := &Inline{kind: LinkKind, target: rest[:end], attrs: attrs}
	if text := attrs.Positional(1); text != "" {
		node.children = ip.parse(text, depth+1)
	}
	return node, end + n
}

// parseXrefShorthand matches a cross reference of the form <<id>> or <<id,text>>.
func (ip *inlineParser) parseXrefShorthand(s string, i, depth int) (*Inline, int) {
	close := strings.Index(s[i+2:], ">>")
	if close < 0 {
		return nil, 0
	}
	inner := s[i+2 : i+2+close]
	if inner == "" || strings.ContainsAny(inner, "<\n") {
		return nil, 0
	}
	target, text := inner, ""
	if comma := strings.IndexByte(inner, ','); comma >= 0 {
		target, text = inner[:comma], strings.TrimSpace(inner[comma+1:])
	}
	node := &Inline{kind: MacroKind, name: "xref", target: strings.TrimSpace(target)}
	if text != "" {
		node.children = ip.parse(text, depth+1)
	}
	return node, close + 4
}

// scanBracket scans a bracketed attribute list beginning at body[start]
// (which must be '[') and returns the unescaped content
// plus the number of bytes consumed from start.
func scanBracket(body string, start int) (content string, n int, ok bool) {
	if start >= len(body) || body[start] != '[' {
		return "", 0, false
	}
	for j := start + 1; j < len(body); j++ {
		switch body[j] {
		case '\n':
			return "", 0, false
		case ']':
			if isEndEscaped(body[start+1 : j]) {
				continue
			}
			raw := body[start+1 : j]
			return strings.ReplaceAll(raw, `\]`, "]"), j + 1 - start, true
		}
	}
	return "", 0, false
}

func coalesceText(nodes []*Inline) []*Inline {
	out := nodes[:0]
	for _, n := range nodes {
		if len(out) > 0 && n.kind == TextKind && out[len(out)-1].kind == TextKind {
			out[len(out)-1] = &Inline{kind: TextKind, text: out[len(out)-1].text + n.text}
			continue
		}
		out = append(out, n)
	}
	return out
}
