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

import "strings"

// admonitionStyles maps the recognized admonition labels
// to their paragraph-prefix forms.
var admonitionStyles = []string{"NOTE", "TIP", "IMPORTANT", "WARNING", "CAUTION"}

func isAdmonitionStyle(s string) bool {
	for _, a := range admonitionStyles {
		if s == a {
			return true
		}
	}
	return false
}

// matchAdmonitionPrefix recognizes an admonition paragraph
// ("NOTE: content") and returns the label and the remaining text.
func matchAdmonitionPrefix(text string) (style, rest string, ok bool) {
	for _, a := range admonitionStyles {
		if strings.HasPrefix(text, a) && len(text) > len(a)+1 &&
			text[len(a)] == ':' && text[len(a)+1] == ' ' {
			return a, strings.TrimLeft(text[len(a)+2:], " "), true
		}
	}
	return "", "", false
}

// classifyDelimiter recognizes a delimited block boundary line
// and returns the block kind it opens along with the exact marker text
// a closing line must repeat.
func classifyDelimiter(text string) (BlockKind, string, bool) {
	t := strings.TrimRight(text, " \t")
	if len(t) < 2 {
		return 0, "", false
	}
	c := t[0]
	for i := 1; i < len(t); i++ {
		if t[i] != c {
			return 0, "", false
		}
	}
	switch {
	case c == '-' && len(t) == 2:
		return OpenKind, t, true
	case c == '-' && len(t) >= 4:
		return ListingKind, t, true
	case c == '.' && len(t) >= 4:
		return LiteralKind, t, true
	case c == '=' && len(t) >= 4:
		return ExampleKind, t, true
	case c == '_' && len(t) >= 4:
		return QuoteKind, t, true
	case c == '*' && len(t) >= 4:
		return SidebarKind, t, true
	case c == '/' && len(t) >= 4:
		return CommentKind, t, true
	case c == '+' && len(t) >= 4:
		return PassthroughKind, t, true
	}
	return 0, "", false
}

func isContainerKind(kind BlockKind) bool {
	switch kind {
	case ExampleKind, QuoteKind, SidebarKind, OpenKind, AdmonitionKind:
		return true
	}
	return false
}

// parseBlock parses one block starting at the current line,
// which collectMeta has already established is content.
func (p *parser) parseBlock(st lineStream, meta *blockMeta, depth int) (*Block, error) {
	line, _ := st.peek()
	text := line.Text
	loc := meta.loc

	if line.residue {
		st.next()
		return p.residueBlock(text, loc), nil
	}
	if kind, marker, ok := classifyDelimiter(text); ok {
		return p.parseDelimited(st, meta, kind, marker, depth)
	}
	if strings.HasPrefix(text, "|===") {
		return p.parseTable(st, meta, depth)
	}
	switch strings.TrimRight(text, " \t") {
	case "'''":
		st.next()
		return p.breakBlock(ThematicBreakKind, meta), nil
	case "<<<":
		st.next()
		return p.breakBlock(PageBreakKind, meta), nil
	}
	if strings.HasPrefix(text, "image::") {
		if b, ok := p.parseImageBlock(st, meta); ok {
			return b, nil
		}
	}
	if _, ok := parseListMarker(text); ok {
		return p.parseList(st, meta, depth)
	}
	if _, _, ok := parseHeadingLine(text); ok && depth > 0 {
		p.diags.warnf(loc, "sections are not permitted inside delimited blocks")
	}
	return p.parseParagraph(st, meta)
}

// residueBlock wraps an unresolved include directive so the failure
// stays visible in rendered output.
func (p *parser) residueBlock(text string, loc Location) *Block {
	target := text
	if rest, ok := strings.CutPrefix(target, "include::"); ok {
		target = rest
		if i := strings.IndexByte(target, '['); i >= 0 {
			target = target[:i]
		}
	}
	return &Block{
		kind:   IncludeResidueKind,
		loc:    loc,
		target: target,
		lines:  []string{text},
		subs:   SubsNone,
	}
}

func (p *parser) breakBlock(kind BlockKind, meta *blockMeta) *Block {
	b := &Block{kind: kind, loc: meta.loc, subs: SubsNone}
	p.applyMeta(b, meta)
	return b
}

// parseImageBlock parses an "image::target[attrs]" line.
// A malformed macro falls back to paragraph parsing.
func (p *parser) parseImageBlock(st lineStream, meta *blockMeta) (*Block, bool) {
	line, _ := st.peek()
	text := strings.TrimRight(line.Text, " \t")
	rest := strings.TrimPrefix(text, "image::")
	open := strings.IndexByte(rest, '[')
	if open <= 0 || !strings.HasSuffix(rest, "]") {
		return nil, false
	}
	st.next()
	b := &Block{
		kind:   ImageKind,
		loc:    meta.loc,
		target: p.table.expandReferences(rest[:open]),
		subs:   SubsNone,
	}
	l := parseAttrList(p.table.expandReferences(rest[open+1 : len(rest)-1]))
	meta.merge(l)
	p.applyMeta(b, meta)
	return b, true
}

// parseDelimited parses a delimited block.
// A missing closing delimiter consumes the rest of the input
// with a warning at the opening line.
func (p *parser) parseDelimited(st lineStream, meta *blockMeta, kind BlockKind, marker string, depth int) (*Block, error) {
	opener, _ := st.next()
	loc := Location{File: opener.File, Line: opener.Number}
	var body []Line
	terminated := false
	for {
		line, ok := st.next()
		if !ok {
			break
		}
		if strings.TrimRight(line.Text, " \t") == marker && !line.residue {
			terminated = true
			break
		}
		body = append(body, line)
	}
	if !terminated {
		p.diags.warnf(loc, "unterminated %v block: missing closing %q", kind, marker)
	}

	style := meta.attrs.Positional(1)
	if kind == ExampleKind && isAdmonitionStyle(style) {
		kind = AdmonitionKind
	}
	b := &Block{kind: kind, loc: loc, subs: defaultSubs(kind)}
	p.applyMeta(b, meta)

	switch {
	case kind == CommentKind:
		// Content discarded apart from provenance.
	case isContainerKind(kind):
		blocks, err := p.parseSectionContent(&sliceStream{lines: body}, 0, depth+1)
		if err != nil {
			return nil, err
		}
		b.blocks = blocks
	default:
		b.lines = make([]string, len(body))
		for i, l := range body {
			b.lines[i] = l.Text
		}
		b.inlines = p.contentInlines(strings.Join(b.lines, "\n"), b, loc)
	}
	return b, nil
}

// contentInlines inline-parses block content when the substitution set
// calls for more than character escaping, and returns nil otherwise.
// Verbatim and passthrough content with default substitutions
// renders straight from the source lines.
func (p *parser) contentInlines(text string, b *Block, loc Location) []*Inline {
	const inlineSubs = SubQuotes | SubAttributes | SubReplacements | SubMacros | SubPostReplacements
	if b.subs&SubstitutionSet(inlineSubs) == 0 {
		return nil
	}
	return p.parseInlines(text, b.subs, loc, b.attrs.HasOption("hardbreaks"))
}

// paragraphBreak reports whether a line interrupts an open paragraph.
func paragraphBreak(line Line) bool {
	text := line.Text
	if isBlankLine(text) || line.residue {
		return true
	}
	if _, _, ok := classifyDelimiter(text); ok {
		return true
	}
	if _, _, ok := parseHeadingLine(text); ok {
		return true
	}
	if _, _, _, ok := parseAttributeEntry(text); ok {
		return true
	}
	if _, ok := isAttrListLine(text); ok {
		return true
	}
	if _, ok := isAnchorLine(text); ok {
		return true
	}
	// List markers interrupt a paragraph without a blank line.
	if _, ok := parseListMarker(text); ok {
		return true
	}
	return strings.HasPrefix(text, "|===") || strings.HasPrefix(text, "image::")
}

// parseParagraph parses a run of contiguous lines as a single block.
// The block's final kind depends on the declared style and indentation.
func (p *parser) parseParagraph(st lineStream, meta *blockMeta) (*Block, error) {
	first, _ := st.peek()
	loc := meta.loc
	style := meta.attrs.Positional(1)

	kind := ParagraphKind
	switch {
	case style == "source" || style == "listing":
		kind = ListingKind
	case style == "literal":
		kind = LiteralKind
	case style == "pass":
		kind = PassthroughKind
	case style == "quote" || style == "verse":
		kind = QuoteKind
	case style == "sidebar":
		kind = SidebarKind
	case style == "example":
		kind = ExampleKind
	case style == "open":
		kind = OpenKind
	case style == "comment":
		kind = CommentKind
	case isAdmonitionStyle(style):
		kind = AdmonitionKind
	}

	text := first.Text
	if kind == ParagraphKind {
		if s, rest, ok := matchAdmonitionPrefix(text); ok {
			kind = AdmonitionKind
			style = s
			text = rest
		} else if text[0] == ' ' || text[0] == '\t' {
			kind = LiteralKind
		}
	}

	st.next()
	lines := []string{text}
	for {
		line, ok := st.peek()
		if !ok || paragraphBreak(line) {
			break
		}
		st.next()
		lines = append(lines, line.Text)
	}
	if kind == LiteralKind && style == "" {
		lines = stripIndent(lines)
	}

	b := &Block{kind: kind, loc: loc, style: style, subs: defaultSubs(kind), lines: lines}
	p.applyMeta(b, meta)
	switch {
	case kind == CommentKind:
	case isContainerKind(kind) && kind != AdmonitionKind:
		// A styled paragraph under a container kind wraps its text
		// in a single child paragraph so renderers see one shape per kind.
		inner := &Block{kind: ParagraphKind, loc: loc, subs: b.subs, lines: lines}
		inner.inlines = p.contentInlines(strings.Join(lines, "\n"), inner, loc)
		b.blocks = []*Block{inner}
		b.lines = nil
	default:
		b.inlines = p.contentInlines(strings.Join(lines, "\n"), b, loc)
	}
	return b, nil
}

// stripIndent removes the first line's leading whitespace
// from every line that carries it.
func stripIndent(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	indent := lines[0][:len(lines[0])-len(strings.TrimLeft(lines[0], " \t"))]
	if indent == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, indent)
	}
	return out
}
