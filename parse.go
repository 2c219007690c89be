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

// Package asciidoc parses AsciiDoc markup into an immutable document tree
// and renders the tree to output formats.
//
// Parsing is deterministic and recoverable by design:
// structural problems degrade to best-effort nodes plus [Warning] diagnostics,
// and only depth-limit violations abort a parse.
// The engine holds no process-wide state;
// concurrent parses are safe as long as each call
// gets its own [Options] value and resolver instance.
package asciidoc

import "strings"

// maxBlockDepth bounds block nesting.
// Exceeding it is fatal ([StructureTooDeep]):
// past this point no well-formed tree can be produced.
const maxBlockDepth = 64

// Options configures a single parse.
// The zero value parses without include support.
type Options struct {
	// SourceName is the name reported in provenance and diagnostics
	// for the top-level input.
	SourceName string

	// Attributes are applied as locked entries before any document content
	// is processed. In-document entries cannot override them.
	Attributes map[string]string

	// Resolver loads include:: targets.
	// If nil, every include degrades to an error marker block
	// (or fails the parse in strict mode).
	Resolver IncludeResolver

	// Embedded marks the source as a document fragment:
	// the lines after a level-0 title are body content
	// rather than author and revision metadata.
	Embedded bool

	// Strict makes include resolution failures fatal
	// instead of degrading to error marker blocks.
	Strict bool
}

// Parse converts AsciiDoc source into a document tree.
// The returned diagnostics are ordered by source position;
// they accompany a usable tree unless the error is non-nil,
// in which case no tree is returned.
func Parse(source []byte, opts *Options) (*Document, []Diagnostic, error) {
	if opts == nil {
		opts = new(Options)
	}
	table := NewAttributeTable()
	for name, value := range opts.Attributes {
		table.SetLocked(name, value)
	}
	diags := new(diagSink)
	p := &parser{
		opts:  opts,
		table: table,
		diags: diags,
		ids:   make(map[string]bool),
	}
	src := newLineSource(source, opts, table, diags)

	doc := &Document{attrs: table}
	p.parseHeader(src, doc)
	blocks, err := p.parseSectionContent(src, 0, 0)
	if err != nil {
		return nil, diags.diags, err
	}
	if err := src.fatal(); err != nil {
		return nil, diags.diags, err
	}
	doc.blocks = blocks
	doc.buildParentIndex()
	return doc, diags.diags, nil
}

type parser struct {
	opts  *Options
	table *AttributeTable
	diags *diagSink
	ids   map[string]bool

	// pending carries block metadata across a section boundary:
	// metadata collected for a heading that closes the current section
	// belongs to that heading's parse, not the section that saw it first.
	pending *blockMeta
}

// parseHeader consumes the document header, if present:
// a level-0 title, an optional author line, an optional revision line,
// and any interleaved attribute entries, up to the first blank line.
func (p *parser) parseHeader(st lineStream, doc *Document) {
	for {
		line, ok := st.peek()
		if !ok {
			return
		}
		switch text := line.Text; {
		case isBlankLine(text):
			st.next()
		case isLineComment(text):
			st.next()
		case p.applyAttributeEntry(line):
			st.next()
		case strings.HasPrefix(text, "= ") || text == "=":
			st.next()
			loc := Location{File: line.File, Line: line.Number}
			title := strings.TrimSpace(text[1:])
			doc.title = p.parseInlines(title, SubsNormal, loc, false)
			p.table.Set("doctitle", title)
			if !p.opts.Embedded {
				p.parseAuthorRevision(st, doc)
			}
			p.finishHeader(st)
			return
		default:
			// No document header.
			return
		}
	}
}

// parseAuthorRevision reads the author and revision lines,
// which must directly follow the title.
func (p *parser) parseAuthorRevision(st lineStream, doc *Document) {
	line, ok := st.peek()
	if !ok || isBlankLine(line.Text) || isLineComment(line.Text) ||
		isHeaderStructural(line.Text) {
		return
	}
	if _, _, _, isEntry := parseAttributeEntry(line.Text); isEntry {
		return
	}
	st.next()
	doc.authors = parseAuthorLine(line.Text)
	if len(doc.authors) > 0 {
		p.table.Set("author", doc.authors[0].Name)
		if doc.authors[0].Email != "" {
			p.table.Set("email", doc.authors[0].Email)
		}
	}

	line, ok = st.peek()
	if !ok || isBlankLine(line.Text) {
		return
	}
	if rev, ok := parseRevisionLine(line.Text); ok {
		st.next()
		doc.revision = rev
		doc.hasRev = true
		if rev.Number != "" {
			p.table.Set("revnumber", rev.Number)
		}
		if rev.Date != "" {
			p.table.Set("revdate", rev.Date)
		}
	}
}

// finishHeader consumes the remaining header lines up to the first blank line.
func (p *parser) finishHeader(st lineStream) {
	for {
		line, ok := st.peek()
		if !ok || isBlankLine(line.Text) {
			return
		}
		if isLineComment(line.Text) || p.applyAttributeEntry(line) {
			st.next()
			continue
		}
		return
	}
}

func isHeaderStructural(text string) bool {
	if _, _, ok := classifyDelimiter(text); ok {
		return true
	}
	if _, _, ok := parseHeadingLine(text); ok {
		return true
	}
	return strings.HasPrefix(text, "[")
}

func parseAuthorLine(text string) []Author {
	var authors []Author
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		author := Author{Name: part}
		if open := strings.IndexByte(part, '<'); open >= 0 {
			if close := strings.IndexByte(part[open:], '>'); close > 0 {
				author.Name = strings.TrimSpace(part[:open])
				author.Email = part[open+1 : open+close]
			}
		}
		if author.Name != "" {
			authors = append(authors, author)
		}
	}
	return authors
}

func parseRevisionLine(text string) (Revision, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Revision{}, false
	}
	first := text[0]
	if first != 'v' && !('0' <= first && first <= '9') {
		return Revision{}, false
	}
	var rev Revision
	if colon := strings.IndexByte(text, ':'); colon >= 0 {
		rev.Remark = strings.TrimSpace(text[colon+1:])
		text = text[:colon]
	}
	if comma := strings.IndexByte(text, ','); comma >= 0 {
		rev.Date = strings.TrimSpace(text[comma+1:])
		text = text[:comma]
	}
	rev.Number = strings.TrimPrefix(strings.TrimSpace(text), "v")
	if rev.Number == "" && rev.Date == "" {
		return Revision{}, false
	}
	return rev, true
}

// parseHeadingLine recognizes a section heading line ("== Title" through
// "====== Title") and returns its section level (1-5).
func parseHeadingLine(text string) (level int, title string, ok bool) {
	n := 0
	for n < len(text) && text[n] == '=' {
		n++
	}
	if n < 2 || n > 6 || n >= len(text) || text[n] != ' ' {
		return 0, "", false
	}
	title = strings.TrimSpace(text[n:])
	if title == "" {
		return 0, "", false
	}
	return n - 1, title, true
}

func isLineComment(text string) bool {
	return strings.HasPrefix(text, "//") && !strings.HasPrefix(text, "////")
}

// blockMeta is the metadata collected from the lines
// immediately preceding a block:
// attribute lists, an anchor, and a title.
type blockMeta struct {
	attrs *AttrList
	id    string
	title string
	loc   Location
}

// collectMeta consumes blank lines, comments, attribute entries,
// and block metadata lines, stopping at the first content line.
// It reports false at end of input.
func (p *parser) collectMeta(st lineStream) (*blockMeta, bool) {
	meta := p.pending
	p.pending = nil
	if meta == nil {
		meta = new(blockMeta)
	}
	for {
		line, ok := st.peek()
		if !ok {
			return meta, false
		}
		text := line.Text
		switch {
		case isBlankLine(text):
			st.next()
		case isLineComment(text):
			st.next()
		case p.applyAttributeEntry(line):
			st.next()
		default:
			if id, ok := isAnchorLine(text); ok {
				st.next()
				meta.id = id
				continue
			}
			if inner, ok := isAttrListLine(text); ok {
				st.next()
				l := parseAttrList(p.table.expandReferences(inner))
				meta.merge(l)
				continue
			}
			if len(text) >= 2 && text[0] == '.' && text[1] != '.' && text[1] != ' ' && text[1] != '\t' {
				st.next()
				meta.title = text[1:]
				continue
			}
			meta.loc = Location{File: line.File, Line: line.Number}
			return meta, true
		}
	}
}

func (m *blockMeta) merge(l *AttrList) {
	if m.attrs == nil {
		m.attrs = l
		return
	}
	m.attrs.positional = append(m.attrs.positional, l.positional...)
	m.attrs.named = append(m.attrs.named, l.named...)
	m.attrs.roles = append(m.attrs.roles, l.roles...)
	m.attrs.options = append(m.attrs.options, l.options...)
	if l.id != "" {
		m.attrs.id = l.id
	}
}

// applyAttributeEntry applies an attribute entry line to the table,
// recording a diagnostic when a locked entry rejects the write.
// It reports whether the line was an attribute entry.
func (p *parser) applyAttributeEntry(line Line) bool {
	name, value, unset, ok := parseAttributeEntry(line.Text)
	if !ok {
		return false
	}
	loc := Location{File: line.File, Line: line.Number}
	if unset {
		if !p.table.Unset(name) {
			p.diags.warnf(loc, "attribute %s is locked by the caller and cannot be unset", name)
		}
		return true
	}
	// References in entry values expand at definition time.
	value = p.table.expandReferences(value)
	if !p.table.Set(name, value) {
		p.diags.warnf(loc, "attribute %s is locked by the caller and cannot be overridden", name)
	}
	return true
}

// parseSectionContent parses blocks until end of input
// or a heading of level <= level.
// Sections are recognized only at depth 0;
// inside container blocks a heading degrades to a paragraph.
func (p *parser) parseSectionContent(st lineStream, level, depth int) ([]*Block, error) {
	if depth > maxBlockDepth {
		return nil, fatalf(StructureTooDeep, Location{}, "block nesting exceeds %d levels", maxBlockDepth)
	}
	var blocks []*Block
	for {
		meta, ok := p.collectMeta(st)
		if !ok {
			break
		}
		line, _ := st.peek()
		loc := Location{File: line.File, Line: line.Number}
		if lvl, title, isHeading := parseHeadingLine(line.Text); isHeading && depth == 0 {
			if lvl <= level {
				p.pending = meta
				break
			}
			if lvl > level+1 {
				p.diags.warnf(loc, "section level skipped: level %d section under level %d", lvl, level)
			}
			st.next()
			sect := &Block{
				kind:  SectionKind,
				loc:   loc,
				level: lvl,
				subs:  SubsNormal,
				title: p.parseInlines(title, SubsNormal, loc, false),
			}
			p.applyMeta(sect, meta)
			if sect.id == "" {
				sect.id = p.generateID(inlineText(sect.title))
			} else {
				p.ids[sect.id] = true
			}
			body, err := p.parseSectionContent(st, lvl, depth)
			if err != nil {
				return nil, err
			}
			sect.blocks = body
			blocks = append(blocks, sect)
			continue
		}
		b, err := p.parseBlock(st, meta, depth)
		if err != nil {
			return nil, err
		}
		if b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

// applyMeta attaches collected metadata to a block
// and resolves its substitution set.
// The set is fixed here, before any of the block's content is inline parsed.
func (p *parser) applyMeta(b *Block, meta *blockMeta) {
	b.attrs = meta.attrs
	if meta.id != "" {
		b.id = meta.id
	} else if id := meta.attrs.ID(); id != "" {
		b.id = id
	}
	if meta.title != "" && b.kind != SectionKind {
		b.title = p.parseInlines(meta.title, SubsNormal, b.loc, false)
	}
	if b.style == "" {
		b.style = meta.attrs.Positional(1)
	}
	if spec, ok := meta.attrs.Named("subs"); ok {
		subs, ok := parseSubsOverride(b.subs, spec)
		if !ok {
			p.diags.warnf(b.loc, "unrecognized substitution name in subs=%q", spec)
		}
		b.subs = subs
	}
}
