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
	"strconv"
	"strings"
)

const columnStyles = "dalmhse"

// parseColSpecs parses a cols attribute ("1,2a,3*" and the like).
// Each entry is an optional repeat count ("3*"),
// an optional relative width, and an optional style letter.
func parseColSpecs(s string) []ColumnSpec {
	var cols []ColumnSpec
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		repeat := 1
		if star := strings.IndexByte(entry, '*'); star > 0 {
			if n, err := strconv.Atoi(entry[:star]); err == nil && n > 0 {
				repeat = n
				entry = entry[star+1:]
			}
		}
		spec := ColumnSpec{Style: 'd', Width: 1}
		i := 0
		for i < len(entry) && '0' <= entry[i] && entry[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(entry[:i]); err == nil && n > 0 {
				spec.Width = n
			}
		}
		if i < len(entry) && strings.IndexByte(columnStyles, entry[i]) >= 0 {
			spec.Style = entry[i]
		}
		for ; repeat > 0; repeat-- {
			cols = append(cols, spec)
		}
	}
	return cols
}

// rawCell is a cell before content parsing:
// its style override (0 for none) and accumulated source text.
type rawCell struct {
	style byte
	text  string
	loc   Location
}

// isCellSpec reports whether s is a cell spec prefix:
// a style letter optionally preceded by a repeat or span count.
func isCellSpec(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	if i > 0 {
		if i >= len(s) || (s[i] != '*' && s[i] != '+') {
			return false
		}
		i++
	}
	if i == len(s) {
		return i > 0
	}
	return i+1 == len(s) && strings.IndexByte(columnStyles, s[i]) >= 0
}

func cellSpecStyle(s string) byte {
	if s == "" {
		return 0
	}
	c := s[len(s)-1]
	if strings.IndexByte(columnStyles, c) >= 0 {
		return c
	}
	return 0
}

// findSep returns the index of the first separator at or after start
// that is not escaped with a backslash.
func findSep(s, sep string, start int) int {
	for i := start; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep && !isEndEscaped(s[:i]) {
			return i
		}
	}
	return -1
}

func unescapeSep(s, sep string) string {
	return strings.ReplaceAll(s, `\`+sep, sep)
}

// startsRow reports whether a table line begins a new row:
// it must open with a separator, optionally preceded by a cell spec.
func startsRow(text, sep string) bool {
	i := findSep(text, sep, 0)
	if i < 0 {
		return false
	}
	return i == 0 || isCellSpec(text[:i])
}

// splitCells splits one row line into raw cells.
// Text trailing a separator up to the next separator belongs to one cell;
// a spec token directly before a separator styles the following cell.
func splitCells(text, sep string, loc Location) []rawCell {
	var cells []rawCell
	i := findSep(text, sep, 0)
	pending := cellSpecStyle(text[:i])
	for i >= 0 {
		start := i + len(sep)
		j := findSep(text, sep, start)
		seg := text
		if j >= 0 {
			seg = text[start:j]
		} else {
			seg = text[start:]
		}
		style := pending
		pending = 0
		// A trailing "a"-style token belongs to the next cell.
		// It must be set off by whitespace: a cell whose whole body
		// happens to be a style letter is ordinary content.
		if j >= 0 {
			if sp := strings.LastIndexByte(seg, ' '); sp >= 0 && isCellSpec(strings.TrimLeft(seg[sp+1:], " ")) {
				pending = cellSpecStyle(seg[sp+1:])
				seg = seg[:sp+1]
			}
		}
		cells = append(cells, rawCell{
			style: style,
			text:  strings.TrimSpace(unescapeSep(seg, sep)),
			loc:   loc,
		})
		i = j
	}
	return cells
}

// parseTable parses a "|===" delimited table.
func (p *parser) parseTable(st lineStream, meta *blockMeta, depth int) (*Block, error) {
	opener, _ := st.next()
	loc := Location{File: opener.File, Line: opener.Number}

	sep := "|"
	if v, ok := meta.attrs.Named("separator"); ok && v != "" {
		sep = v
	}
	var cols []ColumnSpec
	if v, ok := meta.attrs.Named("cols"); ok {
		cols = parseColSpecs(v)
	}

	var body []Line
	terminated := false
	for {
		line, ok := st.next()
		if !ok {
			break
		}
		if strings.TrimRight(line.Text, " \t") == "|===" && !line.residue {
			terminated = true
			break
		}
		body = append(body, line)
	}
	if !terminated {
		p.diags.warnf(loc, "unterminated table: missing closing %q", "|===")
	}

	var rawRows [][]rawCell
	blankAfterFirst := false
	for _, line := range body {
		if isBlankLine(line.Text) {
			if len(rawRows) == 1 {
				blankAfterFirst = true
			}
			continue
		}
		lineLoc := Location{File: line.File, Line: line.Number}
		if startsRow(line.Text, sep) {
			rawRows = append(rawRows, splitCells(line.Text, sep, lineLoc))
			continue
		}
		// Continuation line: more content for the last cell.
		if len(rawRows) == 0 || len(rawRows[len(rawRows)-1]) == 0 {
			p.diags.warnf(lineLoc, "table line outside any cell: %q", line.Text)
			continue
		}
		row := rawRows[len(rawRows)-1]
		row[len(row)-1].text += "\n" + line.Text
	}

	if cols == nil && len(rawRows) > 0 {
		cols = make([]ColumnSpec, len(rawRows[0]))
		for i := range cols {
			cols[i] = ColumnSpec{Style: 'd', Width: 1}
		}
	}

	t := &Table{cols: cols}
	hasHeader := meta.attrs.HasOption("header") ||
		(!meta.attrs.HasOption("noheader") && blankAfterFirst && len(rawRows) > 1)
	for i, raw := range rawRows {
		if len(raw) != len(cols) {
			p.diags.warnf(raw[0].loc, "table row has %d cells, expected %d", len(raw), len(cols))
		}
		row := new(TableRow)
		for c := 0; c < len(cols); c++ {
			cell := rawCell{loc: loc}
			if c < len(raw) {
				cell = raw[c]
			}
			style := cols[c].Style
			if cell.style != 0 {
				style = cell.style
			}
			if i == 0 && hasHeader {
				style = 'h'
			}
			parsed, err := p.parseCell(cell, style, depth)
			if err != nil {
				return nil, err
			}
			row.cells = append(row.cells, parsed)
		}
		if i == 0 && hasHeader {
			t.header = row
		} else {
			t.rows = append(t.rows, row)
		}
	}

	b := &Block{kind: TableKind, loc: loc, subs: SubsNone, table: t}
	p.applyMeta(b, meta)
	return b, nil
}

// parseCell builds a cell from its raw text.
// AsciiDoc cells ('a') hold a nested block parse;
// literal cells ('l') keep their text as-is;
// all other styles hold inline content.
func (p *parser) parseCell(raw rawCell, style byte, depth int) (*TableCell, error) {
	cell := &TableCell{style: style}
	switch style {
	case 'a':
		lines := splitCellLines(raw)
		blocks, err := p.parseSectionContent(&sliceStream{lines: lines}, 0, depth+1)
		if err != nil {
			return nil, err
		}
		cell.blocks = blocks
	case 'l':
		if raw.text != "" {
			cell.inlines = []*Inline{{kind: TextKind, text: raw.text}}
		}
	default:
		if raw.text != "" {
			cell.inlines = p.parseInlines(raw.text, SubsNormal, raw.loc, false)
		}
	}
	return cell, nil
}

func splitCellLines(raw rawCell) []Line {
	texts := strings.Split(raw.text, "\n")
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Line{Text: t, File: raw.loc.File, Number: raw.loc.Line + i}
	}
	return lines
}
