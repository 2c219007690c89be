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

// listMarker describes a recognized list item marker.
type listMarker struct {
	family ListType
	marker string // the marker text, e.g. "*", "**", ".", "-"
	term   string // description list term
	text   string // principal text on the marker line
}

// depth orders markers within one family:
// a longer marker opens a nested list.
func (m listMarker) depth() int {
	switch {
	case m.family == CalloutList:
		return 1
	case m.family == OrderedList && !strings.HasPrefix(m.marker, "."):
		// Explicit numbering ("1.") always sits at depth 1.
		return 1
	}
	return len(m.marker)
}

// parseListMarker recognizes a list item line.
// Markers may be indented; indentation does not affect nesting.
func parseListMarker(text string) (listMarker, bool) {
	s := strings.TrimLeft(text, " \t")
	if s == "" {
		return listMarker{}, false
	}
	switch s[0] {
	case '*', '-':
		n := 1
		if s[0] == '*' {
			for n < len(s) && s[n] == '*' {
				n++
			}
		}
		if n < len(s) && s[n] == ' ' {
			return listMarker{
				family: UnorderedList,
				marker: s[:n],
				text:   strings.TrimLeft(s[n:], " "),
			}, true
		}
	case '.':
		n := 1
		for n < len(s) && s[n] == '.' {
			n++
		}
		if n < len(s) && s[n] == ' ' {
			return listMarker{
				family: OrderedList,
				marker: s[:n],
				text:   strings.TrimLeft(s[n:], " "),
			}, true
		}
	}
	if s[0] == '<' {
		n := 1
		for n < len(s) && '0' <= s[n] && s[n] <= '9' {
			n++
		}
		if n > 1 && n < len(s) && s[n] == '>' && n+1 < len(s) && s[n+1] == ' ' {
			return listMarker{
				family: CalloutList,
				marker: s[:n+1],
				text:   strings.TrimLeft(s[n+2:], " "),
			}, true
		}
	}
	if '0' <= s[0] && s[0] <= '9' {
		n := 1
		for n < len(s) && '0' <= s[n] && s[n] <= '9' {
			n++
		}
		if n+1 < len(s) && s[n] == '.' && s[n+1] == ' ' {
			return listMarker{
				family: OrderedList,
				marker: s[:n+1],
				text:   strings.TrimLeft(s[n+1:], " "),
			}, true
		}
	}
	return parseDescriptionMarker(s)
}

// parseDescriptionMarker recognizes "term:: text" lines.
// The separator must be followed by a space or end the line.
func parseDescriptionMarker(s string) (listMarker, bool) {
	i := strings.Index(s, "::")
	if i <= 0 {
		return listMarker{}, false
	}
	n := i + 2
	for n < len(s) && s[n] == ':' {
		n++
	}
	if n < len(s) && s[n] != ' ' {
		return listMarker{}, false
	}
	term := strings.TrimSpace(s[:i])
	if term == "" {
		return listMarker{}, false
	}
	return listMarker{
		family: DescriptionList,
		marker: s[i:n],
		term:   term,
		text:   strings.TrimLeft(s[n:], " "),
	}, true
}

// splitCallouts strips trailing callout markers ("<1>") from a verbatim line
// and returns the remaining text plus the callout numbers in source order.
func splitCallouts(line string) (string, []string) {
	var nums []string
	for {
		t := strings.TrimRight(line, " \t")
		if !strings.HasSuffix(t, ">") {
			break
		}
		open := strings.LastIndexByte(t, '<')
		if open < 0 {
			break
		}
		inner := t[open+1 : len(t)-1]
		if inner == "" || !isDigits(inner) {
			break
		}
		nums = append(nums, inner)
		line = t[:open]
	}
	if len(nums) == 0 {
		return line, nil
	}
	for i, j := 0, len(nums)-1; i < j; i, j = i+1, j-1 {
		nums[i], nums[j] = nums[j], nums[i]
	}
	return strings.TrimRight(line, " \t"), nums
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseList parses a run of list items sharing the first item's
// family and marker depth. Deeper markers of the same family nest;
// a different family or a shallower marker ends the list.
func (p *parser) parseList(st lineStream, meta *blockMeta, depth int) (*Block, error) {
	first, _ := st.peek()
	head, _ := parseListMarker(first.Text)
	list := &Block{
		kind:     ListKind,
		loc:      meta.loc,
		listType: head.family,
		marker:   head.marker,
		subs:     SubsNone,
	}
	p.applyMeta(list, meta)

	for {
		line, ok := st.peek()
		if !ok {
			break
		}
		if isBlankLine(line.Text) {
			// Blank lines separate items without ending the list,
			// unless what follows is not a compatible item.
			if p.listContinues(st, head) {
				continue
			}
			if p.attachIndented(st, list, depth) {
				continue
			}
			break
		}
		m, isItem := parseListMarker(line.Text)
		if !isItem || m.family != head.family {
			break
		}
		if m.depth() > head.depth() {
			sub, err := p.parseList(st, &blockMeta{loc: Location{File: line.File, Line: line.Number}}, depth+1)
			if err != nil {
				return nil, err
			}
			if len(list.blocks) == 0 {
				list.blocks = append(list.blocks, &Block{kind: ListItemKind, loc: sub.loc, subs: SubsNone})
			}
			last := list.blocks[len(list.blocks)-1]
			last.blocks = append(last.blocks, sub)
			continue
		}
		if m.depth() < head.depth() {
			break
		}
		item, err := p.parseListItem(st, m, depth)
		if err != nil {
			return nil, err
		}
		list.blocks = append(list.blocks, item)
	}
	return list, nil
}

// attachIndented handles indented content after a blank line:
// it attaches to the last item as a nested literal block
// instead of ending the list.
func (p *parser) attachIndented(st lineStream, list *Block, depth int) bool {
	line, ok := st.peek()
	if !ok || len(list.blocks) == 0 {
		return false
	}
	if line.Text[0] != ' ' && line.Text[0] != '\t' {
		return false
	}
	if _, isMarker := parseListMarker(line.Text); isMarker || paragraphBreak(line) {
		return false
	}
	meta := &blockMeta{loc: Location{File: line.File, Line: line.Number}}
	b, err := p.parseParagraph(st, meta)
	if err != nil || b == nil {
		return false
	}
	last := list.blocks[len(list.blocks)-1]
	last.blocks = append(last.blocks, b)
	return true
}

// listContinues consumes blank lines and reports whether the list goes on
// with an item at or below the current depth or a continuation.
func (p *parser) listContinues(st lineStream, head listMarker) bool {
	for {
		line, ok := st.peek()
		if !ok {
			return false
		}
		if !isBlankLine(line.Text) {
			m, isItem := parseListMarker(line.Text)
			return isItem && m.family == head.family && m.depth() >= head.depth()
		}
		st.next()
	}
}

// parseListItem parses one item: the marker line, wrapped principal lines,
// and any "+" continuation blocks.
func (p *parser) parseListItem(st lineStream, m listMarker, depth int) (*Block, error) {
	line, _ := st.next()
	loc := Location{File: line.File, Line: line.Number}
	item := &Block{kind: ListItemKind, loc: loc, subs: SubsNormal}
	if m.family == DescriptionList {
		item.term = p.parseInlines(m.term, SubsNormal, loc, false)
	}

	principal := []string{}
	if m.text != "" {
		principal = append(principal, m.text)
	}
	for {
		next, ok := st.peek()
		if !ok || isBlankLine(next.Text) || paragraphBreak(next) ||
			strings.TrimRight(next.Text, " \t") == "+" {
			break
		}
		if _, isMarker := parseListMarker(next.Text); isMarker {
			break
		}
		st.next()
		principal = append(principal, next.Text)
	}
	if len(principal) > 0 {
		item.inlines = p.parseInlines(strings.Join(principal, "\n"), SubsNormal, loc, false)
	}

	// "+" on a line by itself attaches the following block to this item.
	for {
		next, ok := st.peek()
		if !ok || strings.TrimRight(next.Text, " \t") != "+" {
			break
		}
		st.next()
		meta, ok := p.collectMeta(st)
		if !ok {
			break
		}
		b, err := p.parseBlock(st, meta, depth+1)
		if err != nil {
			return nil, err
		}
		if b != nil {
			item.blocks = append(item.blocks, b)
		}
	}
	return item, nil
}
