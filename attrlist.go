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

// An AttrList is the parsed form of a bracketed attribute list:
// comma-separated positional and name=value entries,
// with the block-style shorthand
// (#id, .role, %option) recognized in the first positional entry.
type AttrList struct {
	positional []string
	named      []NamedAttr
	id         string
	roles      []string
	options    []string
}

// A NamedAttr is one name=value entry of an [AttrList].
type NamedAttr struct {
	Name  string
	Value string
}

// Positional returns the i'th positional attribute (1-based),
// or the empty string if absent.
func (l *AttrList) Positional(i int) string {
	if l == nil || i < 1 || i > len(l.positional) {
		return ""
	}
	return l.positional[i-1]
}

// PositionalCount returns the number of positional attributes.
func (l *AttrList) PositionalCount() int {
	if l == nil {
		return 0
	}
	return len(l.positional)
}

// Named returns the value of the named attribute.
func (l *AttrList) Named(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	for _, a := range l.named {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// NamedAttrs returns the name=value entries in source order.
func (l *AttrList) NamedAttrs() []NamedAttr {
	if l == nil {
		return nil
	}
	return l.named
}

// ID returns the id set via the #id shorthand or the id attribute.
func (l *AttrList) ID() string {
	if l == nil {
		return ""
	}
	return l.id
}

// Roles returns roles set via the .role shorthand or the role attribute.
func (l *AttrList) Roles() []string {
	if l == nil {
		return nil
	}
	return l.roles
}

// HasOption reports whether the option was set
// via the %name shorthand or the options attribute.
func (l *AttrList) HasOption(name string) bool {
	if l == nil {
		return false
	}
	for _, o := range l.options {
		if o == name {
			return true
		}
	}
	return false
}

// parseAttrList parses the text between the brackets of an attribute list.
func parseAttrList(s string) *AttrList {
	l := new(AttrList)
	for i, entry := range splitAttrEntries(s) {
		name, value, named := splitNamedAttr(entry)
		if !named {
			value := unquoteAttr(strings.TrimSpace(entry))
			if i == 0 {
				value = l.parseShorthand(value)
			}
			l.positional = append(l.positional, value)
			continue
		}
		switch name {
		case "id":
			l.id = value
		case "role":
			l.roles = append(l.roles, strings.Fields(value)...)
		case "options", "opts":
			for _, o := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
				l.options = append(l.options, o)
			}
		default:
			l.named = append(l.named, NamedAttr{Name: name, Value: value})
		}
	}
	return l
}

// splitAttrEntries splits on commas,
// honoring double- and single-quoted values.
func splitAttrEntries(s string) []string {
	var entries []string
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			entries = append(entries, s[start:i])
			start = i + 1
		}
	}
	entries = append(entries, s[start:])
	if len(entries) == 1 && strings.TrimSpace(entries[0]) == "" {
		return nil
	}
	return entries
}

func splitNamedAttr(entry string) (name, value string, ok bool) {
	eq := strings.IndexByte(entry, '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(entry[:eq])
	if name == "" || strings.ContainsAny(name, "\"' ") {
		return "", "", false
	}
	return name, unquoteAttr(strings.TrimSpace(entry[eq+1:])), true
}

func unquoteAttr(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		inner := s[1 : len(s)-1]
		return strings.ReplaceAll(inner, `\`+s[:1], s[:1])
	}
	return s
}

// parseShorthand strips #id, .role, and %option markers
// from the first positional attribute and returns the bare style.
func (l *AttrList) parseShorthand(s string) string {
	cut := len(s)
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '#':
			l.id = s[i+1 : cut]
			cut = i
		case '.':
			l.roles = append([]string{s[i+1 : cut]}, l.roles...)
			cut = i
		case '%':
			l.options = append([]string{s[i+1 : cut]}, l.options...)
			cut = i
		}
	}
	return s[:cut]
}

// isAttrListLine recognizes a block attribute line: "[...]" and nothing else.
// Anchor lines ("[[id]]") are excluded.
func isAttrListLine(text string) (inner string, ok bool) {
	if len(text) < 2 || text[0] != '[' || strings.HasPrefix(text, "[[") {
		return "", false
	}
	text = strings.TrimRight(text, " \t")
	if text[len(text)-1] != ']' {
		return "", false
	}
	inner = text[1 : len(text)-1]
	if strings.ContainsAny(inner, "]") {
		return "", false
	}
	return inner, true
}

// isAnchorLine recognizes a block anchor line: "[[id]]" or "[[id,reftext]]".
func isAnchorLine(text string) (id string, ok bool) {
	text = strings.TrimRight(text, " \t")
	if !strings.HasPrefix(text, "[[") || !strings.HasSuffix(text, "]]") || len(text) < 5 {
		return "", false
	}
	inner := text[2 : len(text)-2]
	if i := strings.IndexByte(inner, ','); i >= 0 {
		inner = inner[:i]
	}
	if inner == "" || strings.ContainsAny(inner, "[] \t") {
		return "", false
	}
	return inner, true
}
