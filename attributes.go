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

// An AttributeTable is the per-parse store of document attributes.
// It is seeded from built-ins and caller overrides,
// mutated by attribute entry lines in document order,
// and consulted by substitution and conditional evaluation.
//
// A table is scoped to one parse and must not be shared
// between concurrent parses.
type AttributeTable struct {
	entries map[string]attrEntry
}

type attrEntry struct {
	value  string
	unset  bool
	locked bool
}

// NewAttributeTable returns a table seeded with the built-in attributes.
func NewAttributeTable() *AttributeTable {
	t := &AttributeTable{entries: make(map[string]attrEntry)}
	for name, value := range builtinAttributes {
		t.entries[name] = attrEntry{value: value}
	}
	return t
}

var builtinAttributes = map[string]string{
	"doctype":           "article",
	"idprefix":          "_",
	"idseparator":       "_",
	"note-caption":      "Note",
	"tip-caption":       "Tip",
	"important-caption": "Important",
	"warning-caption":   "Warning",
	"caution-caption":   "Caution",
	"empty":             "",
	"sp":                " ",
	"nbsp":              " ",
	"zwsp":              "​",
	"vbar":              "|",
	"plus":              "+",
	"startsb":           "[",
	"endsb":             "]",
	"caret":             "^",
	"tilde":             "~",
	"backslash":         `\`,
	"backtick":          "`",
	"cpp":               "C++",
}

func normalizeAttrName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the value of the named attribute.
// The second return value is false if the attribute
// is absent or has been explicitly unset.
func (t *AttributeTable) Get(name string) (string, bool) {
	e, ok := t.entries[normalizeAttrName(name)]
	if !ok || e.unset {
		return "", false
	}
	return e.value, true
}

// IsSet reports whether the named attribute currently has a value.
func (t *AttributeTable) IsSet(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Set assigns a soft (document-authored) value to the named attribute.
// It reports whether the assignment took effect:
// a locked entry silently rejects the write.
func (t *AttributeTable) Set(name, value string) bool {
	name = normalizeAttrName(name)
	if e, ok := t.entries[name]; ok && e.locked {
		return false
	}
	t.entries[name] = attrEntry{value: value}
	return true
}

// SetLocked assigns a value that in-document entries cannot override.
// Locked entries model caller-supplied configuration,
// which takes precedence over document-authored attributes.
func (t *AttributeTable) SetLocked(name, value string) {
	t.entries[normalizeAttrName(name)] = attrEntry{value: value, locked: true}
}

// Unset marks the named attribute as explicitly unset.
// It reports whether the operation took effect.
func (t *AttributeTable) Unset(name string) bool {
	name = normalizeAttrName(name)
	if e, ok := t.entries[name]; ok && e.locked {
		return false
	}
	t.entries[name] = attrEntry{unset: true}
	return true
}

// Names returns the set of attribute names that currently have a value.
func (t *AttributeTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name, e := range t.entries {
		if !e.unset {
			names = append(names, name)
		}
	}
	return names
}

// expandReferences replaces {name} references in s with attribute values.
// Unresolved references and references preceded by a backslash
// are left intact for the inline parser to deal with.
// Expansion is single pass: references inside attribute values
// are not expanded again here
// (entry values are expanded when the entry is defined).
func (t *AttributeTable) expandReferences(s string) string {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	plain := 0
	for i := open; i < len(s); {
		if s[i] != '{' {
			i++
			continue
		}
		name, end := scanAttrRef(s, i)
		if end < 0 {
			i++
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			// Escaped reference. Leave the backslash for the scanner.
			i = end
			continue
		}
		value, ok := t.Get(name)
		if !ok {
			i = end
			continue
		}
		sb.WriteString(s[plain:i])
		sb.WriteString(value)
		plain = end
		i = end
	}
	sb.WriteString(s[plain:])
	return sb.String()
}

// scanAttrRef matches an attribute reference {name} starting at s[i].
// It returns the name and the index just past the closing brace,
// or a negative end if s[i:] does not start a reference.
func scanAttrRef(s string, i int) (name string, end int) {
	if i >= len(s) || s[i] != '{' {
		return "", -1
	}
	j := i + 1
	for j < len(s) && isAttrNameByte(s[j]) {
		j++
	}
	if j == i+1 || j >= len(s) || s[j] != '}' {
		return "", -1
	}
	return s[i+1 : j], j + 1
}

func isAttrNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9'
}

// parseAttributeEntry recognizes an attribute entry line
// (":name: value", ":name!:" or ":!name:" to unset).
// The returned value has not had references expanded.
func parseAttributeEntry(text string) (name, value string, unset, ok bool) {
	if !strings.HasPrefix(text, ":") {
		return "", "", false, false
	}
	rest := text[1:]
	if strings.HasPrefix(rest, "!") {
		unset = true
		rest = rest[1:]
	}
	i := 0
	for i < len(rest) && isAttrNameByte(rest[i]) {
		i++
	}
	if i == 0 {
		return "", "", false, false
	}
	name = rest[:i]
	rest = rest[i:]
	if strings.HasPrefix(rest, "!") {
		unset = true
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, ":") {
		return "", "", false, false
	}
	rest = rest[1:]
	if rest != "" && !(rest[0] == ' ' || rest[0] == '\t') {
		return "", "", false, false
	}
	value = strings.TrimSpace(rest)
	if unset && value != "" {
		return "", "", false, false
	}
	return name, value, unset, true
}
