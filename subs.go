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

// A Substitution is one transformation of the inline substitution pipeline.
// The pipeline applies substitutions in the declaration order below;
// the order is fixed and significant
// (attribute references expand before quote parsing,
// so an attribute value may introduce formatting markers).
type Substitution uint8

const (
	SubSpecialChars Substitution = 1 << iota
	SubQuotes
	SubAttributes
	SubReplacements
	SubMacros
	SubPostReplacements
)

// A SubstitutionSet is the set of substitutions applied to a block's content.
// Application order is always the canonical [Substitution] order,
// regardless of how the set was spelled.
type SubstitutionSet uint8

const (
	SubsNone     SubstitutionSet = 0
	SubsVerbatim                 = SubstitutionSet(SubSpecialChars)
	SubsNormal                   = SubstitutionSet(SubSpecialChars | SubQuotes | SubAttributes |
		SubReplacements | SubMacros | SubPostReplacements)
)

// Has reports whether the set contains the given substitution.
func (s SubstitutionSet) Has(sub Substitution) bool {
	return s&SubstitutionSet(sub) != 0
}

func (s SubstitutionSet) String() string {
	if s == SubsNone {
		return "none"
	}
	var names []string
	for _, e := range subNames {
		if s.Has(e.sub) {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, ",")
}

var subNames = []struct {
	name string
	sub  Substitution
}{
	{"specialchars", SubSpecialChars},
	{"quotes", SubQuotes},
	{"attributes", SubAttributes},
	{"replacements", SubReplacements},
	{"macros", SubMacros},
	{"post_replacements", SubPostReplacements},
}

// defaultSubs returns the substitution set implied by a block's kind.
func defaultSubs(kind BlockKind) SubstitutionSet {
	switch kind {
	case ListingKind, LiteralKind:
		return SubsVerbatim
	case PassthroughKind, CommentKind:
		return SubsNone
	default:
		return SubsNormal
	}
}

// parseSubsOverride applies a subs= attribute value to a base set.
// Entries prefixed with + (append) or - (remove), or suffixed with +,
// modify the base set incrementally;
// bare names and the keywords none/normal/verbatim replace it.
// ok is false if an entry was not recognized;
// the set built from the recognized entries is still returned.
func parseSubsOverride(base SubstitutionSet, spec string) (result SubstitutionSet, ok bool) {
	ok = true
	result = base
	replaced := false
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		mode := byte(0)
		switch {
		case entry[0] == '+' || entry[0] == '-':
			mode = entry[0]
			entry = entry[1:]
		case strings.HasSuffix(entry, "+"):
			mode = '+'
			entry = entry[:len(entry)-1]
		}
		var value SubstitutionSet
		switch entry {
		case "none":
			value = SubsNone
		case "normal":
			value = SubsNormal
		case "verbatim":
			value = SubsVerbatim
		default:
			found := false
			for _, e := range subNames {
				if e.name == entry {
					value = SubstitutionSet(e.sub)
					found = true
					break
				}
			}
			if !found {
				ok = false
				continue
			}
		}
		switch mode {
		case '+':
			result |= value
		case '-':
			result &^= value
		default:
			if !replaced {
				result = value
				replaced = true
			} else {
				result |= value
			}
		}
	}
	return result, ok
}

// replacementEntry is one character replacement applied
// by the [SubReplacements] pass.
type replacementEntry struct {
	seq  string
	text string
	// bounded requires a word character or space on both sides
	// of the sequence (the em dash rule).
	bounded bool
}

var replacementTable = []replacementEntry{
	{seq: "(C)", text: "©"},
	{seq: "(R)", text: "®"},
	{seq: "(TM)", text: "™"},
	{seq: "...", text: "…"},
	{seq: "->", text: "→"},
	{seq: "=>", text: "⇒"},
	{seq: "<-", text: "←"},
	{seq: "<=", text: "⇐"},
	{seq: "--", text: "—", bounded: true},
}

// matchReplacement attempts a character replacement at s[i].
// It returns the replacement text and the length of the matched sequence,
// or a zero length if nothing matches.
func matchReplacement(s string, i int) (text string, n int) {
	for _, e := range replacementTable {
		if !strings.HasPrefix(s[i:], e.seq) {
			continue
		}
		end := i + len(e.seq)
		if e.bounded {
			if i > 0 && s[i-1] == e.seq[0] {
				continue
			}
			if end < len(s) && s[end] == e.seq[0] {
				continue
			}
		}
		// Arrows and dashes must not glue to a longer run of the same
		// punctuation ("-->" stays literal text).
		if end < len(s) && (e.seq == "->" || e.seq == "<-") && s[end] == '>' {
			continue
		}
		return e.text, len(e.seq)
	}
	// Typographic apostrophe between word characters.
	if s[i] == '\'' && i > 0 && i+1 < len(s) && isWordByte(s[i-1]) && isWordByte(s[i+1]) {
		return "’", 1
	}
	return "", 0
}

// matchCurlyQuote recognizes the paired curved-quote digraphs
// ("`word`" and '`word`') and returns the replacement character.
func matchCurlyQuote(s string, i int) (text string, n int) {
	if i+2 > len(s) {
		return "", 0
	}
	switch s[i : i+2] {
	case "\"`":
		return "“", 2
	case "`\"":
		return "”", 2
	case "'`":
		return "‘", 2
	case "`'":
		return "’", 2
	}
	return "", 0
}

func isWordByte(b byte) bool {
	return b == '_' ||
		'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		b >= 0x80 // treat multibyte runes as word characters
}
