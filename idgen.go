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
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// generateID derives a section ID from the section's title text,
// honoring the idprefix and idseparator attributes,
// and makes it unique within the document by suffixing a counter.
func (p *parser) generateID(title string) string {
	prefix, _ := p.table.Get("idprefix")
	sepAttr, sepSet := p.table.Get("idseparator")
	sep := "_"
	if sepSet {
		sep = sepAttr
	}

	if folded, _, err := transform.String(accentFolder, title); err == nil {
		title = folded
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		if r >= '0' && r <= '9' || unicode.IsLetter(r) {
			if pendingSep && sb.Len() > len(prefix) {
				sb.WriteString(sep)
			}
			pendingSep = false
			sb.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	id := sb.String()
	if id == prefix {
		id = prefix + "section"
	}

	unique := id
	for n := 2; p.ids[unique]; n++ {
		unique = id + sep + strconv.Itoa(n)
	}
	p.ids[unique] = true
	return unique
}
