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
	"errors"
	"fmt"
	"strings"
	"testing"
)

// mapResolver resolves include targets from an in-memory map.
type mapResolver map[string]string

func (m mapResolver) Resolve(target string) ([]byte, error) {
	text, ok := m[target]
	if !ok {
		return nil, fmt.Errorf("%s not found", target)
	}
	return []byte(text), nil
}

func paragraphTexts(t *testing.T, doc *Document) []string {
	t.Helper()
	var texts []string
	for _, b := range doc.Blocks() {
		if b.Kind() == ParagraphKind {
			texts = append(texts, inlineText(b.Inlines()))
		}
	}
	return texts
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "IfdefSet",
			source: ":flag:\n\nifdef::flag[]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
		{
			name:   "IfdefUnset",
			source: "ifdef::flag[]\nhidden\nendif::[]\n\nafter\n",
			want:   []string{"after"},
		},
		{
			name:   "IfndefUnset",
			source: "ifndef::flag[]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
		{
			name:   "SingleLineForm",
			source: ":flag:\n\nifdef::flag[inline content]\n",
			want:   []string{"inline content"},
		},
		{
			name:   "SingleLineFormSkipped",
			source: "ifdef::flag[inline content]\n\nafter\n",
			want:   []string{"after"},
		},
		{
			name:   "AnyOfList",
			source: ":b:\n\nifdef::a,b[]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
		{
			name:   "AllOfList",
			source: ":a:\n\nifdef::a+b[]\nhidden\nendif::[]\n\nafter\n",
			want:   []string{"after"},
		},
		{
			name:   "IfevalNumeric",
			source: ":count: 3\n\nifeval::[{count} > 2]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
		{
			name:   "IfevalString",
			source: ":env: prod\n\nifeval::[\"{env}\" == \"prod\"]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
		{
			name:   "IfevalFalse",
			source: ":count: 1\n\nifeval::[{count} >= 2]\nhidden\nendif::[]\n\nafter\n",
			want:   []string{"after"},
		},
		{
			name:   "Nested",
			source: ":outer:\n\nifdef::outer[]\nifdef::inner[]\nhidden\nendif::[]\nvisible\nendif::[]\n",
			want:   []string{"visible"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, diags := mustParse(t, test.source, nil)
			if len(diags) > 0 {
				t.Errorf("diagnostics: %v", diags)
			}
			got := paragraphTexts(t, doc)
			if len(got) != len(test.want) {
				t.Fatalf("paragraphs = %q; want %q", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Errorf("paragraph %d = %q; want %q", i, got[i], test.want[i])
				}
			}
		})
	}
}

func TestConditionalDiagnostics(t *testing.T) {
	t.Run("UnmatchedEndif", func(t *testing.T) {
		_, diags := mustParse(t, "endif::[]\n\ntext\n", nil)
		if !hasDiagnostic(diags, "without matching") {
			t.Errorf("diagnostics = %v; want unmatched endif warning", diags)
		}
	})
	t.Run("UnterminatedConditional", func(t *testing.T) {
		_, diags := mustParse(t, "ifdef::flag[]\nhidden\n", nil)
		if !hasDiagnostic(diags, "unterminated conditional") {
			t.Errorf("diagnostics = %v; want unterminated conditional warning", diags)
		}
	})
	t.Run("MalformedIfeval", func(t *testing.T) {
		_, diags := mustParse(t, "ifeval::[no operator here]\nhidden\nendif::[]\n\nafter\n", nil)
		if !hasDiagnostic(diags, "no comparison operator") {
			t.Errorf("diagnostics = %v; want malformed expression warning", diags)
		}
	})
}

func TestInclude(t *testing.T) {
	resolver := mapResolver{
		"chapter.adoc": "included text\n",
		"outer.adoc":   "outer start\n\ninclude::inner.adoc[]\n",
		"inner.adoc":   "inner text\n",
	}

	t.Run("Simple", func(t *testing.T) {
		doc, diags := mustParse(t, "before\n\ninclude::chapter.adoc[]\n\nafter\n", &Options{Resolver: resolver})
		if len(diags) > 0 {
			t.Errorf("diagnostics: %v", diags)
		}
		want := []string{"before", "included text", "after"}
		got := paragraphTexts(t, doc)
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("paragraphs = %q; want %q", got, want)
		}
	})

	t.Run("Nested", func(t *testing.T) {
		doc, _ := mustParse(t, "include::outer.adoc[]\n", &Options{Resolver: resolver})
		want := []string{"outer start", "inner text"}
		got := paragraphTexts(t, doc)
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("paragraphs = %q; want %q", got, want)
		}
	})

	t.Run("Provenance", func(t *testing.T) {
		doc, _ := mustParse(t, "include::chapter.adoc[]\n", &Options{
			SourceName: "main.adoc",
			Resolver:   resolver,
		})
		para := doc.Blocks()[0]
		if got := para.Location().File; got != "chapter.adoc" {
			t.Errorf("included paragraph file = %q; want %q", got, "chapter.adoc")
		}
	})

	t.Run("MissingDegrades", func(t *testing.T) {
		doc, diags := mustParse(t, "include::nope.adoc[]\n\nafter\n", &Options{Resolver: resolver})
		if !hasDiagnostic(diags, "unresolved include") {
			t.Errorf("diagnostics = %v; want unresolved include warning", diags)
		}
		blocks := doc.Blocks()
		if len(blocks) != 2 || blocks[0].Kind() != IncludeResidueKind {
			t.Fatalf("blocks = %v; want [IncludeResidue Paragraph]", blockKinds(blocks))
		}
		if got := blocks[0].Target(); got != "nope.adoc" {
			t.Errorf("residue target = %q; want %q", got, "nope.adoc")
		}
	})

	t.Run("MissingStrict", func(t *testing.T) {
		_, _, err := Parse([]byte("include::nope.adoc[]\n"), &Options{Resolver: resolver, Strict: true})
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Kind != ResolutionFailed {
			t.Fatalf("Parse = %v; want ResolutionFailed", err)
		}
	})

	t.Run("NoResolver", func(t *testing.T) {
		doc, diags := mustParse(t, "include::chapter.adoc[]\n", nil)
		if !hasDiagnostic(diags, "no include resolver") {
			t.Errorf("diagnostics = %v; want no-resolver warning", diags)
		}
		if got := blockKinds(doc.Blocks()); len(got) != 1 || got[0] != IncludeResidueKind {
			t.Errorf("blocks = %v; want [IncludeResidue]", got)
		}
	})

	t.Run("DepthExceeded", func(t *testing.T) {
		loop := mapResolver{"self.adoc": "include::self.adoc[]\n"}
		_, _, err := Parse([]byte("include::self.adoc[]\n"), &Options{Resolver: loop})
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Kind != IncludeDepthExceeded {
			t.Fatalf("Parse = %v; want IncludeDepthExceeded", err)
		}
	})

	t.Run("InactiveBranchSkipsInclude", func(t *testing.T) {
		calls := 0
		counting := resolverFunc(func(target string) ([]byte, error) {
			calls++
			return nil, errors.New("should not be called")
		})
		_, diags := mustParse(t, "ifdef::flag[]\ninclude::x.adoc[]\nendif::[]\n\nafter\n", &Options{Resolver: counting})
		if calls != 0 {
			t.Errorf("resolver called %d times inside a false branch; want 0", calls)
		}
		if len(diags) > 0 {
			t.Errorf("diagnostics: %v", diags)
		}
	})
}

type resolverFunc func(string) ([]byte, error)

func (f resolverFunc) Resolve(target string) ([]byte, error) { return f(target) }

func TestLineContinuation(t *testing.T) {
	doc, _ := mustParse(t, "first part \\\nsecond part\n", nil)
	got := paragraphTexts(t, doc)
	if len(got) != 1 || got[0] != "first part second part" {
		t.Errorf("paragraphs = %q; want [%q]", got, "first part second part")
	}
}

func TestSourceNormalization(t *testing.T) {
	doc, _ := mustParse(t, "crlf line\r\nplain line\n", nil)
	got := paragraphTexts(t, doc)
	if len(got) != 1 || got[0] != "crlf line\nplain line" {
		t.Errorf("paragraphs = %q; want CRLF normalized away", got)
	}
}
