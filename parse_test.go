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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, source string, opts *Options) (*Document, []Diagnostic) {
	t.Helper()
	doc, diags, err := Parse([]byte(source), opts)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return doc, diags
}

func hasDiagnostic(diags []Diagnostic, substr string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func blockKinds(blocks []*Block) []BlockKind {
	kinds := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind()
	}
	return kinds
}

func TestParseHeader(t *testing.T) {
	const source = "= Widget Manual\n" +
		"Jane Doe <jane@example.com>; A. Reviewer <rev@example.com>\n" +
		"v2.1, 2024-01-15: Second edition\n" +
		":toc: left\n" +
		"\n" +
		"Body paragraph.\n"
	doc, diags := mustParse(t, source, nil)
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	if !doc.HasHeader() {
		t.Fatal("HasHeader() = false; want true")
	}
	if got := inlineText(doc.Title()); got != "Widget Manual" {
		t.Errorf("title = %q; want %q", got, "Widget Manual")
	}
	wantAuthors := []Author{
		{Name: "Jane Doe", Email: "jane@example.com"},
		{Name: "A. Reviewer", Email: "rev@example.com"},
	}
	if diff := cmp.Diff(wantAuthors, doc.Authors()); diff != "" {
		t.Errorf("authors (-want +got):\n%s", diff)
	}
	rev, ok := doc.Revision()
	if !ok {
		t.Fatal("Revision() not present")
	}
	want := Revision{Number: "2.1", Date: "2024-01-15", Remark: "Second edition"}
	if diff := cmp.Diff(want, rev); diff != "" {
		t.Errorf("revision (-want +got):\n%s", diff)
	}
	if got, _ := doc.Attributes().Get("toc"); got != "left" {
		t.Errorf("attribute toc = %q; want %q", got, "left")
	}
	if got, _ := doc.Attributes().Get("author"); got != "Jane Doe" {
		t.Errorf("attribute author = %q; want %q", got, "Jane Doe")
	}
	if got := blockKinds(doc.Blocks()); len(got) != 1 || got[0] != ParagraphKind {
		t.Errorf("blocks = %v; want [Paragraph]", got)
	}
}

func TestParseNoHeader(t *testing.T) {
	doc, _ := mustParse(t, "Just a paragraph.\n", nil)
	if doc.HasHeader() {
		t.Error("HasHeader() = true; want false")
	}
	if got := blockKinds(doc.Blocks()); len(got) != 1 || got[0] != ParagraphKind {
		t.Errorf("blocks = %v; want [Paragraph]", got)
	}
}

func TestSections(t *testing.T) {
	const source = "== First\n\ntext\n\n=== Nested\n\nmore\n\n== Second\n"
	doc, diags := mustParse(t, source, nil)
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	blocks := doc.Blocks()
	if got := blockKinds(blocks); len(got) != 2 || got[0] != SectionKind || got[1] != SectionKind {
		t.Fatalf("top-level blocks = %v; want two sections", got)
	}
	first := blocks[0]
	if got := inlineText(first.Title()); got != "First" {
		t.Errorf("section title = %q; want %q", got, "First")
	}
	if first.Level() != 1 {
		t.Errorf("section level = %d; want 1", first.Level())
	}
	if got := blockKinds(first.Blocks()); len(got) != 2 || got[0] != ParagraphKind || got[1] != SectionKind {
		t.Fatalf("first section children = %v; want [Paragraph Section]", got)
	}
	nested := first.Blocks()[1]
	if nested.Level() != 2 {
		t.Errorf("nested level = %d; want 2", nested.Level())
	}
	if doc.Parent(nested) != first {
		t.Error("Parent(nested) != first section")
	}
	if doc.Parent(first) != nil {
		t.Error("Parent(first) != nil")
	}
}

func TestSectionLevelSkip(t *testing.T) {
	doc, diags := mustParse(t, "== Top\n\n==== Deep\n\ntext\n", nil)
	if !hasDiagnostic(diags, "skipped") {
		t.Errorf("diagnostics = %v; want a level-skip warning", diags)
	}
	top := doc.Blocks()[0]
	if got := blockKinds(top.Blocks()); len(got) != 1 || got[0] != SectionKind {
		t.Fatalf("children = %v; want the deep section kept", got)
	}
	if got := top.Blocks()[0].Level(); got != 3 {
		t.Errorf("deep section level = %d; want 3 (literal level preserved)", got)
	}
}

func TestSectionIDs(t *testing.T) {
	doc, _ := mustParse(t, "== Section One\n\n== Section One\n\n[[custom]]\n== Named\n", nil)
	blocks := doc.Blocks()
	if got := blocks[0].ID(); got != "_section_one" {
		t.Errorf("first ID = %q; want %q", got, "_section_one")
	}
	if got := blocks[1].ID(); got != "_section_one_2" {
		t.Errorf("duplicate ID = %q; want %q", got, "_section_one_2")
	}
	if got := blocks[2].ID(); got != "custom" {
		t.Errorf("anchored ID = %q; want %q", got, "custom")
	}
}

func TestGenerateIDFoldsAccents(t *testing.T) {
	doc, _ := mustParse(t, "== Résumé Café\n", nil)
	if got := doc.Blocks()[0].ID(); got != "_resume_cafe" {
		t.Errorf("ID = %q; want %q", got, "_resume_cafe")
	}
}

func TestCallerAttributesAreLocked(t *testing.T) {
	const source = ":version: 2\n\nValue is {version}.\n"
	doc, diags := mustParse(t, source, &Options{
		Attributes: map[string]string{"version": "1"},
	})
	if !hasDiagnostic(diags, "locked") {
		t.Errorf("diagnostics = %v; want a locked-attribute warning", diags)
	}
	para := doc.Blocks()[0]
	if got := inlineText(para.Inlines()); got != "Value is 1." {
		t.Errorf("paragraph text = %q; want %q", got, "Value is 1.")
	}
}

func TestAttributeEntryOrdering(t *testing.T) {
	// The second assignment only affects text after it.
	const source = ":name: first\n\n{name}\n\n:name: second\n\n{name}\n"
	doc, _ := mustParse(t, source, nil)
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks; want 2", len(blocks))
	}
	if got := inlineText(blocks[0].Inlines()); got != "first" {
		t.Errorf("first paragraph = %q; want %q", got, "first")
	}
	if got := inlineText(blocks[1].Inlines()); got != "second" {
		t.Errorf("second paragraph = %q; want %q", got, "second")
	}
}

func TestParseDeterminism(t *testing.T) {
	const source = "= Doc\n\n== A\n\n* one\n* two\n\n[source,go]\n----\nx := 1\n----\n\n|===\n|a |b\n|===\n"
	var outputs [][]byte
	for i := 0; i < 3; i++ {
		doc, _ := mustParse(t, source, nil)
		buf := new(bytes.Buffer)
		if err := RenderHTML(buf, doc); err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, buf.Bytes())
	}
	if !bytes.Equal(outputs[0], outputs[1]) || !bytes.Equal(outputs[1], outputs[2]) {
		t.Error("repeated parses rendered differently")
	}
}

func TestStructureTooDeep(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < maxBlockDepth+2; i++ {
		sb.WriteString("====\n")
	}
	sb.WriteString("bottom\n")
	_, _, err := Parse([]byte(sb.String()), nil)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != StructureTooDeep {
		t.Fatalf("Parse deeply nested = %v; want StructureTooDeep", err)
	}
}
