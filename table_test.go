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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rowTexts(row *TableRow) []string {
	var texts []string
	for _, cell := range row.Cells() {
		texts = append(texts, inlineText(cell.Inlines()))
	}
	return texts
}

func parseTableBlock(t *testing.T, source string) (*Table, []Diagnostic) {
	t.Helper()
	doc, diags := mustParse(t, source, nil)
	blocks := doc.Blocks()
	if len(blocks) != 1 || blocks[0].Kind() != TableKind {
		t.Fatalf("blocks = %v; want [Table]", blockKinds(blocks))
	}
	return blocks[0].Table(), diags
}

func TestBasicTable(t *testing.T) {
	table, diags := parseTableBlock(t, "|===\n|a |b\n|c |d\n|===\n")
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	if got := len(table.Columns()); got != 2 {
		t.Fatalf("column count = %d; want 2", got)
	}
	if table.Header() != nil {
		t.Error("header present; want none without a blank separator")
	}
	rows := table.Rows()
	if len(rows) != 2 {
		t.Fatalf("row count = %d; want 2", len(rows))
	}
	if diff := cmp.Diff([]string{"a", "b"}, rowTexts(rows[0])); diff != "" {
		t.Errorf("row 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "d"}, rowTexts(rows[1])); diff != "" {
		t.Errorf("row 1 (-want +got):\n%s", diff)
	}
}

func TestTableSingleLetterCells(t *testing.T) {
	// A cell body that happens to be a style letter (or a repeat count)
	// stays content unless whitespace sets it off as a spec for the next cell.
	table, diags := parseTableBlock(t, "|===\n|a|b\n|d|3*\n|===\n")
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	rows := table.Rows()
	if len(rows) != 2 {
		t.Fatalf("row count = %d; want 2", len(rows))
	}
	if diff := cmp.Diff([]string{"a", "b"}, rowTexts(rows[0])); diff != "" {
		t.Errorf("row 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d", "3*"}, rowTexts(rows[1])); diff != "" {
		t.Errorf("row 1 (-want +got):\n%s", diff)
	}
	for r, row := range rows {
		for c, cell := range row.Cells() {
			if got := cell.Style(); got != 'd' {
				t.Errorf("row %d cell %d style = %q; want 'd'", r, c, got)
			}
		}
	}
}

func TestTableImplicitHeader(t *testing.T) {
	table, _ := parseTableBlock(t, "|===\n|Name |Value\n\n|x |1\n|y |2\n|===\n")
	hdr := table.Header()
	if hdr == nil {
		t.Fatal("no header; want first row promoted after blank line")
	}
	if diff := cmp.Diff([]string{"Name", "Value"}, rowTexts(hdr)); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	if got := len(table.Rows()); got != 2 {
		t.Errorf("body row count = %d; want 2", got)
	}
}

func TestTableHeaderOption(t *testing.T) {
	table, _ := parseTableBlock(t, "[%header]\n|===\n|Name |Value\n|x |1\n|===\n")
	if table.Header() == nil {
		t.Fatal("no header; want %header option honored")
	}
	if got := len(table.Rows()); got != 1 {
		t.Errorf("body row count = %d; want 1", got)
	}
}

func TestTableColSpecs(t *testing.T) {
	table, _ := parseTableBlock(t, "[cols=\"2,3a,1\"]\n|===\n|plain |nested |small\n|===\n")
	want := []ColumnSpec{
		{Style: 'd', Width: 2},
		{Style: 'a', Width: 3},
		{Style: 'd', Width: 1},
	}
	if diff := cmp.Diff(want, table.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
}

func TestParseColSpecs(t *testing.T) {
	tests := []struct {
		spec string
		want []ColumnSpec
	}{
		{"1,1", []ColumnSpec{{Style: 'd', Width: 1}, {Style: 'd', Width: 1}}},
		{"3*", []ColumnSpec{{Style: 'd', Width: 1}, {Style: 'd', Width: 1}, {Style: 'd', Width: 1}}},
		{"2a", []ColumnSpec{{Style: 'a', Width: 2}}},
		{"l,m", []ColumnSpec{{Style: 'l', Width: 1}, {Style: 'm', Width: 1}}},
		{"2*h", []ColumnSpec{{Style: 'h', Width: 1}, {Style: 'h', Width: 1}}},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, parseColSpecs(test.spec)); diff != "" {
			t.Errorf("parseColSpecs(%q) (-want +got):\n%s", test.spec, diff)
		}
	}
}

func TestTableCellCountMismatch(t *testing.T) {
	table, diags := parseTableBlock(t, "|===\n|a |b\n|c\n|===\n")
	if !hasDiagnostic(diags, "cells") {
		t.Errorf("diagnostics = %v; want cell count warning", diags)
	}
	rows := table.Rows()
	if got := len(rows[1].Cells()); got != 2 {
		t.Errorf("short row padded to %d cells; want 2", got)
	}
	if got := inlineText(rows[1].Cells()[1].Inlines()); got != "" {
		t.Errorf("padding cell text = %q; want empty", got)
	}
}

func TestTableAsciiDocCell(t *testing.T) {
	table, _ := parseTableBlock(t, "[cols=\"1,1a\"]\n|===\n|plain |* item one\n* item two\n|===\n")
	cell := table.Rows()[0].Cells()[1]
	if cell.Style() != 'a' {
		t.Fatalf("cell style = %q; want 'a'", cell.Style())
	}
	blocks := cell.Blocks()
	if len(blocks) != 1 || blocks[0].Kind() != ListKind {
		t.Fatalf("cell blocks = %v; want [List]", blockKinds(blocks))
	}
	if got := len(blocks[0].Blocks()); got != 2 {
		t.Errorf("nested list items = %d; want 2", got)
	}
}

func TestTableCellStylePrefix(t *testing.T) {
	table, _ := parseTableBlock(t, "|===\n|plain a|* nested\n|===\n")
	cells := table.Rows()[0].Cells()
	if got := inlineText(cells[0].Inlines()); got != "plain" {
		t.Errorf("first cell = %q; want %q", got, "plain")
	}
	if cells[1].Style() != 'a' {
		t.Errorf("second cell style = %q; want 'a'", cells[1].Style())
	}
}

func TestTableCustomSeparator(t *testing.T) {
	table, _ := parseTableBlock(t, "[separator=\"!\"]\n|===\n!a !b\n|===\n")
	rows := table.Rows()
	if len(rows) == 0 {
		t.Fatal("no rows parsed with custom separator")
	}
	if diff := cmp.Diff([]string{"a", "b"}, rowTexts(rows[0])); diff != "" {
		t.Errorf("row 0 (-want +got):\n%s", diff)
	}
}

func TestTableEscapedSeparator(t *testing.T) {
	table, _ := parseTableBlock(t, "|===\n|a \\| b |c\n|===\n")
	row := table.Rows()[0]
	if got := inlineText(row.Cells()[0].Inlines()); got != "a | b" {
		t.Errorf("cell 0 = %q; want %q", got, "a | b")
	}
	if got := inlineText(row.Cells()[1].Inlines()); got != "c" {
		t.Errorf("cell 1 = %q; want %q", got, "c")
	}
}

func TestTableContinuationLines(t *testing.T) {
	table, _ := parseTableBlock(t, "|===\n|first line\ncontinued here\n|===\n")
	cell := table.Rows()[0].Cells()[0]
	if got := inlineText(cell.Inlines()); got != "first line\ncontinued here" {
		t.Errorf("cell = %q; want continuation joined", got)
	}
}

func TestUnterminatedTable(t *testing.T) {
	doc, diags := mustParse(t, "|===\n|a\n", nil)
	if !hasDiagnostic(diags, "unterminated table") {
		t.Errorf("diagnostics = %v; want unterminated table warning", diags)
	}
	if got := blockKinds(doc.Blocks()); len(got) != 1 || got[0] != TableKind {
		t.Errorf("blocks = %v; want [Table]", got)
	}
}
