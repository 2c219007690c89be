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

import "testing"

func itemTexts(list *Block) []string {
	var texts []string
	for _, item := range list.Blocks() {
		texts = append(texts, inlineText(item.Inlines()))
	}
	return texts
}

func TestUnorderedList(t *testing.T) {
	const source = "* apple\n* banana\n* cherry\n"
	doc, diags := mustParse(t, source, nil)
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	list := doc.Blocks()[0]
	if list.Kind() != ListKind || list.ListType() != UnorderedList {
		t.Fatalf("kind, type = %v, %v; want List, unordered", list.Kind(), list.ListType())
	}
	want := []string{"apple", "banana", "cherry"}
	got := itemTexts(list)
	if len(got) != 3 {
		t.Fatalf("items = %q; want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestCalloutList(t *testing.T) {
	const source = "----\n" +
		"x := compute() <1>\n" +
		"return x <2>\n" +
		"----\n" +
		"\n" +
		"<1> the interesting part\n" +
		"<2> the boring part\n"
	doc, diags := mustParse(t, source, nil)
	if len(diags) > 0 {
		t.Errorf("diagnostics: %v", diags)
	}
	blocks := doc.Blocks()
	if kinds := blockKinds(blocks); len(kinds) != 2 || kinds[0] != ListingKind || kinds[1] != ListKind {
		t.Fatalf("blocks = %v; want [Listing List]", kinds)
	}
	list := blocks[1]
	if list.ListType() != CalloutList {
		t.Fatalf("type = %v; want callout", list.ListType())
	}
	if got := itemTexts(list); len(got) != 2 || got[0] != "the interesting part" || got[1] != "the boring part" {
		t.Errorf("items = %q; want [the interesting part, the boring part]", got)
	}
}

func TestSplitCallouts(t *testing.T) {
	tests := []struct {
		line     string
		wantBody string
		wantNums []string
	}{
		{"x := 1", "x := 1", nil},
		{"x := 1 <1>", "x := 1", []string{"1"}},
		{"y() <1> <2>", "y()", []string{"1", "2"}},
		{"if a < b {", "if a < b {", nil},
		{"m[k] = <-ch", "m[k] = <-ch", nil},
	}
	for _, test := range tests {
		body, nums := splitCallouts(test.line)
		if body != test.wantBody {
			t.Errorf("splitCallouts(%q) body = %q; want %q", test.line, body, test.wantBody)
		}
		if len(nums) != len(test.wantNums) {
			t.Errorf("splitCallouts(%q) nums = %q; want %q", test.line, nums, test.wantNums)
			continue
		}
		for i := range nums {
			if nums[i] != test.wantNums[i] {
				t.Errorf("splitCallouts(%q) nums = %q; want %q", test.line, nums, test.wantNums)
				break
			}
		}
	}
}

func TestOrderedList(t *testing.T) {
	doc, _ := mustParse(t, ". first\n. second\n", nil)
	list := doc.Blocks()[0]
	if list.ListType() != OrderedList {
		t.Fatalf("type = %v; want ordered", list.ListType())
	}
	if got := itemTexts(list); len(got) != 2 || got[0] != "first" {
		t.Errorf("items = %q; want [first second]", got)
	}
}

func TestExplicitNumberList(t *testing.T) {
	doc, _ := mustParse(t, "1. one\n2. two\n", nil)
	list := doc.Blocks()[0]
	if list.ListType() != OrderedList {
		t.Fatalf("type = %v; want ordered", list.ListType())
	}
	if got := len(list.Blocks()); got != 2 {
		t.Errorf("item count = %d; want 2", got)
	}
}

func TestDescriptionList(t *testing.T) {
	const source = "CPU:: the processor\nRAM:: the memory\n"
	doc, _ := mustParse(t, source, nil)
	list := doc.Blocks()[0]
	if list.ListType() != DescriptionList {
		t.Fatalf("type = %v; want description", list.ListType())
	}
	items := list.Blocks()
	if len(items) != 2 {
		t.Fatalf("item count = %d; want 2", len(items))
	}
	if got := inlineText(items[0].Term()); got != "CPU" {
		t.Errorf("term = %q; want %q", got, "CPU")
	}
	if got := inlineText(items[0].Inlines()); got != "the processor" {
		t.Errorf("definition = %q; want %q", got, "the processor")
	}
}

func TestNestedList(t *testing.T) {
	const source = "* outer one\n** inner a\n** inner b\n* outer two\n"
	doc, _ := mustParse(t, source, nil)
	list := doc.Blocks()[0]
	items := list.Blocks()
	if len(items) != 2 {
		t.Fatalf("outer item count = %d; want 2", len(items))
	}
	nested := items[0].Blocks()
	if len(nested) != 1 || nested[0].Kind() != ListKind {
		t.Fatalf("first item children = %v; want a nested list", blockKinds(nested))
	}
	if got := itemTexts(nested[0]); len(got) != 2 || got[0] != "inner a" {
		t.Errorf("nested items = %q; want [inner a, inner b]", got)
	}
}

func TestListItemWrappedLines(t *testing.T) {
	doc, _ := mustParse(t, "* first line\n  wrapped line\n* next\n", nil)
	list := doc.Blocks()[0]
	if got := inlineText(list.Blocks()[0].Inlines()); got != "first line\n  wrapped line" {
		t.Errorf("principal = %q; want wrapped text joined", got)
	}
}

func TestListContinuation(t *testing.T) {
	const source = "* item\n+\n----\nattached code\n----\n* next\n"
	doc, _ := mustParse(t, source, nil)
	list := doc.Blocks()[0]
	items := list.Blocks()
	if len(items) != 2 {
		t.Fatalf("item count = %d; want 2", len(items))
	}
	attached := items[0].Blocks()
	if len(attached) != 1 || attached[0].Kind() != ListingKind {
		t.Fatalf("attached blocks = %v; want [Listing]", blockKinds(attached))
	}
}

func TestListBlankLineSeparation(t *testing.T) {
	doc, _ := mustParse(t, "* one\n\n* two\n", nil)
	blocks := doc.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("block count = %d; want a single list", len(blocks))
	}
	if got := len(blocks[0].Blocks()); got != 2 {
		t.Errorf("item count = %d; want 2", got)
	}
}

func TestListEndsAtDifferentFamily(t *testing.T) {
	doc, _ := mustParse(t, "* bullet\n. numbered\n", nil)
	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("block count = %d; want 2 separate lists", len(blocks))
	}
	if blocks[0].ListType() != UnorderedList || blocks[1].ListType() != OrderedList {
		t.Errorf("types = %v, %v; want unordered then ordered", blocks[0].ListType(), blocks[1].ListType())
	}
}
