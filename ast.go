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

import "fmt"

// A Location identifies a source position for diagnostics.
// Lines are numbered from 1.
// Lines that came from an include directive carry the include target as File.
type Location struct {
	File string
	Line int
}

// A Document is the root of a parsed document tree.
// It is immutable once returned from [Parse]
// and may be shared by reference with any number of renderers.
type Document struct {
	title    []*Inline
	authors  []Author
	revision Revision
	hasRev   bool
	attrs    *AttributeTable
	blocks   []*Block

	// parent is a non-owning lookup index used only for diagnostics,
	// never for traversal.
	parent map[*Block]*Block
}

// An Author is one entry of the document header's author line.
type Author struct {
	Name  string
	Email string
}

// A Revision is the document header's revision line.
type Revision struct {
	Number string
	Date   string
	Remark string
}

// Title returns the document title as a sequence of inline nodes,
// or nil if the document has no header.
func (d *Document) Title() []*Inline {
	if d == nil {
		return nil
	}
	return d.title
}

// HasHeader reports whether the source carried an explicit document header.
func (d *Document) HasHeader() bool {
	return d != nil && d.title != nil
}

// Authors returns the authors declared in the document header.
func (d *Document) Authors() []Author {
	if d == nil {
		return nil
	}
	return d.authors
}

// Revision returns the header revision line, if present.
func (d *Document) Revision() (Revision, bool) {
	if d == nil {
		return Revision{}, false
	}
	return d.revision, d.hasRev
}

// Attributes returns the document's attribute table,
// frozen at its end-of-parse state.
// Callers must treat the table as read only.
func (d *Document) Attributes() *AttributeTable {
	if d == nil {
		return nil
	}
	return d.attrs
}

// Blocks returns the ordered top-level blocks.
func (d *Document) Blocks() []*Block {
	if d == nil {
		return nil
	}
	return d.blocks
}

// Parent returns the enclosing block of b,
// or nil if b is a top-level block or not part of the document.
func (d *Document) Parent(b *Block) *Block {
	if d == nil {
		return nil
	}
	return d.parent[b]
}

func (d *Document) buildParentIndex() {
	d.parent = make(map[*Block]*Block)
	for _, top := range d.blocks {
		Walk(top.AsNode(), &WalkOptions{
			Pre: func(c *Cursor) bool {
				b := c.Node().Block()
				if b == nil {
					// Inline subtrees have no entries in the index.
					return false
				}
				d.parent[b] = c.Parent().Block()
				return true
			},
		})
	}
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	ParagraphKind BlockKind = 1 + iota
	SectionKind
	ListKind
	ListItemKind
	TableKind
	ListingKind
	LiteralKind
	ExampleKind
	QuoteKind
	SidebarKind
	OpenKind
	CommentKind
	PassthroughKind
	AdmonitionKind
	ImageKind
	ThematicBreakKind
	PageBreakKind
	IncludeResidueKind
)

func (k BlockKind) String() string {
	switch k {
	case ParagraphKind:
		return "Paragraph"
	case SectionKind:
		return "Section"
	case ListKind:
		return "List"
	case ListItemKind:
		return "ListItem"
	case TableKind:
		return "Table"
	case ListingKind:
		return "Listing"
	case LiteralKind:
		return "Literal"
	case ExampleKind:
		return "Example"
	case QuoteKind:
		return "Quote"
	case SidebarKind:
		return "Sidebar"
	case OpenKind:
		return "Open"
	case CommentKind:
		return "Comment"
	case PassthroughKind:
		return "Passthrough"
	case AdmonitionKind:
		return "Admonition"
	case ImageKind:
		return "Image"
	case ThematicBreakKind:
		return "ThematicBreak"
	case PageBreakKind:
		return "PageBreak"
	case IncludeResidueKind:
		return "IncludeResidue"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(k))
	}
}

// ListType distinguishes the three list families.
// A list's type is fixed by its first item's marker.
type ListType uint8

const (
	UnorderedList ListType = 1 + iota
	OrderedList
	DescriptionList
	CalloutList
)

func (t ListType) String() string {
	switch t {
	case UnorderedList:
		return "unordered"
	case OrderedList:
		return "ordered"
	case DescriptionList:
		return "description"
	case CalloutList:
		return "callout"
	default:
		return fmt.Sprintf("ListType(%d)", uint8(t))
	}
}

// A Block is a structural element of the document.
// Blocks own their children; they are immutable once the parse returns.
type Block struct {
	kind  BlockKind
	loc   Location
	level int
	style string
	id    string
	title []*Inline
	attrs *AttrList
	subs  SubstitutionSet

	listType ListType
	marker   string
	term     []*Inline

	target string

	inlines []*Inline
	blocks  []*Block
	lines   []string
	table   *Table
}

// Kind returns the block's kind tag, or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Location returns the source position where the block starts.
func (b *Block) Location() Location {
	if b == nil {
		return Location{}
	}
	return b.loc
}

// Level returns the section level (1-5) for [SectionKind] blocks
// and zero otherwise.
func (b *Block) Level() int {
	if b == nil {
		return 0
	}
	return b.level
}

// Style returns the block's style:
// the first positional attribute of its attribute list
// (for example "source" on a listing or "NOTE" on an admonition),
// or the empty string.
func (b *Block) Style() string {
	if b == nil {
		return ""
	}
	return b.style
}

// ID returns the block's anchor, or the empty string if it has none.
// Section IDs are generated from the title when not set explicitly.
func (b *Block) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Title returns the block's title
// (a section heading or an explicit ".Title" line)
// as a sequence of inline nodes.
func (b *Block) Title() []*Inline {
	if b == nil {
		return nil
	}
	return b.title
}

// Attrs returns the attribute list attached to the block, if any.
func (b *Block) Attrs() *AttrList {
	if b == nil {
		return nil
	}
	return b.attrs
}

// Subs returns the substitution set that governed
// the parsing of the block's content.
// The set is fixed before inline parsing begins and never re-derived.
func (b *Block) Subs() SubstitutionSet {
	if b == nil {
		return SubsNone
	}
	return b.subs
}

// ListType returns the list family for [ListKind] blocks and zero otherwise.
func (b *Block) ListType() ListType {
	if b == nil {
		return 0
	}
	return b.listType
}

// Marker returns the list item marker text for [ListItemKind] blocks.
func (b *Block) Marker() string {
	if b == nil {
		return ""
	}
	return b.marker
}

// Term returns the term of a description list item, or nil.
func (b *Block) Term() []*Inline {
	if b == nil {
		return nil
	}
	return b.term
}

// Target returns the macro target for [ImageKind]
// and [IncludeResidueKind] blocks.
func (b *Block) Target() string {
	if b == nil {
		return ""
	}
	return b.target
}

// Inlines returns the block's inline content, if any.
func (b *Block) Inlines() []*Inline {
	if b == nil {
		return nil
	}
	return b.inlines
}

// Blocks returns the block's nested blocks, if any.
func (b *Block) Blocks() []*Block {
	if b == nil {
		return nil
	}
	return b.blocks
}

// Lines returns the raw content lines of a verbatim block
// (listing, literal, passthrough, or comment).
func (b *Block) Lines() []string {
	if b == nil {
		return nil
	}
	return b.lines
}

// Table returns the table data for [TableKind] blocks, or nil.
func (b *Block) Table() *Table {
	if b == nil {
		return nil
	}
	return b.table
}

// A Table holds the rows and column specifications of a [TableKind] block.
type Table struct {
	cols   []ColumnSpec
	header *TableRow
	rows   []*TableRow
}

// A ColumnSpec describes one table column.
type ColumnSpec struct {
	// Style is the column's content style letter:
	// 'd' (default), 'a' (AsciiDoc), 'l' (literal), 'm' (monospace),
	// 'h' (header), 's' (strong), or 'e' (emphasis).
	Style byte
	// Width is the column's relative width, 1 if unspecified.
	Width int
}

// Columns returns the table's column specifications.
// Its length is the table's column count.
func (t *Table) Columns() []ColumnSpec {
	if t == nil {
		return nil
	}
	return t.cols
}

// Header returns the table's header row, or nil.
func (t *Table) Header() *TableRow {
	if t == nil {
		return nil
	}
	return t.header
}

// Rows returns the table's body rows.
func (t *Table) Rows() []*TableRow {
	if t == nil {
		return nil
	}
	return t.rows
}

func (t *Table) allRows() []*TableRow {
	if t == nil {
		return nil
	}
	if t.header == nil {
		return t.rows
	}
	return append([]*TableRow{t.header}, t.rows...)
}

// A TableRow is one row of cells.
type TableRow struct {
	cells []*TableCell
}

// Cells returns the row's cells in column order.
func (r *TableRow) Cells() []*TableCell {
	if r == nil {
		return nil
	}
	return r.cells
}

// A TableCell holds one cell's content.
// Cells styled 'a' carry nested blocks; all others carry inline content.
type TableCell struct {
	style   byte
	inlines []*Inline
	blocks  []*Block
}

// Style returns the cell's effective style letter.
func (c *TableCell) Style() byte {
	if c == nil {
		return 'd'
	}
	return c.style
}

// Inlines returns the cell's inline content.
func (c *TableCell) Inlines() []*Inline {
	if c == nil {
		return nil
	}
	return c.inlines
}

// Blocks returns the nested blocks of an AsciiDoc-style cell.
func (c *TableCell) Blocks() []*Block {
	if c == nil {
		return nil
	}
	return c.blocks
}
