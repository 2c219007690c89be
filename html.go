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
	"fmt"
	"io"
	"strconv"
	"strings"

	"go4.org/bytereplacer"
)

// A Renderer converts a document tree to an output format.
// Rendering never mutates the tree;
// the same renderer may be invoked repeatedly
// and the same document rendered concurrently.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
}

// HTMLRenderer renders a document tree as HTML.
// The zero value produces a standalone page.
type HTMLRenderer struct {
	// Embedded suppresses the enclosing page scaffolding
	// and emits only the document content.
	Embedded bool
}

// RenderHTML renders doc as embedded HTML to w.
func RenderHTML(w io.Writer, doc *Document) error {
	r := &HTMLRenderer{Embedded: true}
	return r.Render(w, doc)
}

func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	var buf []byte
	if !r.Embedded {
		buf = append(buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>"...)
		buf = appendEscaped(buf, inlineText(doc.Title()))
		buf = append(buf, "</title>\n</head>\n<body>\n"...)
		if doc.HasHeader() {
			buf = append(buf, "<div id=\"header\">\n<h1>"...)
			buf = appendInlinesHTML(buf, doc, doc.Title())
			buf = append(buf, "</h1>\n"...)
			buf = appendDocInfo(buf, doc)
			buf = append(buf, "</div>\n"...)
		}
		buf = append(buf, "<div id=\"content\">\n"...)
	}
	for _, b := range doc.Blocks() {
		buf = appendBlockHTML(buf, doc, b)
	}
	if !r.Embedded {
		buf = append(buf, "</div>\n</body>\n</html>\n"...)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func appendDocInfo(dst []byte, doc *Document) []byte {
	authors := doc.Authors()
	rev, hasRev := doc.Revision()
	if len(authors) == 0 && !hasRev {
		return dst
	}
	dst = append(dst, "<div class=\"details\">\n"...)
	for i, a := range authors {
		dst = append(dst, `<span class="author">`...)
		dst = appendEscaped(dst, a.Name)
		dst = append(dst, "</span>"...)
		if a.Email != "" {
			dst = append(dst, ` <span class="email"><a href="mailto:`...)
			dst = appendEscaped(dst, a.Email)
			dst = append(dst, `">`...)
			dst = appendEscaped(dst, a.Email)
			dst = append(dst, "</a></span>"...)
		}
		if i < len(authors)-1 {
			dst = append(dst, ';')
		}
		dst = append(dst, '\n')
	}
	if hasRev {
		if rev.Number != "" {
			dst = append(dst, `<span id="revnumber">version `...)
			dst = appendEscaped(dst, rev.Number)
			dst = append(dst, "</span>"...)
		}
		if rev.Date != "" {
			if rev.Number != "" {
				dst = append(dst, ", "...)
			}
			dst = append(dst, `<span id="revdate">`...)
			dst = appendEscaped(dst, rev.Date)
			dst = append(dst, "</span>"...)
		}
		dst = append(dst, '\n')
	}
	dst = append(dst, "</div>\n"...)
	return dst
}

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func appendEscaped(dst []byte, s string) []byte {
	return append(dst, htmlEscaper.Replace([]byte(s))...)
}

// appendBlockTitle emits the optional title line carried by block metadata.
func appendBlockTitle(dst []byte, doc *Document, b *Block) []byte {
	if len(b.Title()) == 0 {
		return dst
	}
	dst = append(dst, `<div class="title">`...)
	dst = appendInlinesHTML(dst, doc, b.Title())
	dst = append(dst, "</div>\n"...)
	return dst
}

// appendOpenTag emits an opening div with the block's ID and roles.
func appendOpenTag(dst []byte, b *Block, class string) []byte {
	dst = append(dst, "<div"...)
	if id := b.ID(); id != "" {
		dst = append(dst, ` id="`...)
		dst = appendEscaped(dst, id)
		dst = append(dst, '"')
	}
	dst = append(dst, ` class="`...)
	dst = append(dst, class...)
	for _, role := range b.Attrs().Roles() {
		dst = append(dst, ' ')
		dst = appendEscaped(dst, role)
	}
	dst = append(dst, "\">\n"...)
	return dst
}

func appendBlockHTML(dst []byte, doc *Document, b *Block) []byte {
	switch b.Kind() {
	case SectionKind:
		level := b.Level()
		dst = append(dst, `<div class="sect`...)
		dst = strconv.AppendInt(dst, int64(level), 10)
		dst = append(dst, "\">\n<h"...)
		dst = strconv.AppendInt(dst, int64(level+1), 10)
		if id := b.ID(); id != "" {
			dst = append(dst, ` id="`...)
			dst = appendEscaped(dst, id)
			dst = append(dst, '"')
		}
		dst = append(dst, '>')
		dst = appendInlinesHTML(dst, doc, b.Title())
		dst = append(dst, "</h"...)
		dst = strconv.AppendInt(dst, int64(level+1), 10)
		dst = append(dst, ">\n"...)
		if level == 1 {
			dst = append(dst, "<div class=\"sectionbody\">\n"...)
		}
		for _, c := range b.Blocks() {
			dst = appendBlockHTML(dst, doc, c)
		}
		if level == 1 {
			dst = append(dst, "</div>\n"...)
		}
		dst = append(dst, "</div>\n"...)

	case ParagraphKind:
		dst = appendOpenTag(dst, b, "paragraph")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<p>"...)
		dst = appendInlinesHTML(dst, doc, b.Inlines())
		dst = append(dst, "</p>\n</div>\n"...)

	case ListingKind:
		dst = appendOpenTag(dst, b, "listingblock")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<div class=\"content\">\n<pre"...)
		lang := b.Attrs().Positional(2)
		if lang != "" {
			dst = append(dst, ` class="highlight"><code class="language-`...)
			dst = appendEscaped(dst, lang)
			dst = append(dst, `" data-lang="`...)
			dst = appendEscaped(dst, lang)
			dst = append(dst, `">`...)
		} else {
			dst = append(dst, '>')
		}
		dst = appendVerbatim(dst, doc, b)
		if lang != "" {
			dst = append(dst, "</code>"...)
		}
		dst = append(dst, "</pre>\n</div>\n</div>\n"...)

	case LiteralKind:
		dst = appendOpenTag(dst, b, "literalblock")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<div class=\"content\">\n<pre>"...)
		dst = appendVerbatim(dst, doc, b)
		dst = append(dst, "</pre>\n</div>\n</div>\n"...)

	case ExampleKind:
		dst = appendOpenTag(dst, b, "exampleblock")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<div class=\"content\">\n"...)
		dst = appendChildrenHTML(dst, doc, b)
		dst = append(dst, "</div>\n</div>\n"...)

	case QuoteKind:
		dst = appendOpenTag(dst, b, "quoteblock")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<blockquote>\n"...)
		dst = appendChildrenHTML(dst, doc, b)
		dst = append(dst, "</blockquote>\n"...)
		if who := b.Attrs().Positional(2); who != "" {
			dst = append(dst, `<div class="attribution">&#8212; `...)
			dst = appendEscaped(dst, who)
			if cite := b.Attrs().Positional(3); cite != "" {
				dst = append(dst, "<br>\n<cite>"...)
				dst = appendEscaped(dst, cite)
				dst = append(dst, "</cite>"...)
			}
			dst = append(dst, "</div>\n"...)
		}
		dst = append(dst, "</div>\n"...)

	case SidebarKind:
		dst = appendOpenTag(dst, b, "sidebarblock")
		dst = append(dst, "<div class=\"content\">\n"...)
		dst = appendBlockTitle(dst, doc, b)
		dst = appendChildrenHTML(dst, doc, b)
		dst = append(dst, "</div>\n</div>\n"...)

	case OpenKind:
		dst = appendOpenTag(dst, b, "openblock")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<div class=\"content\">\n"...)
		dst = appendChildrenHTML(dst, doc, b)
		dst = append(dst, "</div>\n</div>\n"...)

	case AdmonitionKind:
		style := strings.ToLower(b.Style())
		dst = appendOpenTag(dst, b, "admonitionblock "+style)
		dst = append(dst, "<table>\n<tr>\n<td class=\"icon\">\n<div class=\"title\">"...)
		dst = appendEscaped(dst, admonitionCaption(doc, style))
		dst = append(dst, "</div>\n</td>\n<td class=\"content\">\n"...)
		dst = appendBlockTitle(dst, doc, b)
		if len(b.Blocks()) > 0 {
			dst = appendChildrenHTML(dst, doc, b)
		} else {
			dst = appendInlinesHTML(dst, doc, b.Inlines())
			dst = append(dst, '\n')
		}
		dst = append(dst, "</td>\n</tr>\n</table>\n</div>\n"...)

	case ImageKind:
		dst = appendOpenTag(dst, b, "imageblock")
		dst = append(dst, "<div class=\"content\">\n<img src=\""...)
		dst = appendEscaped(dst, b.Target())
		dst = append(dst, `" alt="`...)
		dst = appendEscaped(dst, imageAlt(b))
		dst = append(dst, "\">\n</div>\n"...)
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "</div>\n"...)

	case ListKind:
		dst = appendListHTML(dst, doc, b)

	case TableKind:
		dst = appendTableHTML(dst, doc, b)

	case ThematicBreakKind:
		dst = append(dst, "<hr>\n"...)

	case PageBreakKind:
		dst = append(dst, "<div style=\"page-break-after: always;\"></div>\n"...)

	case PassthroughKind:
		if b.Subs().Has(SubSpecialChars) {
			dst = appendEscaped(dst, strings.Join(b.Lines(), "\n"))
		} else {
			dst = append(dst, strings.Join(b.Lines(), "\n")...)
		}
		dst = append(dst, '\n')

	case CommentKind:
		// Comments produce no output.

	case IncludeResidueKind:
		dst = append(dst, "<div class=\"paragraph\">\n<p>Unresolved directive - include::"...)
		dst = appendEscaped(dst, b.Target())
		dst = append(dst, "[]</p>\n</div>\n"...)
	}
	return dst
}

func appendChildrenHTML(dst []byte, doc *Document, b *Block) []byte {
	for _, c := range b.Blocks() {
		dst = appendBlockHTML(dst, doc, c)
	}
	return dst
}

// appendVerbatim emits verbatim block content.
// Inline-parsed content (when substitutions were widened) wins over raw lines.
// Trailing callout markers render as conum badges.
func appendVerbatim(dst []byte, doc *Document, b *Block) []byte {
	if inl := b.Inlines(); inl != nil {
		return appendInlinesHTML(dst, doc, inl)
	}
	escape := b.Subs().Has(SubSpecialChars)
	for i, line := range b.Lines() {
		if i > 0 {
			dst = append(dst, '\n')
		}
		body, nums := splitCallouts(line)
		if escape {
			dst = appendEscaped(dst, body)
		} else {
			dst = append(dst, body...)
		}
		for _, num := range nums {
			dst = append(dst, ` <b class="conum">(`...)
			dst = append(dst, num...)
			dst = append(dst, ")</b>"...)
		}
	}
	return dst
}

func admonitionCaption(doc *Document, style string) string {
	if v, ok := doc.Attributes().Get(style + "-caption"); ok {
		return v
	}
	if style == "" {
		return ""
	}
	return strings.ToUpper(style[:1]) + style[1:]
}

func imageAlt(b *Block) string {
	if alt := b.Attrs().Positional(1); alt != "" {
		return alt
	}
	base := b.Target()
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func appendListHTML(dst []byte, doc *Document, b *Block) []byte {
	switch b.ListType() {
	case OrderedList:
		dst = appendOpenTag(dst, b, "olist arabic")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<ol class=\"arabic\">\n"...)
		dst = appendListItemsHTML(dst, doc, b)
		dst = append(dst, "</ol>\n</div>\n"...)
	case CalloutList:
		dst = appendOpenTag(dst, b, "colist arabic")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<ol>\n"...)
		dst = appendListItemsHTML(dst, doc, b)
		dst = append(dst, "</ol>\n</div>\n"...)
	case DescriptionList:
		dst = appendOpenTag(dst, b, "dlist")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<dl>\n"...)
		for _, item := range b.Blocks() {
			dst = append(dst, `<dt class="hdlist1">`...)
			dst = appendInlinesHTML(dst, doc, item.Term())
			dst = append(dst, "</dt>\n"...)
			if len(item.Inlines()) > 0 || len(item.Blocks()) > 0 {
				dst = append(dst, "<dd>\n"...)
				dst = appendListItemBody(dst, doc, item)
				dst = append(dst, "</dd>\n"...)
			}
		}
		dst = append(dst, "</dl>\n</div>\n"...)
	default:
		dst = appendOpenTag(dst, b, "ulist")
		dst = appendBlockTitle(dst, doc, b)
		dst = append(dst, "<ul>\n"...)
		dst = appendListItemsHTML(dst, doc, b)
		dst = append(dst, "</ul>\n</div>\n"...)
	}
	return dst
}

func appendListItemsHTML(dst []byte, doc *Document, list *Block) []byte {
	for _, item := range list.Blocks() {
		dst = append(dst, "<li>\n"...)
		dst = appendListItemBody(dst, doc, item)
		dst = append(dst, "</li>\n"...)
	}
	return dst
}

func appendListItemBody(dst []byte, doc *Document, item *Block) []byte {
	if len(item.Inlines()) > 0 {
		dst = append(dst, "<p>"...)
		dst = appendInlinesHTML(dst, doc, item.Inlines())
		dst = append(dst, "</p>\n"...)
	}
	for _, c := range item.Blocks() {
		dst = appendBlockHTML(dst, doc, c)
	}
	return dst
}

func appendTableHTML(dst []byte, doc *Document, b *Block) []byte {
	t := b.Table()
	dst = appendOpenTagName(dst, b, "table", "tableblock frame-all grid-all stretch")
	dst = appendBlockTitle(dst, doc, b)
	totalWidth := 0
	for _, col := range t.Columns() {
		totalWidth += col.Width
	}
	if totalWidth > 0 {
		dst = append(dst, "<colgroup>\n"...)
		for _, col := range t.Columns() {
			dst = append(dst, `<col style="width: `...)
			dst = strconv.AppendInt(dst, int64(col.Width*100/totalWidth), 10)
			dst = append(dst, "%;\">\n"...)
		}
		dst = append(dst, "</colgroup>\n"...)
	}
	if hdr := t.Header(); hdr != nil {
		dst = append(dst, "<thead>\n"...)
		dst = appendRowHTML(dst, doc, hdr, true)
		dst = append(dst, "</thead>\n"...)
	}
	dst = append(dst, "<tbody>\n"...)
	for _, row := range t.Rows() {
		dst = appendRowHTML(dst, doc, row, false)
	}
	dst = append(dst, "</tbody>\n</table>\n"...)
	return dst
}

// appendOpenTagName is appendOpenTag for non-div elements.
func appendOpenTagName(dst []byte, b *Block, tag, class string) []byte {
	dst = append(dst, '<')
	dst = append(dst, tag...)
	if id := b.ID(); id != "" {
		dst = append(dst, ` id="`...)
		dst = appendEscaped(dst, id)
		dst = append(dst, '"')
	}
	dst = append(dst, ` class="`...)
	dst = append(dst, class...)
	for _, role := range b.Attrs().Roles() {
		dst = append(dst, ' ')
		dst = appendEscaped(dst, role)
	}
	dst = append(dst, "\">\n"...)
	return dst
}

func appendRowHTML(dst []byte, doc *Document, row *TableRow, header bool) []byte {
	dst = append(dst, "<tr>\n"...)
	for _, cell := range row.Cells() {
		tag := "td"
		if header || cell.Style() == 'h' {
			tag = "th"
		}
		dst = append(dst, '<')
		dst = append(dst, tag...)
		dst = append(dst, ` class="tableblock halign-left valign-top">`...)
		dst = appendCellHTML(dst, doc, cell)
		dst = append(dst, "</"...)
		dst = append(dst, tag...)
		dst = append(dst, ">\n"...)
	}
	dst = append(dst, "</tr>\n"...)
	return dst
}

func appendCellHTML(dst []byte, doc *Document, cell *TableCell) []byte {
	switch cell.Style() {
	case 'a':
		dst = append(dst, "<div class=\"content\">\n"...)
		for _, b := range cell.Blocks() {
			dst = appendBlockHTML(dst, doc, b)
		}
		dst = append(dst, "</div>"...)
	case 'l':
		dst = append(dst, "<div class=\"literal\"><pre>"...)
		dst = appendEscaped(dst, inlineText(cell.Inlines()))
		dst = append(dst, "</pre></div>"...)
	case 'm':
		dst = append(dst, `<p class="tableblock"><code>`...)
		dst = appendInlinesHTML(dst, doc, cell.Inlines())
		dst = append(dst, "</code></p>"...)
	case 's':
		dst = append(dst, `<p class="tableblock"><strong>`...)
		dst = appendInlinesHTML(dst, doc, cell.Inlines())
		dst = append(dst, "</strong></p>"...)
	case 'e':
		dst = append(dst, `<p class="tableblock"><em>`...)
		dst = appendInlinesHTML(dst, doc, cell.Inlines())
		dst = append(dst, "</em></p>"...)
	case 'h':
		dst = appendInlinesHTML(dst, doc, cell.Inlines())
	default:
		dst = append(dst, `<p class="tableblock">`...)
		dst = appendInlinesHTML(dst, doc, cell.Inlines())
		dst = append(dst, "</p>"...)
	}
	return dst
}

func appendInlinesHTML(dst []byte, doc *Document, inlines []*Inline) []byte {
	for _, inline := range inlines {
		dst = appendInlineHTML(dst, doc, inline)
	}
	return dst
}

func appendInlineHTML(dst []byte, doc *Document, inline *Inline) []byte {
	switch inline.Kind() {
	case TextKind:
		dst = appendEscaped(dst, inline.Text())
	case CharRefKind:
		dst = appendEscaped(dst, inline.Text())
	case AttributeRefKind:
		// Unresolved references stay visible in the output.
		dst = appendEscaped(dst, "{"+inline.Text()+"}")
	case LineBreakKind:
		dst = append(dst, "<br>\n"...)
	case StrongKind:
		dst = appendWrapped(dst, doc, inline, "strong")
	case EmphasisKind:
		dst = appendWrapped(dst, doc, inline, "em")
	case MonospaceKind:
		dst = appendWrapped(dst, doc, inline, "code")
	case SuperscriptKind:
		dst = appendWrapped(dst, doc, inline, "sup")
	case SubscriptKind:
		dst = appendWrapped(dst, doc, inline, "sub")
	case MarkKind:
		dst = appendWrapped(dst, doc, inline, "mark")
	case LinkKind:
		dst = append(dst, `<a href="`...)
		dst = appendEscaped(dst, inline.Target())
		dst = append(dst, `">`...)
		if len(inline.Children()) > 0 {
			dst = appendInlinesHTML(dst, doc, inline.Children())
		} else {
			dst = appendEscaped(dst, strings.TrimPrefix(inline.Target(), "mailto:"))
		}
		dst = append(dst, "</a>"...)
	case MacroKind:
		dst = appendMacroHTML(dst, doc, inline)
	}
	return dst
}

func appendWrapped(dst []byte, doc *Document, inline *Inline, tag string) []byte {
	dst = append(dst, '<')
	dst = append(dst, tag...)
	dst = append(dst, '>')
	dst = appendInlinesHTML(dst, doc, inline.Children())
	dst = append(dst, "</"...)
	dst = append(dst, tag...)
	dst = append(dst, '>')
	return dst
}

func appendMacroHTML(dst []byte, doc *Document, inline *Inline) []byte {
	switch inline.Name() {
	case "image":
		dst = append(dst, `<span class="image"><img src="`...)
		dst = appendEscaped(dst, inline.Target())
		dst = append(dst, `" alt="`...)
		if alt := inline.Attrs().Positional(1); alt != "" {
			dst = appendEscaped(dst, alt)
		} else {
			dst = appendEscaped(dst, inline.Target())
		}
		dst = append(dst, `"></span>`...)
	case "xref":
		dst = append(dst, `<a href="#`...)
		dst = appendEscaped(dst, inline.Target())
		dst = append(dst, `">`...)
		if len(inline.Children()) > 0 {
			dst = appendInlinesHTML(dst, doc, inline.Children())
		} else {
			dst = appendEscaped(dst, inline.Target())
		}
		dst = append(dst, "</a>"...)
	case "kbd":
		keys := inline.Attrs()
		if keys.PositionalCount() > 1 {
			dst = append(dst, `<span class="keyseq">`...)
		}
		for i := 1; i <= keys.PositionalCount(); i++ {
			if i > 1 {
				dst = append(dst, '+')
			}
			dst = append(dst, "<kbd>"...)
			dst = appendEscaped(dst, keys.Positional(i))
			dst = append(dst, "</kbd>"...)
		}
		if keys.PositionalCount() > 1 {
			dst = append(dst, "</span>"...)
		}
	case "btn":
		dst = append(dst, `<b class="button">`...)
		dst = appendEscaped(dst, inline.Attrs().Positional(1))
		dst = append(dst, "</b>"...)
	case "menu":
		dst = append(dst, `<b class="menuref">`...)
		dst = appendEscaped(dst, inline.Target())
		dst = append(dst, "</b>"...)
	case "footnote":
		dst = append(dst, `<sup class="footnote">[`...)
		dst = appendInlinesHTML(dst, doc, inline.Children())
		dst = append(dst, "]</sup>"...)
	case "pass":
		dst = append(dst, inline.Text()...)
	default:
		// Unrecognized macros surface as their source text.
		dst = appendEscaped(dst, inline.Name()+":"+inline.Target()+"[]")
	}
	return dst
}
