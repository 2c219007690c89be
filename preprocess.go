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
)

// An IncludeResolver loads the text of include:: targets.
// It is injected by the caller; the core never touches
// the file system or the network itself.
//
// Resolve is called synchronously, once per include directive.
// Implementations must be safe for use by a single parse at a time;
// distinct concurrent parses must be given distinct resolver instances
// unless the implementation is stateless.
type IncludeResolver interface {
	Resolve(target string) ([]byte, error)
}

// maxIncludeDepth bounds include recursion.
const maxIncludeDepth = 64

// A Line is one logical line of preprocessed input.
// Continuation joins are transparent:
// a joined line's provenance points at its first physical line.
type Line struct {
	Text   string
	File   string
	Number int

	// residue marks a synthesized line standing in
	// for an include directive that could not be resolved.
	residue bool
}

// lineStream is the block parser's view of its input.
type lineStream interface {
	next() (Line, bool)
	peek() (Line, bool)
	fatal() error
}

// lineSource is the preprocessor: a lazy, pull-based source of logical lines.
// It resolves line continuations and include directives
// and evaluates conditional directives as lines are materialized,
// so that conditionals observe attribute mutations in document order.
type lineSource struct {
	opts   *Options
	table  *AttributeTable
	diags  *diagSink
	frames []*sourceFrame
	buf    []Line
	conds  []bool
	err    *ParseError
}

type sourceFrame struct {
	file  string
	lines []string
	pos   int
}

func newLineSource(source []byte, opts *Options, table *AttributeTable, diags *diagSink) *lineSource {
	return &lineSource{
		opts:  opts,
		table: table,
		diags: diags,
		frames: []*sourceFrame{{
			file:  opts.SourceName,
			lines: splitLines(source),
		}},
	}
}

func splitLines(source []byte) []string {
	text := string(source)
	if strings.IndexByte(text, 0) >= 0 {
		// NUL bytes become the Unicode replacement character.
		text = strings.ReplaceAll(text, "\x00", "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func (ls *lineSource) fatal() error {
	if ls.err == nil {
		return nil
	}
	return ls.err
}

func (ls *lineSource) next() (Line, bool) {
	line, ok := ls.peek()
	if !ok {
		return Line{}, false
	}
	ls.buf = ls.buf[1:]
	return line, true
}

func (ls *lineSource) peek() (Line, bool) {
	for len(ls.buf) == 0 {
		if ls.err != nil || !ls.materialize() {
			return Line{}, false
		}
	}
	return ls.buf[0], true
}

// materialize advances the preprocessor by one physical step.
// It reports false when input is exhausted or a fatal error occurred.
func (ls *lineSource) materialize() bool {
	for {
		frame := ls.topFrame()
		if frame == nil {
			if len(ls.conds) > 0 {
				ls.diags.warnf(Location{}, "unterminated conditional directive")
				ls.conds = nil
			}
			return false
		}
		loc := Location{File: frame.file, Line: frame.pos + 1}
		text := frame.lines[frame.pos]
		frame.pos++

		// Line continuation: trailing space+backslash joins the next line.
		for strings.HasSuffix(text, " \\") && frame.pos < len(frame.lines) {
			text = strings.TrimRight(text[:len(text)-1], " \t") +
				" " + strings.TrimLeft(frame.lines[frame.pos], " \t")
			frame.pos++
		}

		if dir, ok := parseDirective(text); ok {
			if done := ls.applyDirective(dir, loc); done {
				return ls.err == nil
			}
			continue
		}
		if !ls.active() {
			continue
		}
		ls.buf = append(ls.buf, Line{Text: text, File: loc.File, Number: loc.Line})
		return true
	}
}

func (ls *lineSource) topFrame() *sourceFrame {
	for len(ls.frames) > 0 {
		frame := ls.frames[len(ls.frames)-1]
		if frame.pos < len(frame.lines) {
			return frame
		}
		ls.frames = ls.frames[:len(ls.frames)-1]
	}
	return nil
}

func (ls *lineSource) active() bool {
	for _, c := range ls.conds {
		if !c {
			return false
		}
	}
	return true
}

// directive is a preprocessor directive line.
type directive struct {
	name   string // ifdef, ifndef, ifeval, endif, include
	target string // text between :: and [
	body   string // text between the brackets
}

func parseDirective(text string) (directive, bool) {
	var d directive
	rest := ""
	switch {
	case strings.HasPrefix(text, "ifdef::"):
		d.name, rest = "ifdef", text[len("ifdef::"):]
	case strings.HasPrefix(text, "ifndef::"):
		d.name, rest = "ifndef", text[len("ifndef::"):]
	case strings.HasPrefix(text, "ifeval::"):
		d.name, rest = "ifeval", text[len("ifeval::"):]
	case strings.HasPrefix(text, "endif::"):
		d.name, rest = "endif", text[len("endif::"):]
	case strings.HasPrefix(text, "include::"):
		d.name, rest = "include", text[len("include::"):]
	default:
		return directive{}, false
	}
	open := strings.IndexByte(rest, '[')
	if open < 0 || !strings.HasSuffix(rest, "]") {
		return directive{}, false
	}
	d.target = rest[:open]
	d.body = rest[open+1 : len(rest)-1]
	if d.name == "include" && d.target == "" {
		return directive{}, false
	}
	return d, true
}

// applyDirective processes one directive.
// It reports whether a line was appended to the buffer
// (single-line conditional form) or a fatal error was recorded.
func (ls *lineSource) applyDirective(d directive, loc Location) bool {
	switch d.name {
	case "endif":
		if len(ls.conds) == 0 {
			ls.diags.warnf(loc, "endif::[] without matching conditional")
			return false
		}
		ls.conds = ls.conds[:len(ls.conds)-1]
		return false

	case "ifdef", "ifndef":
		cond := ls.evalDefined(d.target)
		if d.name == "ifndef" {
			cond = !cond
		}
		return ls.finishConditional(d, loc, cond)

	case "ifeval":
		cond := false
		if d.body == "" || d.target != "" {
			ls.diags.warnf(loc, "malformed ifeval directive")
		} else {
			var malformed string
			cond, malformed = evalCondition(d.body, ls.table)
			if malformed != "" {
				ls.diags.warnf(loc, "conditional evaluation failed: %s", malformed)
				cond = false
			}
		}
		return ls.finishConditional(directive{name: d.name}, loc, cond)

	case "include":
		if !ls.active() {
			return false
		}
		ls.include(d.target, loc)
		return ls.err != nil
	}
	return false
}

func (ls *lineSource) finishConditional(d directive, loc Location, cond bool) bool {
	if d.body != "" && d.name != "ifeval" {
		// Single-line form: the bracket text is the conditional content.
		if cond && ls.active() {
			ls.buf = append(ls.buf, Line{Text: d.body, File: loc.File, Number: loc.Line})
			return true
		}
		return false
	}
	ls.conds = append(ls.conds, cond)
	return false
}

// evalDefined evaluates an ifdef/ifndef target:
// a single attribute name, a comma list (any), or a plus list (all).
func (ls *lineSource) evalDefined(target string) bool {
	if strings.ContainsRune(target, ',') {
		for _, name := range strings.Split(target, ",") {
			if ls.table.IsSet(name) {
				return true
			}
		}
		return false
	}
	for _, name := range strings.Split(target, "+") {
		if !ls.table.IsSet(name) {
			return false
		}
	}
	return true
}

// evalCondition evaluates an ifeval expression: lhs op rhs
// with operators ==, !=, <, >, <=, >= over attribute-expanded operands.
// A non-empty malformed message means the expression could not be evaluated.
func evalCondition(expr string, table *AttributeTable) (result bool, malformed string) {
	expr = table.expandReferences(expr)
	op, opIndex := "", -1
	inQuote := byte(0)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
		case '=', '!', '<', '>':
			if i+1 < len(expr) && expr[i+1] == '=' {
				op, opIndex = expr[i:i+2], i
			} else if c == '<' || c == '>' {
				op, opIndex = expr[i:i+1], i
			} else {
				continue
			}
		}
		if op != "" {
			break
		}
	}
	if op == "" {
		return false, "no comparison operator in " + strconv.Quote(expr)
	}
	lhs := strings.TrimSpace(expr[:opIndex])
	rhs := strings.TrimSpace(expr[opIndex+len(op):])
	if lhs == "" || rhs == "" {
		return false, "missing operand in " + strconv.Quote(expr)
	}

	var cmp int
	lnum, lerr := strconv.ParseFloat(lhs, 64)
	rnum, rerr := strconv.ParseFloat(rhs, 64)
	if lerr == nil && rerr == nil {
		switch {
		case lnum < rnum:
			cmp = -1
		case lnum > rnum:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(unquoteAttr(lhs), unquoteAttr(rhs))
	}
	switch op {
	case "==":
		return cmp == 0, ""
	case "!=":
		return cmp != 0, ""
	case "<":
		return cmp < 0, ""
	case "<=":
		return cmp <= 0, ""
	case ">":
		return cmp > 0, ""
	case ">=":
		return cmp >= 0, ""
	}
	return false, "unknown operator " + op
}

func (ls *lineSource) include(target string, loc Location) {
	if len(ls.frames) >= maxIncludeDepth {
		ls.err = fatalf(IncludeDepthExceeded, loc, "include::%s[] nested more than %d levels", target, maxIncludeDepth)
		return
	}
	var text []byte
	var err error
	if ls.opts.Resolver == nil {
		err = errNoResolver
	} else {
		text, err = ls.opts.Resolver.Resolve(target)
	}
	if err != nil {
		if ls.opts.Strict {
			ls.err = fatalf(ResolutionFailed, loc, "include::%s[]: %v", target, err)
			return
		}
		ls.diags.warnf(loc, "unresolved include::%s[]: %v", target, err)
		ls.buf = append(ls.buf, Line{
			Text:    "include::" + target + "[]",
			File:    loc.File,
			Number:  loc.Line,
			residue: true,
		})
		return
	}
	ls.frames = append(ls.frames, &sourceFrame{
		file:  target,
		lines: splitLines(text),
	})
}

var errNoResolver = noResolverError{}

type noResolverError struct{}

func (noResolverError) Error() string { return "no include resolver configured" }

// sliceStream replays already-preprocessed lines,
// used to parse the bodies of container blocks and table cells.
type sliceStream struct {
	lines []Line
	pos   int
}

func (s *sliceStream) next() (Line, bool) {
	if s.pos >= len(s.lines) {
		return Line{}, false
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true
}

func (s *sliceStream) peek() (Line, bool) {
	if s.pos >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[s.pos], true
}

func (s *sliceStream) fatal() error { return nil }

func isBlankLine(text string) bool {
	for i := 0; i < len(text); i++ {
		if b := text[i]; !(b == ' ' || b == '\t') {
			return false
		}
	}
	return true
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s string) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}
