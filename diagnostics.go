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

// Severity classifies a [Diagnostic].
type Severity int8

const (
	// Warning indicates a recoverable condition.
	// Warnings never prevent a [Document] from being produced.
	Warning Severity = 1 + iota
	// Error indicates an unrecoverable structural condition.
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int8(s))
	}
}

// A Diagnostic is a message about a condition encountered during parsing,
// tagged with the source location that triggered it.
// Diagnostics are accumulated in document order.
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string
	Line     int
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("line %d: %v: %s", d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d: %v: %s", d.File, d.Line, d.Severity, d.Message)
}

// ErrorKind enumerates the fatal error conditions of [ParseError].
type ErrorKind int8

const (
	// IncludeDepthExceeded reports that include directives
	// recursed past the depth limit.
	IncludeDepthExceeded ErrorKind = 1 + iota
	// StructureTooDeep reports that block nesting
	// exceeded the parser's depth guard.
	StructureTooDeep
	// ResolutionFailed reports that an include target could not be resolved
	// while strict mode was requested.
	ResolutionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case IncludeDepthExceeded:
		return "include depth exceeded"
	case StructureTooDeep:
		return "structure too deep"
	case ResolutionFailed:
		return "include resolution failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int8(k))
	}
}

// A ParseError is returned by [Parse] for fatal conditions.
// No document tree accompanies a ParseError.
type ParseError struct {
	Kind ErrorKind
	File string
	Line int
	msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.msg)
}

// diagSink accumulates diagnostics during a single parse.
type diagSink struct {
	diags []Diagnostic
}

func (s *diagSink) warnf(loc Location, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		File:     loc.File,
		Line:     loc.Line,
	})
}

func fatalf(kind ErrorKind, loc Location, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind: kind,
		File: loc.File,
		Line: loc.Line,
		msg:  fmt.Sprintf(format, args...),
	}
}
