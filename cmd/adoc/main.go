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

// adoc converts AsciiDoc documents to HTML.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/asciidoc"
)

func main() {
	c := &cobra.Command{
		Use:           "adoc [flags] [FILE]",
		Short:         "Convert AsciiDoc to HTML",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	outputPath := c.Flags().StringP("output", "o", "", "write output to `file` instead of stdout")
	embedded := c.Flags().BoolP("embedded", "e", false, "suppress enclosing document structure")
	strict := c.Flags().Bool("strict", false, "fail on unresolvable includes")
	attrFlags := c.Flags().StringArrayP("attribute", "a", nil, "set a document attribute (`name=value`), repeatable")
	attrFile := c.Flags().String("attributes-file", "", "read document attributes from a YAML `file`")
	format := c.Flags().StringP("format", "f", "html", "output `format` (html)")
	printTimings := c.Flags().Bool("print-timings", false, "report parse and render durations on stderr")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) > 0 {
			input = args[0]
		}
		opts := &runOptions{
			input:        input,
			outputPath:   *outputPath,
			format:       *format,
			embedded:     *embedded,
			strict:       *strict,
			attrFlags:    *attrFlags,
			attrFile:     *attrFile,
			printTimings: *printTimings,
		}
		return run(cmd, opts)
	}

	if err := c.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "adoc:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	input        string
	outputPath   string
	format       string
	embedded     bool
	strict       bool
	attrFlags    []string
	attrFile     string
	printTimings bool
}

func run(cmd *cobra.Command, opts *runOptions) error {
	if opts.format != "html" {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	attrs, err := loadAttributes(opts.attrFlags, opts.attrFile)
	if err != nil {
		return err
	}

	source, sourceName, resolver, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}

	parseStart := time.Now()
	doc, diags, err := asciidoc.Parse(source, &asciidoc.Options{
		SourceName: sourceName,
		Attributes: attrs,
		Resolver:   resolver,
		Embedded:   opts.embedded,
		Strict:     opts.strict,
	})
	parseTime := time.Since(parseStart)
	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	r := &asciidoc.HTMLRenderer{Embedded: opts.embedded}
	renderStart := time.Now()
	if err := r.Render(out, doc); err != nil {
		return err
	}
	if opts.printTimings {
		fmt.Fprintf(cmd.ErrOrStderr(), "parse %v, render %v\n", parseTime, time.Since(renderStart))
	}
	return nil
}

func readInput(stdin io.Reader, input string) (source []byte, sourceName string, resolver asciidoc.IncludeResolver, err error) {
	if input == "" || input == "-" {
		source, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return source, "<stdin>", dirResolver("."), nil
	}
	source, err = os.ReadFile(input)
	if err != nil {
		return nil, "", nil, err
	}
	return source, input, dirResolver(filepath.Dir(input)), nil
}

// dirResolver loads include targets relative to the main document's directory.
type dirResolver string

func (d dirResolver) Resolve(target string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), filepath.FromSlash(target)))
}

// loadAttributes merges -a flags over an attributes file.
// A trailing "!" on a flag name requests a hard unset,
// expressed here as an empty locked value.
func loadAttributes(flags []string, file string) (map[string]string, error) {
	attrs := make(map[string]string)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var fromFile map[string]string
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		for k, v := range fromFile {
			attrs[k] = v
		}
	}
	for _, f := range flags {
		name, value, hasValue := strings.Cut(f, "=")
		name = strings.TrimSuffix(name, "!")
		if name == "" {
			return nil, fmt.Errorf("invalid attribute flag %q", f)
		}
		if !hasValue {
			value = ""
		}
		attrs[name] = value
	}
	return attrs, nil
}
