// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command har reads and converts GEMPACK/GTAP Header Array files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gtap-toolkit/har"
	"github.com/gtap-toolkit/har/internal/log"
)

var verbose bool

func main() {
	var rootCmd = &cobra.Command{
		Use:   "har",
		Short: "A Header Array (HAR/SL4/HARX) file tool",
		Long:  "Reads, validates, and converts GEMPACK/GTAP Header Array files.",
	}

	var readCmd = &cobra.Command{
		Use:   "read <file>",
		Short: "Read a .har, .sl4, or .harx file and print a summary of its arrays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(args[0])
		},
	}

	var convertCmd = &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between .har/.sl4 and .harx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print validation messages")
	rootCmd.AddCommand(readCmd, convertCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger() *log.Helper {
	level := log.LevelError
	if verbose {
		level = log.LevelInfo
	}
	return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(level)))
}

func isHARX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".harx")
}

func readAll(path string, l *log.Helper) ([]*har.HeaderArray, error) {
	if isHARX(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return har.ReadHARX(f, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return har.All(har.NewReader(f, &har.ReaderOptions{Logger: l}))
}

func runRead(path string) error {
	l := logger()
	arrays, err := readAll(path, l)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	v := har.NewValidator(&har.ValidatorOptions{Logger: l})
	v.AddAll(arrays)

	for _, arr := range arrays {
		fmt.Println(arr.String())
	}
	if verbose && v.Consistent() {
		l.Infof("all %d sets consistent across %d arrays", len(v.SetNames()), len(arrays))
	}
	return nil
}

func runConvert(in, out string) error {
	l := logger()
	arrays, err := readAll(in, l)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	outFile, err := os.Create(out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if isHARX(out) {
		return har.WriteHARX(outFile, arrays)
	}

	w := har.NewWriter(outFile, &har.WriterOptions{Logger: l})
	for _, arr := range arrays {
		if err := w.Write(arr); err != nil {
			return fmt.Errorf("writing %s: %w", arr.Header, err)
		}
	}
	return nil
}
