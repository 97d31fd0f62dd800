// FILE: logroute/src/cmd/logroute/output.go
package main

import (
	"fmt"
	"io"
	"os"
)

// console prints user facing CLI messages. Quiet mode silences errors too.
type console struct {
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

var out = &console{stdout: os.Stdout, stderr: os.Stderr}

func InitOutputHandler(quiet bool) {
	out = &console{quiet: quiet, stdout: os.Stdout, stderr: os.Stderr}
}

func (c *console) printf(w io.Writer, format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(w, format, args...)
}

func Print(format string, args ...any) {
	out.printf(out.stdout, format, args...)
}

func Error(format string, args ...any) {
	out.printf(out.stderr, format, args...)
}

// FatalError prints and exits with code.
func FatalError(code int, format string, args ...any) {
	Error(format, args...)
	os.Exit(code)
}
