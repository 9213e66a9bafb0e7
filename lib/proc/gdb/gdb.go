package gdb

import (
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/ii64/dt/lib/proc"
)

var DefaultGDB = "/usr/bin/gdb"

type GDB struct {
	p      *proc.Process
	source bool
}

// New prepares a batch gdb run disassembling function in the binary at path.
// With source set the listing interleaves source lines and raw bytes, which
// needs debug info.
func New(gdbPath, path, function string, source bool) (*GDB, error) {
	if gdbPath == "" {
		gdbPath = DefaultGDB
	}
	if err := checkArgs(path, function); err != nil {
		return nil, err
	}
	g := &GDB{source: source}
	g.p = proc.New(gdbPath, Args(path, function, source))
	return g, nil
}

// Args is the gdb command line:
//
//	gdb -batch -ex "disassemble/rs FUNC" PATH
//	gdb -batch -ex "file PATH" -ex "disassemble FUNC"
func Args(path, function string, source bool) []string {
	if source {
		return []string{"-batch", "-ex", "disassemble/rs " + function, path}
	}
	return []string{"-batch", "-ex", "file " + path, "-ex", "disassemble " + function}
}

func checkArgs(path, function string) error {
	switch {
	case path == "":
		return errors.New("empty file path")
	case strings.HasPrefix(path, "-"):
		return errors.Errorf("disallowed file path %q", path)
	case function == "":
		return errors.New("empty function name")
	case strings.HasPrefix(function, "-"):
		return errors.Errorf("disallowed function name %q", function)
	case strings.IndexFunc(function, unicode.IsSpace) >= 0:
		return errors.Errorf("disallowed function name %q", function)
	}
	return nil
}

func (g *GDB) Process() *proc.Process {
	return g.p
}

// Run waits for gdb and copies its stderr then its stdout to w.
func (g *GDB) Run(w io.Writer) error {
	stdout, stderr, err := g.p.Output()
	if err != nil {
		return err
	}
	if g.source {
		if _, err = io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	for _, b := range [][]byte{stderr, stdout} {
		if _, err = w.Write(b); err != nil {
			return err
		}
		if _, err = io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
