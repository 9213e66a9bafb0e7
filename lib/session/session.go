// Package session renders the symbol tables of one loaded binary, resolving
// each table the first time it is asked for.
package session

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/ii64/dt/lib/obj"
	"github.com/ii64/dt/lib/symtab"
)

// Resolver is the resolution step a Session caches. symtab.Resolver is the
// implementation used unless WithResolver replaces it.
type Resolver interface {
	ResolveSymbols(t *obj.SymbolTable) []symtab.Symbol
	ResolveVersions(syms []symtab.Symbol, v *obj.VersionData) int
}

type Option func(*Session) error

func WithOutput(w io.Writer) Option {
	return func(s *Session) error {
		s.out = w
		return nil
	}
}

func WithLogger(logger log.Logger) Option {
	return func(s *Session) error {
		s.logger = logger
		return nil
	}
}

func WithResolver(r Resolver) Option {
	return func(s *Session) error {
		s.resolver = r
		return nil
	}
}

// WithDemangle sets the demangling mode of the default resolver. It has no
// effect once WithResolver has been applied.
func WithDemangle(mode string) Option {
	return func(s *Session) error {
		opts, err := symtab.DemangleOptions(mode)
		if err != nil {
			return err
		}
		if r, ok := s.resolver.(symtab.Resolver); ok {
			r.Demangle = opts
			s.resolver = r
		}
		return nil
	}
}

// Session owns one parsed binary. It is not safe for concurrent use.
type Session struct {
	obj      *obj.Object
	out      io.Writer
	logger   log.Logger
	resolver Resolver

	staticDone  bool
	static      []symtab.Symbol
	dynamicDone bool
	dynamic     []symtab.Symbol
}

// New parses b. A malformed binary is the only error reported here and no
// Session is returned with it.
func New(label string, b []byte, opts ...Option) (*Session, error) {
	s := &Session{
		out:      os.Stdout,
		logger:   log.NewNopLogger(),
		resolver: symtab.Resolver{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "session option")
		}
	}
	o, err := obj.Load(label, b)
	if err != nil {
		return nil, err
	}
	s.obj = o
	s.logger = log.With(s.logger, "file", label)
	return s, nil
}

func (s *Session) Object() *obj.Object {
	return s.obj
}

// StaticSymbols returns .symtab resolved, resolving it on first use.
func (s *Session) StaticSymbols() []symtab.Symbol {
	if s.staticDone {
		return s.static
	}
	s.static = s.resolver.ResolveSymbols(s.obj.Static)
	s.staticDone = true
	s.logPlaceholders(".symtab", s.static)
	return s.static
}

// DynamicSymbols returns .dynsym resolved with its versions attached,
// resolving it on first use.
func (s *Session) DynamicSymbols() []symtab.Symbol {
	if s.dynamicDone {
		return s.dynamic
	}
	s.dynamic = s.resolver.ResolveSymbols(s.obj.Dynamic)
	s.dynamicDone = true
	s.logPlaceholders(".dynsym", s.dynamic)

	if len(s.dynamic) == 0 {
		return s.dynamic
	}
	if !s.obj.Versions.Present() {
		level.Debug(s.logger).Log("msg", "no symbol versioning data")
		return s.dynamic
	}
	n := s.resolver.ResolveVersions(s.dynamic, &s.obj.Versions)
	level.Debug(s.logger).Log("msg", "resolved symbol versions", "versioned", n, "symbols", len(s.dynamic))
	return s.dynamic
}

func (s *Session) DisplayDynSyms() error {
	return s.display(tableName(s.obj.Dynamic, ".dynsym"), s.DynamicSymbols())
}

func (s *Session) DisplaySymtab() error {
	return s.display(tableName(s.obj.Static, ".symtab"), s.StaticSymbols())
}

// DisplaySymbolTables writes .dynsym then .symtab, each followed by a blank
// line when it was written.
func (s *Session) DisplaySymbolTables() error {
	if err := s.DisplayDynSyms(); err != nil {
		return err
	}
	return s.DisplaySymtab()
}

func (s *Session) DisplayVersionNeeds() error {
	return errors.Wrap(symtab.WriteVersionNeeds(s.out, &s.obj.Versions), "write version needs")
}

func (s *Session) display(name string, syms []symtab.Symbol) error {
	if len(syms) == 0 {
		level.Debug(s.logger).Log("msg", "empty symbol table", "table", name)
		return nil
	}
	if err := symtab.WriteTable(s.out, name, syms); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	_, err := io.WriteString(s.out, "\n")
	return errors.Wrapf(err, "write %s", name)
}

func (s *Session) logPlaceholders(name string, syms []symtab.Symbol) {
	var n int
	for _, sym := range syms {
		if sym.Name == symtab.Placeholder {
			n++
		}
	}
	if n > 0 {
		level.Debug(s.logger).Log("msg", "unreadable symbol names", "table", name, "count", n)
	}
}

func tableName(t *obj.SymbolTable, fallback string) string {
	if t == nil || t.Name == "" {
		return fallback
	}
	return t.Name
}
