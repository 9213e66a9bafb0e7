package conf

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/ii64/dt/lib/disasm"
	"github.com/ii64/dt/lib/proc/gdb"
	"github.com/ii64/dt/lib/symtab"
)

var ErrConflict = errors.New("conflicting flags")

type Action int

const (
	// ActionSymbolTables lists .dynsym then .symtab.
	ActionSymbolTables Action = iota
	ActionDynSyms
	ActionSymtab
	ActionVersionNeeds
	ActionDisassemble
)

func (a Action) String() string {
	switch a {
	case ActionSymbolTables:
		return "symbol-tables"
	case ActionDynSyms:
		return "dyn-syms"
	case ActionSymtab:
		return "syms"
	case ActionVersionNeeds:
		return "version-info"
	case ActionDisassemble:
		return "disassemble"
	}
	return "unknown"
}

type Config struct {
	// File is the ELF binary to inspect, made absolute by Validate.
	File string

	// Func is the function to disassemble. It excludes every listing flag.
	Func        string
	ListSymbols bool
	DynSyms     bool
	Syms        bool
	VersionInfo bool

	Demangle string
	Syntax   string
	UseGDB   bool
	GDBPath  string

	ConfigFile string
	Verbose    bool

	// Actions is filled by Validate, in output order.
	Actions []Action
}

func Default() *Config {
	return &Config{}
}

func (cfg *Config) Validate() (err error) {
	if cfg.ConfigFile != "" {
		if !validateFilePath(cfg.ConfigFile) {
			return errors.Errorf("config file %q: missing or not a regular file", cfg.ConfigFile)
		}
		var f *File
		if f, err = LoadFile(cfg.ConfigFile); err != nil {
			return
		}
		f.apply(cfg)
	}
	if cfg.Demangle == "" {
		cfg.Demangle = "none"
	}
	if cfg.Syntax == "" {
		cfg.Syntax = "gnu"
	}
	if cfg.GDBPath == "" {
		cfg.GDBPath = gdb.DefaultGDB
	}
	if _, err = symtab.DemangleOptions(cfg.Demangle); err != nil {
		return
	}
	if _, err = disasm.ParseSyntax(cfg.Syntax); err != nil {
		return
	}

	if cfg.File == "" {
		return errors.New("missing FILE")
	}
	if cfg.File, err = absPath(cfg.File); err != nil {
		return
	}

	listing := []bool{cfg.ListSymbols, cfg.DynSyms, cfg.Syms, cfg.VersionInfo}
	if cfg.Func != "" {
		if slices.Contains(listing, true) {
			return errors.Wrap(ErrConflict, "--func cannot be combined with a listing flag")
		}
		cfg.Actions = []Action{ActionDisassemble}
		return nil
	}

	cfg.Actions = cfg.Actions[:0]
	switch {
	case cfg.ListSymbols, cfg.DynSyms && cfg.Syms:
		cfg.Actions = append(cfg.Actions, ActionSymbolTables)
	case cfg.DynSyms:
		cfg.Actions = append(cfg.Actions, ActionDynSyms)
	case cfg.Syms:
		cfg.Actions = append(cfg.Actions, ActionSymtab)
	case !cfg.VersionInfo:
		cfg.Actions = append(cfg.Actions, ActionSymbolTables)
	}
	if cfg.VersionInfo {
		cfg.Actions = append(cfg.Actions, ActionVersionNeeds)
	}
	return nil
}
