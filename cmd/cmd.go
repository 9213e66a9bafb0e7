package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/ii64/dt/conf"
	"github.com/ii64/dt/lib/disasm"
	"github.com/ii64/dt/lib/obj"
	"github.com/ii64/dt/lib/proc/gdb"
	"github.com/ii64/dt/lib/session"
	"github.com/ii64/dt/lib/symtab"
)

// Main runs the actions of a validated cfg, writing listings to out.
func Main(cfg *conf.Config, logger log.Logger, out io.Writer) (Code, error) {
	b, err := os.ReadFile(cfg.File)
	if err != nil {
		return IoReadFail, errors.Wrap(err, "read file")
	}
	level.Debug(logger).Log("msg", "read file", "file", cfg.File, "bytes", len(b))

	s, err := session.New(cfg.File, b,
		session.WithOutput(out),
		session.WithLogger(logger),
		session.WithDemangle(cfg.Demangle),
	)
	if err != nil {
		if errors.Is(err, obj.ErrMalformed) {
			return ElfParse, err
		}
		return BadArg, err
	}

	for _, action := range cfg.Actions {
		level.Debug(logger).Log("msg", "run action", "action", action)
		switch action {
		case conf.ActionSymbolTables:
			err = s.DisplaySymbolTables()
		case conf.ActionDynSyms:
			err = s.DisplayDynSyms()
		case conf.ActionSymtab:
			err = s.DisplaySymtab()
		case conf.ActionVersionNeeds:
			err = s.DisplayVersionNeeds()
		case conf.ActionDisassemble:
			return disassemble(cfg, logger, s, out)
		default:
			return BadArg, errors.Errorf("unknown action %d", action)
		}
		if err != nil {
			return IoReadFail, err
		}
	}
	return Success, nil
}

func disassemble(cfg *conf.Config, logger log.Logger, s *session.Session, out io.Writer) (Code, error) {
	debug := s.Object().HasDebugInfo()
	if debug {
		fmt.Fprintln(out, "[+] Debug symbols found")
	} else {
		fmt.Fprintln(out, "[*] No debug symbols found")
	}

	if cfg.UseGDB {
		g, err := gdb.New(cfg.GDBPath, cfg.File, cfg.Func, debug)
		if err != nil {
			return BadArg, err
		}
		level.Debug(logger).Log("msg", "running gdb", "args", fmt.Sprint(g.Process().Args))
		if err = g.Run(out); err != nil {
			return BadArg, err
		}
		return Success, nil
	}

	syntax, err := disasm.ParseSyntax(cfg.Syntax)
	if err != nil {
		return BadArg, err
	}
	static, dynamic := s.StaticSymbols(), s.DynamicSymbols()
	syms := make([]symtab.Symbol, 0, len(static)+len(dynamic))
	syms = append(syms, static...)
	syms = append(syms, dynamic...)

	err = disasm.Function(out, s.Object(), syms, cfg.Func, syntax)
	switch {
	case err == nil:
		return Success, nil
	case errors.Is(err, disasm.ErrNoFunction), errors.Is(err, disasm.ErrUnsupported):
		return BadArg, err
	}
	return ElfParse, err
}
