package conf

import (
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/ii64/dt/lib/proc/gdb"
	"github.com/ii64/dt/lib/symtab"
)

func (c *Config) Register(app *kingpin.Application) {
	app.Arg("FILE", "Path to file").Required().StringVar(&c.File)

	app.Flag("func", "Function to disassemble").Short('f').PlaceHolder("FUNC").StringVar(&c.Func)
	app.Flag("list-symbols", "List symbols").Short('l').BoolVar(&c.ListSymbols)
	app.Flag("dyn-syms", "List dynamic symbol table").BoolVar(&c.DynSyms)
	app.Flag("syms", "List symbol table").Short('s').BoolVar(&c.Syms)
	app.Flag("version-info", "List version needs").Short('V').BoolVar(&c.VersionInfo)

	app.Flag("demangle", "Demangle symbol names: none, simplified, templates, full").Short('C').
		PlaceHolder("MODE").EnumVar(&c.Demangle, symtab.DemangleModes...)
	app.Flag("syntax", "Assembly syntax of the built-in disassembler: gnu, go").
		PlaceHolder("gnu").EnumVar(&c.Syntax, "gnu", "att", "go", "plan9")
	app.Flag("gdb", "Disassemble with gdb instead of the built-in disassembler").BoolVar(&c.UseGDB)
	app.Flag("gdb-path", "gdb executable").PlaceHolder(gdb.DefaultGDB).StringVar(&c.GDBPath)

	app.Flag("config.file", "YAML file with default settings").PlaceHolder("FILE").StringVar(&c.ConfigFile)
	app.Flag("verbose", "Enable verbose logging.").Short('v').BoolVar(&c.Verbose)
}
