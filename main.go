package main

import (
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/ii64/dt/cmd"
	"github.com/ii64/dt/conf"
	"github.com/ii64/dt/lib/proc"
)

const version = "0.1.0"

var (
	stdout        io.Writer = os.Stdout
	consoleOutput io.Writer = os.Stderr
	errorColor              = color.New(color.FgRed, color.Bold)
)

func newLogger(verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(consoleOutput))
	if !verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// handleInterrupt kills running children on SIGINT and exits.
func handleInterrupt(logger log.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		n := proc.KillActive()
		level.Debug(logger).Log("msg", "interrupted", "killed", n)
		os.Exit(1)
	}()
}

func _main(args []string) (code cmd.Code) {
	var (
		err    error
		logger log.Logger
	)
	cfg := conf.Default()
	app := kingpin.New(filepath.Base(os.Args[0]), "Small disassembly and ELF symbol listing tool.").UsageWriter(stdout)
	app.Version(version)
	app.HelpFlag.Short('h')
	cfg.Register(app)

	if _, err = app.Parse(args); err != nil {
		code = cmd.BadArg
		if strings.Contains(err.Error(), "required argument") {
			code = cmd.MissingArg
		}
		goto Exit
	}
	if err = cfg.Validate(); err != nil {
		code = cmd.BadArg
		goto Exit
	}

	logger = newLogger(cfg.Verbose)
	handleInterrupt(logger)

	code, err = cmd.Main(cfg, logger, stdout)
Exit:
	if err != nil {
		errorColor.Fprintf(consoleOutput, "error: %s\n", err)
		if code == cmd.MissingArg || code == cmd.BadArg {
			app.Usage(args)
		}
	}
	return
}

func main() {
	os.Exit(int(_main(os.Args[1:])))
}
