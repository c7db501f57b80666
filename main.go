package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sadopc/controlwork/internal/cli"
	"github.com/sadopc/controlwork/internal/logger"
)

var version = "dev"

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding settings, database and logs." type:"path" env:"CONTROLWORK_DIR"`
	Debug     bool   `help:"Verbose logging, mirrored to stderr."`

	Run    cli.RunCmd    `cmd:"" default:"1" help:"Track work time and remind about breaks."`
	Stats  cli.StatsCmd  `cmd:"" help:"Show totals for the current workday."`
	Export cli.ExportCmd `cmd:"" help:"Export session history."`
	Serve  cli.ServeCmd  `cmd:"" help:"Serve read-only stats over HTTP."`
	Config cli.ConfigCmd `cmd:"" help:"Show or initialize settings."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("controlwork"),
		kong.Description("Work time tracker with break reminders"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	dir, err := cli.ResolveDir(CLI.ConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	appCtx := cli.NewContext(dir)
	if err := kctx.Run(appCtx); err != nil {
		logger.Error("command failed", "cmd", kctx.Command(), "err", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
