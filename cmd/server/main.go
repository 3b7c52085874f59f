package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/zeusync/planetoid/internal/config"
	"github.com/zeusync/planetoid/internal/injector"
	"github.com/zeusync/planetoid/internal/core/observability/log"
)

// Set at build time with -ldflags "-X main.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Config string `arg:"" optional:"" name:"config" help:"YAML configuration file." type:"existingfile"`
		Token  string `help:"Require this token from clients." env:"PLANETOID_TOKEN"`
	} `cmd:"" default:"withargs" help:"Start the planetoid server."`

	Config struct {
		Config string `arg:"" optional:"" name:"config" help:"YAML configuration file to merge over the defaults." type:"existingfile"`
	} `cmd:"" help:"Write the effective configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("planetoid"),
		kong.Description("a server-authoritative planetoid movement simulation"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Version {
		fmt.Printf("planetoid %s (commit %s)\n", Version, GitCommit)
		os.Exit(0)
	}

	var err error
	switch ctx.Command() {
	case "serve", "serve <config>":
		err = serveCommand(CLI.Serve.Config, CLI.Serve.Token, CLI.Debug)
	case "config", "config <config>":
		err = configCommand(CLI.Config.Config)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		writeError(err)
	}
}

func configCommand(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func serveCommand(path, token string, debug bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if token != "" {
		cfg.Server.Token = token
	}
	if debug {
		cfg.Log.Encoding = "console"
		cfg.Log.Development = true
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if debug {
		// Raises every component logger derived from the root.
		app.Logger.SetLevel(log.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("Starting planetoid",
		log.String("version", Version),
		log.String("config", path),
		log.Int("tick_rate", cfg.Simulation.Manager.TickRate))

	if err = app.Run(ctx); err != nil {
		app.Logger.Error("Server failed", log.Error(err))
		return err
	}

	app.Logger.Info("Shutdown complete")
	return nil
}
