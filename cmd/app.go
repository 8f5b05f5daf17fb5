// Package cmd implements the schat command line application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/config"
	"github.com/etnz/stockchat/logging"
	"github.com/etnz/stockchat/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands are the subcommands of schat.
var Commands = []subcommands.Command{
	&chatCmd{},
	&askCmd{},
	&portfolioCmd{},
	&setCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "stockchat.toml", "path to the TOML configuration file, skipped when missing")
	serverURL  = flag.String("server", "", "chat server URL, overrides the configuration")
	// Verbose enables console logging at debug level.
	Verbose = flag.Bool("v", false, "log backend requests on the console")
)

// app is what every subcommand needs, resolved from the configuration.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *stockchat.Client
}

// loadConfig resolves the configuration from the file, the .env file, the
// environment and the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile, ".env", os.Getenv)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, *serverURL, *Verbose)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg), nil
}

func newAppFromConfig(cfg *config.Config) *app {
	log := logging.New(cfg.Logging)
	endpoints := stockchat.Endpoints{
		GetPortfolio: cfg.Server.PortfolioPath,
		SetPortfolio: cfg.Server.SavePath,
		Chat:         cfg.Server.ChatPath,
	}
	return &app{
		cfg:    cfg,
		log:    log,
		client: stockchat.NewClient(cfg.Server.URL, endpoints, log),
	}
}

// terminal creates the markdown view of the configured display writing to w.
func (a *app) terminal(w io.Writer) (*renderer.Terminal, error) {
	return renderer.NewTerminal(w, renderer.TerminalOptions{
		Style:    a.cfg.Display.Style,
		WordWrap: a.cfg.Display.WordWrap,
		Currency: a.cfg.Display.Currency,
	})
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func (a *app) printMarkdown(w io.Writer, md string) {
	term, err := a.terminal(w)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, term.Markdown(md))
}

// fail prints err and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
