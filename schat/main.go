// Command schat is a terminal client for the stock chat assistant.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/cmd"
	"github.com/etnz/stockchat/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	// handles the shell completion requests, and exits.
	completion().Complete(name)

	flag.Parse()

	if sub := flag.Arg(0); sub != "" && !registered(commander, sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.toml"),
			"server": predict.Something,
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"chat": {
				Flags: map[string]complete.Predictor{"no-load": predict.Nothing},
				Args:  predict.Something,
			},
			"ask": {
				Flags: map[string]complete.Predictor{"tools": predict.Nothing},
				Args:  predict.Something,
			},
			"portfolio": {
				Flags: map[string]complete.Predictor{"json": predict.Nothing},
			},
			"set": {
				Flags: map[string]complete.Predictor{"example": predict.Set(stockchat.PresetNames())},
				Args:  predict.Something,
			},
			"topic": {
				Args: predict.Set(append(docs.Names(), docs.All)),
			},
			"help":  {},
			"flags": {},
		},
	}
}
