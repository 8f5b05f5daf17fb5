package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/stockchat/config"
	"github.com/etnz/stockchat/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `topic [<topic>...]

Show documentation for the given topics, '*' for all. Without topic, show the
list of topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}

	doc, err := docs.Topics(topics...)
	if err != nil {
		return fail(err)
	}
	// documentation does not need the server: a broken config is not an error.
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.Default()
	}
	newAppFromConfig(cfg).printMarkdown(os.Stdout, doc)
	return subcommands.ExitSuccess
}
