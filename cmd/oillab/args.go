package main

import (
	"github.com/akamensky/argparse"
	"github.com/pkg/errors"
)

type appArgs struct {
	EnvFiles *[]string
	Migrate  *bool
	Memory   *bool
}

func parseArgs(osArgs []string) (*appArgs, string, error) {
	parser := argparse.NewParser("oillab", "Lubricant and report service")

	args := &appArgs{
		EnvFiles: parser.StringList("e", "env-file", &argparse.Options{
			Help: "Dotenv file to load, may be repeated (default .env). Missing files are ignored",
		}),
		Migrate: parser.Flag("m", "migrate", &argparse.Options{
			Help: "Create or update the database tables before serving",
		}),
		Memory: parser.Flag("M", "memory", &argparse.Options{
			Help: "Keep records in memory instead of the configured database",
		}),
	}

	if err := parser.Parse(osArgs); err != nil {
		return nil, parser.Usage(err), errors.Wrap(err, "parse arguments")
	}
	return args, "", nil
}
