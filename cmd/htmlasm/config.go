package main

import (
	"flag"

	"github.com/sofuetakuma112/htmlasm/pkg/config"
)

// loadConfig resolves the settings: flags given on the command line win over
// the environment, which wins over the .env file.
func loadConfig() (config.Config, error) {
	envPath := *envFile
	if envPath == "" {
		envPath = config.DefaultEnvFile
	}

	cfg, err := config.Load(envPath)
	if err != nil {
		return cfg, err
	}

	applyFlags(flag.CommandLine, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFlags copies every flag explicitly set on fs into cfg.
func applyFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "root":
			cfg.Root = v
		case "out":
			cfg.OutDir = v
		case "header":
			cfg.Header = v
		case "footer":
			cfg.Footer = v
		case "mode":
			cfg.Mode = v
		case "collisions":
			cfg.Collisions = v
		case "keep-going":
			cfg.KeepGoing = v == "true"
		case "markdown":
			cfg.Markdown = v == "true"
		case "markdown-engine":
			cfg.MarkdownEngine = v
		case "manifest":
			cfg.Manifest = v
		}
	})
}
