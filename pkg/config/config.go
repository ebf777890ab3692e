// Package config resolves htmlasm settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sofuetakuma112/htmlasm/pkg/assembler"
	"github.com/sofuetakuma112/htmlasm/pkg/markup"
)

const DefaultEnvFile = ".env"

// 環境変数名
const (
	EnvRoot           = "HTMLASM_ROOT"
	EnvOut            = "HTMLASM_OUT"
	EnvHeader         = "HTMLASM_HEADER"
	EnvFooter         = "HTMLASM_FOOTER"
	EnvMode           = "HTMLASM_MODE"
	EnvCollisions     = "HTMLASM_COLLISIONS"
	EnvKeepGoing      = "HTMLASM_KEEP_GOING"
	EnvMarkdown       = "HTMLASM_MARKDOWN"
	EnvMarkdownEngine = "HTMLASM_MARKDOWN_ENGINE"
	EnvManifest       = "HTMLASM_MANIFEST"
)

type Config struct {
	Root           string
	OutDir         string // empty means Root
	Header         string
	Footer         string
	Mode           string
	Collisions     string
	KeepGoing      bool
	Markdown       bool
	MarkdownEngine string
	Manifest       string // empty disables the build history
}

func Defaults() Config {
	return Config{
		Root:           ".",
		Header:         assembler.DefaultHeader,
		Footer:         assembler.DefaultFooter,
		Mode:           string(assembler.ModeWrite),
		Collisions:     string(assembler.CollisionOverwrite),
		MarkdownEngine: markup.DefaultEngine,
	}
}

// FromEnv overlays the variables found by lookup on Defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Defaults()

	strs := []struct {
		key string
		dst *string
	}{
		{EnvRoot, &c.Root},
		{EnvOut, &c.OutDir},
		{EnvHeader, &c.Header},
		{EnvFooter, &c.Footer},
		{EnvMode, &c.Mode},
		{EnvCollisions, &c.Collisions},
		{EnvMarkdownEngine, &c.MarkdownEngine},
		{EnvManifest, &c.Manifest},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvKeepGoing, &c.KeepGoing},
		{EnvMarkdown, &c.Markdown},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%s=%q: %w", b.key, v, err)
		}
		*b.dst = parsed
	}

	return c, nil
}

// Load reads envFile with godotenv and resolves the configuration from it
// and the process environment. Process variables win over the file. A
// missing DefaultEnvFile is ignored; any other missing file is an error.
func Load(envFile string) (Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist) && envFile == DefaultEnvFile:
		default:
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	return FromEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// Options converts c to assembler options. Stdout and Observer are left for
// the caller.
func (c Config) Options() assembler.Options {
	return assembler.Options{
		Root:           c.Root,
		OutDir:         c.OutDir,
		Header:         c.Header,
		Footer:         c.Footer,
		Mode:           assembler.Mode(c.Mode),
		Collisions:     assembler.CollisionPolicy(c.Collisions),
		KeepGoing:      c.KeepGoing,
		Markdown:       c.Markdown,
		MarkdownEngine: c.MarkdownEngine,
	}
}

func (c Config) Validate() error {
	return c.Options().Validate()
}
