// Command htmlasm wraps every .htm file under the current directory with the
// "header" and "footer" files found there and writes the result as .html.
//
// Run without flags it does exactly that: each a/b/page.htm becomes
// ./page.html containing header ++ page.htm ++ footer, and the name of every
// written file is printed. See -h for the flags.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/cli"
	"fortio.org/log"
)

var (
	envFile        = flag.String("env", "", "`file` to read HTMLASM_* settings from (default .env, ignored when missing)")
	rootFlag       = flag.String("root", "", "`directory` to walk; also where header and footer are read from (default .)")
	outFlag        = flag.String("out", "", "`directory` the .html files are written to (default the root)")
	headerFlag     = flag.String("header", "", "header fragment `file`, relative to the root (default header)")
	footerFlag     = flag.String("footer", "", "footer fragment `file`, relative to the root (default footer)")
	modeFlag       = flag.String("mode", "", "write: create .html files; print: write the documents to stdout only (default write)")
	collisionsFlag = flag.String("collisions", "", "what to do when two sources share a base name: overwrite (last in path order wins) or error (default overwrite)")
	keepGoingFlag  = flag.Bool("keep-going", false, "skip files that cannot be read or written instead of stopping")
	markdownFlag   = flag.Bool("markdown", false, "also assemble .md files, rendered to html")
	engineFlag     = flag.String("markdown-engine", "", "markdown `engine`: goldmark, gomarkdown or blackfriday (default goldmark)")
	manifestFlag   = flag.String("manifest", "", "sqlite `file` to record every build in (default none)")
	historyFlag    = flag.Bool("history", false, "print the manifest history as JSON and exit")
	limitFlag      = flag.Int("limit", 0, "with -history, the maximum number of entries (0 for all)")
	progressFlag   = flag.Bool("progress", false, "show a progress bar on stderr")
)

func main() {
	cli.ArgsHelp = ""
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()

	os.Exit(run())
}

// run returns the process exit code.
func run() int {
	cfg, err := loadConfig()
	if err != nil {
		log.Errf("%v", err)
		return 1
	}

	if *historyFlag {
		return printHistory(cfg.Manifest, *limitFlag)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return build(ctx, cfg)
}
