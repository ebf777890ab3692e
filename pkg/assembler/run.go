package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fortio.org/log"

	"github.com/sofuetakuma112/htmlasm/pkg/markup"
)

// Mode selects what happens to an assembled document.
type Mode string

const (
	ModeWrite Mode = "write" // ファイルに書き出してファイル名を表示
	ModePrint Mode = "print" // 標準出力に内容を表示するだけ（デバッグ用）
)

// CollisionPolicy decides what to do when several sources share an output name.
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionFail      CollisionPolicy = "error"
)

// Observer is notified as a run progresses. All methods are called from the
// goroutine running Run.
type Observer interface {
	Planned(p Plan)
	Written(t Target, doc []byte)
	Failed(t Target, err error)
}

type nopObserver struct{}

func (nopObserver) Planned(Plan)           {}
func (nopObserver) Written(Target, []byte) {}
func (nopObserver) Failed(Target, error)   {}

// Options configures Run. The zero value assembles .htm files under the
// current directory into the current directory, like a bare invocation of
// the command.
type Options struct {
	Root   string // walk root, also where header/footer live; default "."
	OutDir string // default Root
	Header string // default "header"
	Footer string // default "footer"

	Mode       Mode
	Collisions CollisionPolicy
	// KeepGoing skips files that fail to read, render or write instead of
	// aborting the run.
	KeepGoing bool

	Markdown       bool
	MarkdownEngine string

	Stdout   io.Writer
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.Root == "" {
		o.Root = "."
	}
	if o.OutDir == "" {
		o.OutDir = o.Root
	}
	if o.Mode == "" {
		o.Mode = ModeWrite
	}
	if o.Collisions == "" {
		o.Collisions = CollisionOverwrite
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

// Validate checks the option values that do not need the filesystem.
func (o Options) Validate() error {
	switch o.Mode {
	case "", ModeWrite, ModePrint:
	default:
		return &ConfigError{Name: "mode", Err: fmt.Errorf("unknown mode %q", o.Mode)}
	}
	switch o.Collisions {
	case "", CollisionOverwrite, CollisionFail:
	default:
		return &ConfigError{Name: "collisions", Err: fmt.Errorf("unknown policy %q", o.Collisions)}
	}
	if o.Markdown {
		if err := markup.CheckEngine(o.MarkdownEngine); err != nil {
			return &ConfigError{Name: "markdown-engine", Err: err}
		}
	}
	return nil
}

// Report summarises a run.
type Report struct {
	Written    []Target
	Failed     []*FileError
	Collisions []Collision
}

// Run loads the fragments, finds the sources under opts.Root and emits one
// document per source. Without KeepGoing the first file error stops the run
// and is returned; with it, failures are collected and returned together
// after every other file has been processed.
func Run(ctx context.Context, opts Options) (Report, error) {
	var report Report

	if err := opts.Validate(); err != nil {
		return report, err
	}
	opts = opts.withDefaults()

	frags, err := LoadFragments(opts.Root, opts.Header, opts.Footer)
	if err != nil {
		return report, err
	}

	kinds := []Kind{KindHTM}
	if opts.Markdown {
		kinds = append(kinds, KindMarkdown)
	}
	sources, err := Discover(opts.Root, kinds...)
	if err != nil {
		return report, err
	}

	plan := NewPlan(sources, opts.OutDir)
	report.Collisions = plan.Collisions
	if len(plan.Collisions) > 0 {
		if opts.Collisions == CollisionFail {
			return report, &CollisionError{Collisions: plan.Collisions}
		}
		for _, c := range plan.Collisions {
			log.Warnf("%s is produced by %d sources, keeping %s", c.Output, len(c.Sources), c.Sources[len(c.Sources)-1])
		}
	}
	log.Debugf("%d source(s) under %s, %d collision(s)", len(plan.Targets), opts.Root, len(plan.Collisions))
	opts.Observer.Planned(plan)

	if opts.Mode == ModeWrite && len(plan.Targets) > 0 {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return report, &ConfigError{Name: "out", Path: opts.OutDir, Err: err}
		}
	}

	var errs []error
	for _, t := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		doc, fe := emit(frags, t, opts)
		if fe != nil {
			opts.Observer.Failed(t, fe)
			if !opts.KeepGoing {
				return report, fe
			}
			log.Warnf("skipping %s: %v", t.Path, fe)
			report.Failed = append(report.Failed, fe)
			errs = append(errs, fe)
			continue
		}

		report.Written = append(report.Written, t)
		opts.Observer.Written(t, doc)
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d file(s) failed: %w", len(errs), len(plan.Targets), errors.Join(errs...))
	}
	return report, nil
}

// emit assembles a single target and writes or prints it.
func emit(frags Fragments, t Target, opts Options) ([]byte, *FileError) {
	log.Debugf("assembling %s -> %s", t.Path, t.Output)

	body, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: t.Path, Err: err}
	}

	if t.Kind == KindMarkdown {
		body, err = markup.Render(opts.MarkdownEngine, body)
		if err != nil {
			return nil, &FileError{Op: "render", Path: t.Path, Err: err}
		}
	}

	doc := frags.Assemble(body)

	switch opts.Mode {
	case ModePrint:
		if _, err := opts.Stdout.Write(doc); err != nil {
			return nil, &FileError{Op: "print", Path: t.Path, Err: err}
		}
	default:
		if err := os.WriteFile(t.Output, doc, 0o644); err != nil {
			return nil, &FileError{Op: "write", Path: t.Output, Err: err}
		}
		fmt.Fprintln(opts.Stdout, t.Output)
	}

	return doc, nil
}
