package main

import (
	"context"
	"errors"
	"os"

	"fortio.org/log"
	"github.com/cheggaaa/pb/v3"

	"github.com/sofuetakuma112/htmlasm/pkg/assembler"
	"github.com/sofuetakuma112/htmlasm/pkg/config"
	"github.com/sofuetakuma112/htmlasm/pkg/manifest"
	"github.com/sofuetakuma112/htmlasm/pkg/markup"
)

// buildObserver drives the progress bar and the manifest while a build runs.
type buildObserver struct {
	progress bool
	bar      *pb.ProgressBar

	// build 行は計画が立ってから作る。設定エラーで終わった実行は記録しない
	store   *manifest.Store
	build   buildInfo
	buildID int64
	err     error // 最初の manifest 書き込みエラー
}

type buildInfo struct {
	root, outDir, mode string
}

func (o *buildObserver) Planned(p assembler.Plan) {
	if o.store != nil {
		id, err := o.store.BeginBuild(o.build.root, o.build.outDir, o.build.mode)
		if err != nil {
			o.err = err
		}
		o.buildID = id
	}

	if !o.progress || len(p.Targets) == 0 {
		return
	}
	o.bar = pb.New(len(p.Targets))
	o.bar.SetWriter(os.Stderr)
	o.bar.SetMaxWidth(80)
	o.bar.Start()
}

func (o *buildObserver) Written(t assembler.Target, doc []byte) {
	defer o.increment()

	title := markup.Title(doc)
	log.Debugf("%s <- %s (%d bytes, title %q)", t.Output, t.Path, len(doc), title)

	if o.store == nil || o.err != nil {
		return
	}
	if err := o.store.RecordOutput(o.buildID, t.Output, t.Path, title, doc); err != nil {
		o.err = err
	}
}

func (o *buildObserver) Failed(assembler.Target, error) {
	o.increment()
}

func (o *buildObserver) increment() {
	if o.bar != nil {
		o.bar.Increment()
	}
}

func (o *buildObserver) finish() {
	if o.bar != nil {
		o.bar.Finish()
	}
}

func build(ctx context.Context, cfg config.Config) int {
	opts := cfg.Options()
	obs := &buildObserver{progress: *progressFlag}
	opts.Observer = obs

	if cfg.Manifest != "" && opts.Mode != assembler.ModePrint {
		store, err := manifest.Open(cfg.Manifest)
		if err != nil {
			log.Errf("%v", err)
			return 1
		}
		defer store.Close()

		obs.store = store
		obs.build = buildInfo{root: cfg.Root, outDir: outDir(cfg), mode: cfg.Mode}
	}

	report, err := assembler.Run(ctx, opts)
	obs.finish()
	if err != nil {
		logRunError(err)
		return 1
	}
	if obs.err != nil {
		log.Errf("manifest: %v", obs.err)
		return 1
	}

	log.Infof("%d file(s) assembled, %d collision(s)", len(report.Written), len(report.Collisions))
	return 0
}

func outDir(cfg config.Config) string {
	if cfg.OutDir == "" {
		return cfg.Root
	}
	return cfg.OutDir
}

// logRunError names the class of failure so configuration mistakes read
// differently from a bad page.
func logRunError(err error) {
	var (
		cfgErr  *assembler.ConfigError
		fileErr *assembler.FileError
		colErr  *assembler.CollisionError
	)
	switch {
	case errors.As(err, &cfgErr):
		log.Errf("configuration error: %v", cfgErr)
	case errors.As(err, &colErr):
		for _, c := range colErr.Collisions {
			log.Errf("collision: %s <- %v", c.Output, c.Sources)
		}
		log.Errf("%v", colErr)
	case errors.As(err, &fileErr):
		log.Errf("file error: %v", err)
	default:
		log.Errf("%v", err)
	}
}

func printHistory(path string, limit int) int {
	if path == "" {
		log.Errf("-history needs a manifest (-manifest or %s)", config.EnvManifest)
		return 1
	}

	store, err := manifest.Open(path)
	if err != nil {
		log.Errf("%v", err)
		return 1
	}
	defer store.Close()

	if err := store.DumpJSON(os.Stdout, limit); err != nil {
		log.Errf("history: %v", err)
		return 1
	}
	return 0
}
