package assembler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the type of a source page.
type Kind int

const (
	KindHTM      Kind = iota // 未完成の html 断片
	KindMarkdown             // markdown から変換する断片
)

func (k Kind) String() string {
	switch k {
	case KindHTM:
		return "htm"
	case KindMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// Suffix is the literal file name suffix that selects sources of kind k.
func (k Kind) Suffix() string {
	switch k {
	case KindHTM:
		return ".htm"
	case KindMarkdown:
		return ".md"
	default:
		return ""
	}
}

// Source is one input page found under the root.
type Source struct {
	Path string
	Kind Kind
}

// Discover walks root recursively and returns every regular entry whose file
// name ends in the suffix of one of kinds. The result is in lexical path
// order. With no kinds given only .htm files are selected.
func Discover(root string, kinds ...Kind) ([]Source, error) {
	if len(kinds) == 0 {
		kinds = []Kind{KindHTM}
	}

	var sources []Source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// "x.htm" という名前のディレクトリは対象外
		if d.IsDir() {
			return nil
		}
		// WalkDir does not follow links, so a link to a directory shows up
		// as a non-directory entry.
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}

		for _, k := range kinds {
			if strings.HasSuffix(d.Name(), k.Suffix()) {
				sources = append(sources, Source{Path: path, Kind: k})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return sources, nil
}

// OutputName returns the .html file name for a source path. The directory
// part is dropped and the source suffix (.htm or .md) replaced. A base name
// that is nothing but the suffix, like ".htm", is kept whole as the stem.
func OutputName(path string) string {
	base := filepath.Base(path)
	for _, k := range []Kind{KindHTM, KindMarkdown} {
		if stem, ok := strings.CutSuffix(base, k.Suffix()); ok {
			if stem == "" {
				return base + ".html"
			}
			return stem + ".html"
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

// Target pairs a source with the output path it is written to.
type Target struct {
	Source
	Output string
}

// Collision is a group of sources that map to the same output.
// Sources are in processing order: the last one wins under overwrite.
type Collision struct {
	Output  string
	Sources []string
}

// Plan is the ordered list of work for a run.
type Plan struct {
	Targets    []Target
	Collisions []Collision
}

// NewPlan maps every source to outDir/OutputName(source). Targets keep the
// order of sources.
func NewPlan(sources []Source, outDir string) Plan {
	var p Plan
	byOutput := make(map[string][]string)
	var order []string

	for _, src := range sources {
		out := filepath.Join(outDir, OutputName(src.Path))
		p.Targets = append(p.Targets, Target{Source: src, Output: out})

		if _, ok := byOutput[out]; !ok {
			order = append(order, out)
		}
		byOutput[out] = append(byOutput[out], src.Path)
	}

	for _, out := range order {
		if srcs := byOutput[out]; len(srcs) > 1 {
			p.Collisions = append(p.Collisions, Collision{Output: out, Sources: srcs})
		}
	}

	return p
}
