// Package markup converts markdown page bodies to HTML and inspects
// assembled documents.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	EngineGoldmark    = "goldmark"
	EngineGomarkdown  = "gomarkdown"
	EngineBlackfriday = "blackfriday"

	DefaultEngine = EngineGoldmark
)

var ErrUnknownEngine = errors.New("unknown markdown engine")

type renderFunc func(src []byte) ([]byte, error)

var engines = map[string]renderFunc{
	EngineGoldmark:    renderGoldmark,
	EngineGomarkdown:  renderGomarkdown,
	EngineBlackfriday: renderBlackfriday,
}

// Engines returns the names accepted by Render, sorted.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckEngine reports whether name is a known engine. An empty name means
// DefaultEngine.
func CheckEngine(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := engines[name]; !ok {
		return fmt.Errorf("%w %q (want one of %v)", ErrUnknownEngine, name, Engines())
	}
	return nil
}

// Render converts markdown src to an HTML fragment with the named engine.
func Render(engine string, src []byte) ([]byte, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	if err := CheckEngine(engine); err != nil {
		return nil, err
	}

	// always normalize newlines, the markdown libraries only support Unix LF newlines
	src = markdown.NormalizeNewlines(src)

	return engines[engine](src)
}

func renderGoldmark(src []byte) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// .htm ページと同じく生の html をそのまま通す
			gmhtml.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderGomarkdown(src []byte) ([]byte, error) {
	// create markdown parser
	extensions := mdparser.CommonExtensions | mdparser.AutoHeadingIDs
	p := mdparser.NewWithExtensions(extensions)

	// create HTML renderer
	opts := mdhtml.RendererOptions{Flags: mdhtml.CommonFlags}
	renderer := mdhtml.NewRenderer(opts)

	return markdown.ToHTML(src, p, renderer), nil
}

func renderBlackfriday(src []byte) ([]byte, error) {
	return blackfriday.Run(src, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.AutoHeadingIDs)), nil
}
