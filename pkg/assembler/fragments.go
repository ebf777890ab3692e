// Package assembler wraps unfinished .htm pages with a shared header and
// footer and writes them out as .html documents.
package assembler

import (
	"os"
	"path/filepath"
)

const (
	DefaultHeader = "header"
	DefaultFooter = "footer"
)

// Fragments holds the header and footer bytes shared by every page of a run.
// It is read-only once loaded.
type Fragments struct {
	Header []byte
	Footer []byte
}

// LoadFragments reads the header and footer from dir. Empty names fall back
// to DefaultHeader / DefaultFooter. Absolute names are used as is.
func LoadFragments(dir, headerName, footerName string) (Fragments, error) {
	if headerName == "" {
		headerName = DefaultHeader
	}
	if footerName == "" {
		footerName = DefaultFooter
	}

	header, err := readFragment(dir, "header", headerName)
	if err != nil {
		return Fragments{}, err
	}
	footer, err := readFragment(dir, "footer", footerName)
	if err != nil {
		return Fragments{}, err
	}

	return Fragments{Header: header, Footer: footer}, nil
}

func readFragment(dir, role, name string) ([]byte, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Name: role, Path: path, Err: err}
	}
	return b, nil
}

// Assemble returns header ++ body ++ footer. Nothing is inserted between the
// parts.
func (f Fragments) Assemble(body []byte) []byte {
	out := make([]byte, 0, len(f.Header)+len(body)+len(f.Footer))
	out = append(out, f.Header...)
	out = append(out, body...)
	out = append(out, f.Footer...)
	return out
}
