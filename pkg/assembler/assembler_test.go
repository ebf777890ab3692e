package assembler

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	testHeader = "<html>\n<body>\n"
	testFooter = "</body>\n</html>\n"
)

// writeTree creates files (relative path -> content) under a new temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func withFragments(files map[string]string) map[string]string {
	files["header"] = testHeader
	files["footer"] = testFooter
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// htmlFiles lists every .html file anywhere under dir.
func htmlFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".html" {
			rel, _ := filepath.Rel(dir, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestAssembleConcatenatesExactly(t *testing.T) {
	cases := []struct {
		name, header, body, footer string
	}{
		{"lines", "H1\nH2\n", "body\n", "F\n"},
		{"no trailing newlines", "H", "B", "F"},
		{"empty body", "H\n", "", "F\n"},
		{"empty fragments", "", "only body", ""},
		{"crlf kept", "H\r\n", "a\r\nb\r\n", "F\r\n"},
		{"binary", "\x00\xff", "\xfe\x01", "\x02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Fragments{Header: []byte(tc.header), Footer: []byte(tc.footer)}
			got := f.Assemble([]byte(tc.body))
			want := tc.header + tc.body + tc.footer
			if string(got) != want {
				t.Errorf("Assemble = %q, want %q", got, want)
			}
		})
	}
}

func TestAssembleDoesNotAliasFragments(t *testing.T) {
	f := Fragments{Header: make([]byte, 1, 64), Footer: []byte("F")}
	f.Header[0] = 'H'

	first := f.Assemble([]byte("a"))
	second := f.Assemble([]byte("b"))

	if string(first) != "HaF" || string(second) != "HbF" {
		t.Errorf("got %q and %q", first, second)
	}
	if string(f.Header) != "H" {
		t.Errorf("header modified: %q", f.Header)
	}
}

func TestLoadFragments(t *testing.T) {
	dir := writeTree(t, withFragments(map[string]string{}))

	f, err := LoadFragments(dir, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Header) != testHeader || string(f.Footer) != testFooter {
		t.Errorf("got header %q footer %q", f.Header, f.Footer)
	}
}

func TestLoadFragmentsCustomNames(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"parts/top.txt": "top",
		"parts/end.txt": "end",
	})

	f, err := LoadFragments(dir, "parts/top.txt", filepath.Join(dir, "parts", "end.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Header) != "top" || string(f.Footer) != "end" {
		t.Errorf("got header %q footer %q", f.Header, f.Footer)
	}
}

func TestLoadFragmentsMissing(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		role  string
	}{
		{"no header", map[string]string{"footer": "f"}, "header"},
		{"no footer", map[string]string{"header": "h"}, "footer"},
		{"neither", map[string]string{}, "header"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeTree(t, tc.files)
			_, err := LoadFragments(dir, "", "")

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Name != tc.role {
				t.Errorf("Name = %q, want %q", cfgErr.Name, tc.role)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x.htm", "x.html"},
		{filepath.Join("a", "b", "x.htm"), "x.html"},
		{"a.b.htm", "a.b.html"},
		{".htm", ".htm.html"},
		{filepath.Join("sub", ".htm"), ".htm.html"},
		{"notes.md", "notes.html"},
		{"README", "README.html"},
	}
	for _, tc := range cases {
		if got := OutputName(tc.in); got != tc.want {
			t.Errorf("OutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDiscoverMatchesSuffixOnly(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.htm":           "",
		"a.htm":           "",
		"foo.htm.bak":     "",
		"page.HTM":        "",
		"done.html":       "",
		"notes.md":        "",
		"sub/c.htm":       "",
		"x.htm/inner.htm": "",
	})

	sources, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, s := range sources {
		if s.Kind != KindHTM {
			t.Errorf("%s: kind %v", s.Path, s.Kind)
		}
		rel, _ := filepath.Rel(dir, s.Path)
		got = append(got, filepath.ToSlash(rel))
	}

	want := []string{"a.htm", "b.htm", "sub/c.htm", "x.htm/inner.htm"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverMarkdown(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.htm":    "",
		"b.md":     "",
		"c.md.txt": "",
	})

	sources, err := Discover(dir, KindHTM, KindMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2: %v", len(sources), sources)
	}
	if sources[0].Kind != KindHTM || sources[1].Kind != KindMarkdown {
		t.Errorf("kinds = %v, %v", sources[0].Kind, sources[1].Kind)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewPlanCollisions(t *testing.T) {
	sources := []Source{
		{Path: filepath.Join("a", "x.htm")},
		{Path: filepath.Join("b", "x.htm")},
		{Path: "y.htm"},
		{Path: filepath.Join("c", "x.htm")},
	}

	p := NewPlan(sources, "out")

	if len(p.Targets) != 4 {
		t.Fatalf("got %d targets", len(p.Targets))
	}
	if p.Targets[2].Output != filepath.Join("out", "y.html") {
		t.Errorf("y output = %q", p.Targets[2].Output)
	}
	if len(p.Collisions) != 1 {
		t.Fatalf("got %d collisions, want 1", len(p.Collisions))
	}
	c := p.Collisions[0]
	if c.Output != filepath.Join("out", "x.html") {
		t.Errorf("collision output = %q", c.Output)
	}
	if len(c.Sources) != 3 || c.Sources[2] != filepath.Join("c", "x.htm") {
		t.Errorf("collision sources = %v", c.Sources)
	}
}

func TestCollisionErrorMessage(t *testing.T) {
	err := &CollisionError{Collisions: []Collision{{Output: "x.html", Sources: []string{"a/x.htm", "b/x.htm"}}}}
	want := "1 output name collision(s): x.html <- [a/x.htm, b/x.htm]"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	err := error(&FileError{Op: "read", Path: "x.htm", Err: fs.ErrPermission})
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("FileError does not unwrap")
	}
	if err.Error() != "read x.htm: "+fs.ErrPermission.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDiscoverSkipsSymlinkedDirectory(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"real/page.htm": "",
		"note.txt":      "",
	})
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "linked.htm")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "note.txt"), filepath.Join(dir, "alias.htm")); err != nil {
		t.Fatal(err)
	}

	sources, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, s := range sources {
		rel, _ := filepath.Rel(dir, s.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	// a link to a file is still a source
	want := []string{"alias.htm", "real/page.htm"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestFileErrorDoesNotRepeatPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.htm")
	_, readErr := os.ReadFile(path)
	if readErr == nil {
		t.Fatal("expected a read error")
	}

	err := &FileError{Op: "read", Path: path, Err: readErr}
	want := "read " + path + ": " + fs.ErrNotExist.Error()
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("FileError lost fs.ErrNotExist")
	}
}
