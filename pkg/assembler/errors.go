package assembler

import (
	"fmt"
	"io/fs"
	"strings"
)

// ConfigError は実行前に検出される設定の誤り（header/footer の欠落、不正なオプション）
type ConfigError struct {
	Name string // "header", "footer", "mode" など
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("config %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileError is a per-file failure while reading, rendering or writing.
type FileError struct {
	Op   string // "read", "render", "write", "print"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	// os の PathError は同じパスをもう一度含むので中身だけ使う
	if pe, ok := e.Err.(*fs.PathError); ok && pe.Path == e.Path {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, pe.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// CollisionError is returned under the CollisionFail policy when two or more
// sources map to the same output file.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		parts = append(parts, fmt.Sprintf("%s <- [%s]", c.Output, strings.Join(c.Sources, ", ")))
	}
	return fmt.Sprintf("%d output name collision(s): %s", len(e.Collisions), strings.Join(parts, "; "))
}
