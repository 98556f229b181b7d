// Package source loads tabular files and query results into dataset tables.
package source

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

// ErrUnsupported indicates a file format no loader accepts.
var ErrUnsupported = eris.New("source: unsupported file format")

// Options controls how files are read.
type Options struct {
	// MaxRows limits data rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Encoding names the CSV charset (e.g. "latin1", "windows-1252").
	// Empty means UTF-8.
	Encoding string
	// Numeric parsing locale. Zero separators are auto-detected per value.
	Number dataset.NumberFormat
	// SheetName selects an XLSX sheet; it wins over SheetIndex.
	SheetName string
	// SheetIndex selects an XLSX sheet, 1-based. 0 means the first sheet.
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading files.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*dataset.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// CanLoad reports whether any registered loader accepts path.
func CanLoad(path string) bool {
	for _, l := range registry {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

// LoadFile selects a loader based on the file name and loads the table.
func LoadFile(path string, opt Options) (*dataset.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "source: stat %s", path)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, eris.Wrapf(ErrUnsupported, "source: %s", filepath.Base(path))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
