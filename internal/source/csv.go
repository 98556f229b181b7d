package source

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open csv")
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	var r io.Reader = f
	if opt.Encoding != "" {
		if r, err = decodeReader(f, opt.Encoding); err != nil {
			return nil, err
		}
	}
	return ReadCSV(r, filepath.Base(path), delim, opt)
}

func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "source: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}

// ReadCSV reads delimited text with a header row into a table. Short rows
// are padded with missing cells and extra cells are dropped.
func ReadCSV(r io.Reader, name string, delim rune, opt Options) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &dataset.Table{Name: name}, nil
		}
		return nil, eris.Wrap(err, "source: read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ncol := len(header)
	raw := make([][]string, ncol)

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	rows, ragged := 0, 0
	for rows < maxRows {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "source: read row %d", rows+1)
		}
		if len(rec) != ncol {
			ragged++
		}
		for i := 0; i < ncol; i++ {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			raw[i] = append(raw[i], v)
		}
		rows++
	}
	if ragged > 0 {
		zap.L().Warn("source: ragged rows normalised",
			zap.String("file", name), zap.Int("rows", ragged))
	}

	cols := make([]*dataset.Column, ncol)
	for i, h := range header {
		if raw[i] == nil {
			raw[i] = []string{}
		}
		cols[i] = dataset.ColumnFromStrings(headerName(h), raw[i], opt.Number)
	}
	return dataset.NewTable(name, cols)
}

func headerName(h string) any {
	h = strings.TrimSpace(h)
	if h == "" {
		return nil
	}
	return h
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
