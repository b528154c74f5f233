// Package merge copies one named tree from several treefiles into a single
// output file, processing rows in bounded windows. The merge is a column
// union across same-row-count inputs, not a row join: when two inputs carry
// the same column name, the later file in the supplied order wins.
package merge

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/treefile/treefile/tree"
	"github.com/treefile/treefile/tree/config"
)

var logger = log.New()

func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

const DefaultChunkSize = 10000

// Config is built once and passed by value, it is never mutated.
type Config struct {
	Files []string
	Tree  string
	// TreeOut names the output tree, empty means the input tree name.
	TreeOut string
	Out     string
	// ChunkSize is the number of rows per window, zero means DefaultChunkSize.
	ChunkSize uint64

	Compression      config.CompressionKind
	CompressionLevel int
}

func (c Config) treeOut() string {
	if c.TreeOut == "" {
		return c.Tree
	}
	return c.TreeOut
}

func (c Config) chunkSize() uint64 {
	if c.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

func (c Config) validate() error {
	if len(c.Files) == 0 {
		return errors.New("no input files")
	}
	if c.Tree == "" {
		return errors.New("no input tree name")
	}
	if c.Out == "" {
		return errors.New("no output file")
	}
	return nil
}

// Run merges the named tree from every input file into cfg.Out.
//
// All row counts are validated before the output file is created, a
// mismatch fails closed with no output on disk. Row order is preserved
// and memory stays bounded by the window size times the column count.
func Run(cfg Config) (err error) {
	if err = cfg.validate(); err != nil {
		return err
	}

	readers := make([]*tree.Reader, 0, len(cfg.Files))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	trees := make([]*tree.TreeReader, 0, len(cfg.Files))
	for _, path := range cfg.Files {
		r, oerr := tree.Open(path, config.DefaultReaderOptions())
		if oerr != nil {
			return oerr
		}
		readers = append(readers, r)
		tr, terr := r.Tree(cfg.Tree)
		if terr != nil {
			return errors.Wrapf(terr, "open %s", path)
		}
		trees = append(trees, tr)
	}

	rows := trees[0].NumRows()
	for i, tr := range trees {
		if tr.NumRows() != rows {
			return errors.Errorf("row count mismatch: %s has %d rows, %s has %d",
				cfg.Files[0], rows, cfg.Files[i], tr.NumRows())
		}
	}
	if rows == 0 {
		return errors.Errorf("tree %s has no rows", cfg.Tree)
	}

	w, err := tree.NewWriter(cfg.Out, config.WriterOptions{
		Compression:      cfg.Compression,
		CompressionLevel: cfg.CompressionLevel,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	var out *tree.TreeWriter
	var order []string
	chunk := cfg.chunkSize()

	for offset := uint64(0); offset < rows; offset += chunk {
		stop := offset + chunk
		if stop > rows {
			stop = rows
		}

		merged := map[string]tree.Column{}
		for ti, tr := range trees {
			cols, rerr := tr.ReadRange(offset, stop)
			if rerr != nil {
				return errors.Wrapf(rerr, "read %s", cfg.Files[ti])
			}
			for _, c := range cols {
				if _, ok := merged[c.Name]; ok {
					if offset == 0 {
						logger.Warnf("column %s defined by more than one input, keeping values from %s", c.Name, cfg.Files[ti])
					}
				} else if out == nil {
					order = append(order, c.Name)
				}
				merged[c.Name] = c
			}
		}

		// schema is derived once, from the first window
		if out == nil {
			schema := make([]tree.ColumnSchema, len(order))
			for i, name := range order {
				kind, kerr := tree.KindOf(merged[name].Vector)
				if kerr != nil {
					return kerr
				}
				schema[i] = tree.ColumnSchema{Name: name, Kind: kind}
			}
			if out, err = w.CreateTree(cfg.treeOut(), schema); err != nil {
				return err
			}
		}

		batch := make([]tree.Column, len(order))
		for i, name := range order {
			c, ok := merged[name]
			if !ok {
				return errors.Errorf("column %s missing from window at row %d", name, offset)
			}
			batch[i] = c
		}
		if err = out.Write(batch); err != nil {
			return err
		}
		logger.Debugf("window [%d, %d) of %d rows written", offset, stop, rows)
	}
	return nil
}
