package tree

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/treefile/treefile/tree/config"
	treeio "github.com/treefile/treefile/tree/io"
)

// Writer appends trees to a new treefile. Not safe for concurrent use.
type Writer struct {
	f      treeio.WriteFile
	opts   config.WriterOptions
	offset uint64
	trees  []*TreeWriter
	byName map[string]*TreeWriter
	closed bool
}

func NewWriter(path string, opts config.WriterOptions) (*Writer, error) {
	f, err := treeio.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err = f.Write([]byte(magic)); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "write header")
	}
	return &Writer{f: f, opts: opts, offset: uint64(len(magic)), byName: map[string]*TreeWriter{}}, nil
}

// CreateTree registers a tree with a fixed schema. Data is appended with
// TreeWriter.Write, one chunk per call.
func (w *Writer) CreateTree(name string, schema []ColumnSchema) (*TreeWriter, error) {
	if w.closed {
		return nil, errors.New("writer already closed")
	}
	if name == "" {
		return nil, errors.New("empty tree name")
	}
	if _, ok := w.byName[name]; ok {
		return nil, errors.Errorf("tree %s already exists", name)
	}
	if len(schema) == 0 {
		return nil, errors.Errorf("tree %s has no columns", name)
	}
	seen := map[string]bool{}
	for _, cs := range schema {
		if cs.Name == "" {
			return nil, errors.Errorf("tree %s has a column with an empty name", name)
		}
		if seen[cs.Name] {
			return nil, errors.Errorf("tree %s has duplicate column %s", name, cs.Name)
		}
		if !cs.Kind.valid() {
			return nil, errors.Errorf("column %s has unknown kind %d", cs.Name, cs.Kind)
		}
		seen[cs.Name] = true
	}

	meta := treeMeta{Name: name, Columns: make([]columnMeta, len(schema))}
	for i, cs := range schema {
		meta.Columns[i] = columnMeta{Name: cs.Name, Kind: cs.Kind}
	}
	tw := &TreeWriter{w: w, schema: schema, meta: meta}
	w.trees = append(w.trees, tw)
	w.byName[name] = tw
	return tw, nil
}

// Close writes the footer and postscript, syncs and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	ft := fileFooter{Trees: make([]treeMeta, len(w.trees))}
	for i, tw := range w.trees {
		ft.Trees[i] = tw.meta
	}
	footer, err := encodeFooter(ft, w.opts.Compression, w.opts.CompressionLevel)
	if err != nil {
		w.f.Close()
		return err
	}
	if _, err = w.f.Write(footer); err != nil {
		w.f.Close()
		return errors.Wrapf(err, "write footer")
	}
	if _, err = w.f.Write(encodePostscript(uint64(len(footer)), w.opts.Compression)); err != nil {
		w.f.Close()
		return errors.Wrapf(err, "write postscript")
	}
	if err = w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type TreeWriter struct {
	w      *Writer
	schema []ColumnSchema
	meta   treeMeta
	buf    bytes.Buffer
}

// Write appends one chunk. Columns must match the schema in order, name
// and kind, and share one non-zero length.
func (t *TreeWriter) Write(cols []Column) error {
	if t.w.closed {
		return errors.New("writer already closed")
	}
	if len(cols) != len(t.schema) {
		return errors.Errorf("tree %s: batch has %d columns, schema has %d", t.meta.Name, len(cols), len(t.schema))
	}
	rows := cols[0].Len()
	if rows == 0 {
		return errors.Errorf("tree %s: empty batch", t.meta.Name)
	}
	for i, c := range cols {
		cs := t.schema[i]
		if c.Name != cs.Name {
			return errors.Errorf("tree %s: column %d is %s, schema says %s", t.meta.Name, i, c.Name, cs.Name)
		}
		if c.Kind != cs.Kind {
			return errors.Errorf("tree %s: column %s is %s, schema says %s", t.meta.Name, c.Name, c.Kind, cs.Kind)
		}
		if c.Len() != rows {
			return errors.Errorf("tree %s: column %s has %d rows, column %s has %d",
				t.meta.Name, c.Name, c.Len(), cols[0].Name, rows)
		}
	}

	chunk := chunkMeta{Offset: t.w.offset, Rows: uint64(rows), Blocks: make([]uint64, len(cols))}
	for i, c := range cols {
		t.buf.Reset()
		if err := encodeVector(&t.buf, c.Vector); err != nil {
			return errors.Wrapf(err, "tree %s column %s", t.meta.Name, c.Name)
		}
		block, err := compressBlock(t.w.opts.Compression, t.w.opts.CompressionLevel, t.buf.Bytes())
		if err != nil {
			return errors.Wrapf(err, "tree %s column %s", t.meta.Name, c.Name)
		}
		if _, err = t.w.f.Write(block); err != nil {
			return errors.Wrapf(err, "tree %s column %s", t.meta.Name, c.Name)
		}
		chunk.Blocks[i] = uint64(len(block))
		t.w.offset += uint64(len(block))
	}
	t.meta.Chunks = append(t.meta.Chunks, chunk)
	t.meta.Rows += uint64(rows)

	logger.Debugf("tree %s chunk %d written, %d rows, %d total", t.meta.Name, len(t.meta.Chunks), rows, t.meta.Rows)
	return nil
}

// NumRows returns the rows written so far.
func (t *TreeWriter) NumRows() uint64 {
	return t.meta.Rows
}
