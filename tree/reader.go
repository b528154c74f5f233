package tree

import (
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/treefile/treefile/tree/config"
	treeio "github.com/treefile/treefile/tree/io"
)

// Reader gives random access to the trees in a treefile.
type Reader struct {
	f           treeio.File
	compression config.CompressionKind
	trees       map[string]*TreeReader
}

func Open(path string, opts config.ReaderOptions) (*Reader, error) {
	f, err := treeio.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(f, opts)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return r, nil
}

func newReader(f treeio.File, opts config.ReaderOptions) (*Reader, error) {
	size, err := f.Size()
	if err != nil {
		return nil, err
	}
	if size < int64(len(magic)+postscriptLen) {
		return nil, errors.New("not a treefile, too small")
	}

	if _, err = f.Seek(size-int64(postscriptLen), io.SeekStart); err != nil {
		return nil, err
	}
	ps := make([]byte, postscriptLen)
	if _, err = io.ReadFull(f, ps); err != nil {
		return nil, errors.WithStack(err)
	}
	footerLen, compression, err := decodePostscript(ps)
	if err != nil {
		return nil, err
	}
	maxFooter := opts.MaxFooterSize
	if maxFooter == 0 {
		maxFooter = config.DefaultReaderOptions().MaxFooterSize
	}
	if footerLen > maxFooter || int64(footerLen) > size-int64(postscriptLen) {
		return nil, errors.Errorf("bad footer length %d", footerLen)
	}

	if _, err = f.Seek(size-int64(postscriptLen)-int64(footerLen), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, footerLen)
	if _, err = io.ReadFull(f, buf); err != nil {
		return nil, errors.WithStack(err)
	}
	ft, err := decodeFooter(buf, compression)
	if err != nil {
		return nil, err
	}

	r := &Reader{f: f, compression: compression, trees: map[string]*TreeReader{}}
	for _, meta := range ft.Trees {
		r.trees[meta.Name] = &TreeReader{r: r, meta: meta}
	}
	return r, nil
}

// Trees lists the tree names in the file, sorted.
func (r *Reader) Trees() []string {
	names := make([]string, 0, len(r.trees))
	for name := range r.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Reader) Tree(name string) (*TreeReader, error) {
	tr, ok := r.trees[name]
	if !ok {
		return nil, errors.Errorf("tree %s not found, file has %v", name, r.Trees())
	}
	return tr, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

type TreeReader struct {
	r    *Reader
	meta treeMeta
}

func (t *TreeReader) NumRows() uint64 {
	return t.meta.Rows
}

// NumChunks returns how many appends produced the tree.
func (t *TreeReader) NumChunks() int {
	return len(t.meta.Chunks)
}

func (t *TreeReader) Schema() []ColumnSchema {
	schema := make([]ColumnSchema, len(t.meta.Columns))
	for i, cm := range t.meta.Columns {
		schema[i] = ColumnSchema{Name: cm.Name, Kind: cm.Kind}
	}
	return schema
}

// ReadRange fetches rows [start, stop) for every column, in schema order.
// The range may cross chunk boundaries.
func (t *TreeReader) ReadRange(start, stop uint64) ([]Column, error) {
	if start > stop || stop > t.meta.Rows {
		return nil, errors.Errorf("tree %s: range [%d, %d) out of bounds, %d rows", t.meta.Name, start, stop, t.meta.Rows)
	}

	cols := make([]Column, len(t.meta.Columns))
	for i, cm := range t.meta.Columns {
		vec, err := newVector(cm.Kind, int(stop-start))
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Name: cm.Name, Kind: cm.Kind, Vector: vec}
	}
	if start == stop {
		return cols, nil
	}

	var chunkStart uint64
	for ci, chunk := range t.meta.Chunks {
		chunkStop := chunkStart + chunk.Rows
		if chunkStop <= start {
			chunkStart = chunkStop
			continue
		}
		if chunkStart >= stop {
			break
		}

		// overlap within this chunk
		lo := uint64(0)
		if start > chunkStart {
			lo = start - chunkStart
		}
		hi := chunk.Rows
		if stop < chunkStop {
			hi = stop - chunkStart
		}

		if err := t.readChunk(ci, chunk, cols, int(lo), int(hi)); err != nil {
			return nil, err
		}
		chunkStart = chunkStop
	}
	return cols, nil
}

func (t *TreeReader) readChunk(ci int, chunk chunkMeta, cols []Column, lo, hi int) error {
	if len(chunk.Blocks) != len(cols) {
		return errors.Errorf("tree %s chunk %d has %d blocks, schema has %d columns", t.meta.Name, ci, len(chunk.Blocks), len(cols))
	}
	if _, err := t.r.f.Seek(int64(chunk.Offset), io.SeekStart); err != nil {
		return err
	}
	logger.Debugf("tree %s read chunk %d, rows [%d, %d)", t.meta.Name, ci, lo, hi)

	for i := range cols {
		block := make([]byte, chunk.Blocks[i])
		if _, err := io.ReadFull(t.r.f, block); err != nil {
			return errors.Wrapf(err, "tree %s chunk %d column %s", t.meta.Name, ci, cols[i].Name)
		}
		raw, err := decompressBlock(t.r.compression, block)
		if err != nil {
			return errors.Wrapf(err, "tree %s chunk %d column %s", t.meta.Name, ci, cols[i].Name)
		}
		vec, err := decodeVector(cols[i].Kind, chunk.Rows, raw)
		if err != nil {
			return errors.Wrapf(err, "tree %s chunk %d column %s", t.meta.Name, ci, cols[i].Name)
		}
		if cols[i].Vector, err = appendRange(cols[i].Vector, vec, lo, hi); err != nil {
			return err
		}
	}
	return nil
}
