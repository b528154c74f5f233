package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treefile/treefile/tree"
	"github.com/treefile/treefile/tree/config"
)

func intColumn(name string, rows int, base int64) tree.Column {
	vec := make([]int64, rows)
	for i := range vec {
		vec[i] = base + int64(i)
	}
	return tree.Column{Name: name, Kind: tree.KindInt64, Vector: vec}
}

func writeInput(t *testing.T, path, treeName string, cols []tree.Column) {
	t.Helper()
	w, err := tree.NewWriter(path, config.DefaultWriterOptions())
	require.NoError(t, err)
	tw, err := w.CreateTree(treeName, schemaOf(cols))
	require.NoError(t, err)
	require.NoError(t, tw.Write(cols))
	require.NoError(t, w.Close())
}

func schemaOf(cols []tree.Column) []tree.ColumnSchema {
	schema := make([]tree.ColumnSchema, len(cols))
	for i, c := range cols {
		schema[i] = tree.ColumnSchema{Name: c.Name, Kind: c.Kind}
	}
	return schema
}

func openTree(t *testing.T, path, name string) (*tree.Reader, *tree.TreeReader) {
	t.Helper()
	r, err := tree.Open(path, config.DefaultReaderOptions())
	require.NoError(t, err)
	tr, err := r.Tree(name)
	require.NoError(t, err)
	return r, tr
}

func TestColumnUnion(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "one.tf")
	f2 := filepath.Join(dir, "two.tf")
	out := filepath.Join(dir, "merged.tf")

	const rows = 2500
	writeInput(t, f1, "events", []tree.Column{
		intColumn("a", rows, 0),
		intColumn("b", rows, 10_000),
	})
	writeInput(t, f2, "events", []tree.Column{
		intColumn("b", rows, 20_000),
		intColumn("c", rows, 30_000),
	})

	err := Run(Config{Files: []string{f1, f2}, Tree: "events", Out: out, ChunkSize: 1000})
	if err != nil {
		t.Fatalf("%+v", err)
	}

	r, tr := openTree(t, out, "events")
	defer r.Close()

	assert.Equal(t, uint64(rows), tr.NumRows())
	// 2500 rows at 1000 per window: 1000, 1000, 500
	assert.Equal(t, 3, tr.NumChunks())
	assert.Equal(t, []tree.ColumnSchema{
		{Name: "a", Kind: tree.KindInt64},
		{Name: "b", Kind: tree.KindInt64},
		{Name: "c", Kind: tree.KindInt64},
	}, tr.Schema())

	cols, err := tr.ReadRange(0, rows)
	require.NoError(t, err)
	assert.Equal(t, intColumn("a", rows, 0), cols[0])
	// b comes from the later file in the supplied order
	assert.Equal(t, intColumn("b", rows, 20_000), cols[1])
	assert.Equal(t, intColumn("c", rows, 30_000), cols[2])
}

func TestChunkBoundaries(t *testing.T) {
	const rows = 100
	cases := []struct {
		name      string
		chunkSize uint64
		chunks    int
	}{
		{"exact", rows, 1},
		{"single-row", 1, rows},
		{"oversized", rows * 10, 1},
		{"uneven", 30, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.tf")
			out := filepath.Join(dir, "out.tf")
			writeInput(t, in, "events", []tree.Column{intColumn("a", rows, 0)})

			err := Run(Config{Files: []string{in}, Tree: "events", Out: out, ChunkSize: tc.chunkSize})
			if err != nil {
				t.Fatalf("%+v", err)
			}

			r, tr := openTree(t, out, "events")
			defer r.Close()
			assert.Equal(t, uint64(rows), tr.NumRows())
			assert.Equal(t, tc.chunks, tr.NumChunks())

			cols, err := tr.ReadRange(0, rows)
			require.NoError(t, err)
			assert.Equal(t, intColumn("a", rows, 0), cols[0])
		})
	}
}

func TestSingleFileCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tf")
	out := filepath.Join(dir, "out.tf")

	const rows = 200
	want := []tree.Column{
		intColumn("a", rows, 0),
		{Name: "name", Kind: tree.KindString, Vector: func() []string {
			vec := make([]string, rows)
			for i := range vec {
				vec[i] = fmt.Sprintf("entry-%d", i)
			}
			return vec
		}()},
	}
	writeInput(t, in, "events", want)

	// chunk size >= rows behaves like a direct copy
	err := Run(Config{Files: []string{in}, Tree: "events", Out: out, ChunkSize: rows})
	if err != nil {
		t.Fatalf("%+v", err)
	}

	rin, tin := openTree(t, in, "events")
	defer rin.Close()
	rout, tout := openTree(t, out, "events")
	defer rout.Close()

	assert.Equal(t, tin.NumRows(), tout.NumRows())
	assert.Equal(t, tin.Schema(), tout.Schema())
	assert.Equal(t, 1, tout.NumChunks())

	wantCols, err := tin.ReadRange(0, rows)
	require.NoError(t, err)
	gotCols, err := tout.ReadRange(0, rows)
	require.NoError(t, err)
	assert.Equal(t, wantCols, gotCols)
}

func TestRowCountMismatchFailsClosed(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "one.tf")
	f2 := filepath.Join(dir, "two.tf")
	out := filepath.Join(dir, "merged.tf")

	writeInput(t, f1, "events", []tree.Column{intColumn("a", 100, 0)})
	writeInput(t, f2, "events", []tree.Column{intColumn("b", 99, 0)})

	err := Run(Config{Files: []string{f1, f2}, Tree: "events", Out: out, ChunkSize: 10})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row count mismatch")

	// fail closed: no output file on disk
	_, serr := os.Stat(out)
	assert.True(t, os.IsNotExist(serr))
}

func TestMissingTreeFailsClosed(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tf")
	out := filepath.Join(dir, "merged.tf")
	writeInput(t, in, "events", []tree.Column{intColumn("a", 10, 0)})

	err := Run(Config{Files: []string{in}, Tree: "nosuch", Out: out})
	assert.Error(t, err)
	_, serr := os.Stat(out)
	assert.True(t, os.IsNotExist(serr))
}

func TestTreeOutName(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tf")
	writeInput(t, in, "events", []tree.Column{intColumn("a", 10, 0)})

	// defaults to the input tree name
	out := filepath.Join(dir, "default.tf")
	err := Run(Config{Files: []string{in}, Tree: "events", Out: out})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	r, _ := openTree(t, out, "events")
	r.Close()

	// explicit name wins
	out = filepath.Join(dir, "renamed.tf")
	err = Run(Config{Files: []string{in}, Tree: "events", TreeOut: "merged_tree", Out: out})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	r, err = tree.Open(out, config.DefaultReaderOptions())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, []string{"merged_tree"}, r.Trees())
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Run(Config{Tree: "events", Out: "x.tf"}))
	assert.Error(t, Run(Config{Files: []string{"a.tf"}, Out: "x.tf"}))
	assert.Error(t, Run(Config{Files: []string{"a.tf"}, Tree: "events"}))
}
