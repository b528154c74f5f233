package tree

import (
	"encoding/binary"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/treefile/treefile/tree/config"
)

const (
	magic   = "TREF"
	version = byte(1)

	// postscript: footer length (8) + compression kind (1) + version (1) + magic (4)
	postscriptLen = 8 + 1 + 1 + len(magic)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fileFooter is the tree directory at the end of the file. It is encoded
// as JSON and compressed with the file codec; the postscript stays fixed
// size and uncompressed so the reader can bootstrap from it.
type fileFooter struct {
	Trees []treeMeta `json:"trees"`
}

type treeMeta struct {
	Name    string       `json:"name"`
	Columns []columnMeta `json:"columns"`
	Rows    uint64       `json:"rows"`
	Chunks  []chunkMeta  `json:"chunks"`
}

type columnMeta struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// chunkMeta describes one appended row window. Blocks holds the compressed
// length of each column block, laid out back to back from Offset in schema
// order.
type chunkMeta struct {
	Offset uint64   `json:"offset"`
	Rows   uint64   `json:"rows"`
	Blocks []uint64 `json:"blocks"`
}

func encodeFooter(ft fileFooter, kind config.CompressionKind, level int) ([]byte, error) {
	raw, err := json.Marshal(ft)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal footer")
	}
	return compressBlock(kind, level, raw)
}

func decodeFooter(data []byte, kind config.CompressionKind) (ft fileFooter, err error) {
	raw, err := decompressBlock(kind, data)
	if err != nil {
		return ft, err
	}
	if err = json.Unmarshal(raw, &ft); err != nil {
		return ft, errors.Wrapf(err, "unmarshal footer")
	}
	return ft, nil
}

func encodePostscript(footerLen uint64, kind config.CompressionKind) []byte {
	ps := make([]byte, postscriptLen)
	binary.LittleEndian.PutUint64(ps, footerLen)
	ps[8] = byte(kind)
	ps[9] = version
	copy(ps[10:], magic)
	return ps
}

func decodePostscript(ps []byte) (footerLen uint64, kind config.CompressionKind, err error) {
	if len(ps) != postscriptLen {
		return 0, 0, errors.Errorf("postscript has %d bytes, want %d", len(ps), postscriptLen)
	}
	if string(ps[10:]) != magic {
		return 0, 0, errors.New("not a treefile, bad magic")
	}
	if ps[9] != version {
		return 0, 0, errors.Errorf("unsupported treefile version %d", ps[9])
	}
	return binary.LittleEndian.Uint64(ps), config.CompressionKind(ps[8]), nil
}
