package tree

import (
	"bytes"
	"io/ioutil"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/treefile/treefile/tree/config"
)

// ParseCompression resolves a codec name from the command line.
func ParseCompression(name string) (config.CompressionKind, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return config.CompressionNone, nil
	case "zlib":
		return config.CompressionZlib, nil
	case "snappy":
		return config.CompressionSnappy, nil
	case "zstd":
		return config.CompressionZstd, nil
	}
	return 0, errors.Errorf("unknown compression codec %s", name)
}

func compressBlock(kind config.CompressionKind, level int, src []byte) ([]byte, error) {
	switch kind {
	case config.CompressionNone:
		return src, nil

	case config.CompressionZlib:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, level)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if _, err = w.Write(src); err != nil {
			return nil, errors.WithStack(err)
		}
		if err = w.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
		return buf.Bytes(), nil

	case config.CompressionSnappy:
		return snappy.Encode(nil, src), nil

	case config.CompressionZstd:
		opts := []zstd.EOption{}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		enc, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		dst := enc.EncodeAll(src, nil)
		if err = enc.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
		return dst, nil
	}
	return nil, errors.Errorf("unknown compression kind %d", kind)
}

func decompressBlock(kind config.CompressionKind, src []byte) ([]byte, error) {
	switch kind {
	case config.CompressionNone:
		return src, nil

	case config.CompressionZlib:
		r := flate.NewReader(bytes.NewReader(src))
		dst, err := ioutil.ReadAll(r)
		if err != nil {
			r.Close()
			return nil, errors.Wrapf(err, "decompress zlib block")
		}
		if err = r.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
		return dst, nil

	case config.CompressionSnappy:
		dst, err := snappy.Decode(nil, src)
		if err != nil {
			return nil, errors.Wrapf(err, "decompress snappy block")
		}
		return dst, nil

	case config.CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		dst, err := dec.DecodeAll(src, nil)
		dec.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "decompress zstd block")
		}
		return dst, nil
	}
	return nil, errors.Errorf("unknown compression kind %d", kind)
}
