package tree

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Block layout is little-endian: bool one byte per value, int64/float64
// fixed 8 bytes, string/bytes uvarint length followed by raw bytes.
// todo: run-length encode int64 blocks, fixed width wastes space on counters

func encodeVector(dst *bytes.Buffer, vector interface{}) error {
	var b [8]byte
	switch vec := vector.(type) {
	case []bool:
		for _, v := range vec {
			if v {
				dst.WriteByte(1)
			} else {
				dst.WriteByte(0)
			}
		}
	case []int64:
		for _, v := range vec {
			binary.LittleEndian.PutUint64(b[:], uint64(v))
			dst.Write(b[:])
		}
	case []float64:
		for _, v := range vec {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			dst.Write(b[:])
		}
	case []string:
		var lb [binary.MaxVarintLen64]byte
		for _, v := range vec {
			n := binary.PutUvarint(lb[:], uint64(len(v)))
			dst.Write(lb[:n])
			dst.WriteString(v)
		}
	case [][]byte:
		var lb [binary.MaxVarintLen64]byte
		for _, v := range vec {
			n := binary.PutUvarint(lb[:], uint64(len(v)))
			dst.Write(lb[:n])
			dst.Write(v)
		}
	default:
		return errors.Errorf("unsupported vector type %T", vector)
	}
	return nil
}

func decodeVector(kind Kind, rows uint64, data []byte) (interface{}, error) {
	n := int(rows)
	switch kind {
	case KindBool:
		if len(data) != n {
			return nil, errors.Errorf("bool block has %d bytes, want %d", len(data), n)
		}
		vec := make([]bool, n)
		for i, b := range data {
			vec[i] = b != 0
		}
		return vec, nil

	case KindInt64:
		if len(data) != n*8 {
			return nil, errors.Errorf("int64 block has %d bytes, want %d", len(data), n*8)
		}
		vec := make([]int64, n)
		for i := 0; i < n; i++ {
			vec[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return vec, nil

	case KindFloat64:
		if len(data) != n*8 {
			return nil, errors.Errorf("float64 block has %d bytes, want %d", len(data), n*8)
		}
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return vec, nil

	case KindString:
		vec := make([]string, 0, n)
		for i := 0; i < n; i++ {
			l, w := binary.Uvarint(data)
			if w <= 0 || uint64(len(data)-w) < l {
				return nil, errors.Errorf("string block truncated at value %d", i)
			}
			data = data[w:]
			vec = append(vec, string(data[:l]))
			data = data[l:]
		}
		if len(data) != 0 {
			return nil, errors.Errorf("string block has %d trailing bytes", len(data))
		}
		return vec, nil

	case KindBytes:
		vec := make([][]byte, 0, n)
		for i := 0; i < n; i++ {
			l, w := binary.Uvarint(data)
			if w <= 0 || uint64(len(data)-w) < l {
				return nil, errors.Errorf("bytes block truncated at value %d", i)
			}
			data = data[w:]
			v := make([]byte, l)
			copy(v, data[:l])
			vec = append(vec, v)
			data = data[l:]
		}
		if len(data) != 0 {
			return nil, errors.Errorf("bytes block has %d trailing bytes", len(data))
		}
		return vec, nil
	}
	return nil, errors.Errorf("unknown kind %d", kind)
}
