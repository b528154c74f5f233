package tree

import (
	"github.com/pkg/errors"
)

// Kind is the element type of a column. Values are stable, they are
// written into the file footer.
type Kind byte

const (
	KindBool Kind = iota + 1
	KindInt64
	KindFloat64
	KindString
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	}
	return "unknown"
}

func (k Kind) valid() bool {
	return k >= KindBool && k <= KindBytes
}

type ColumnSchema struct {
	Name string
	Kind Kind
}

// Column is one column buffer for a row range. Vector holds a typed slice,
// one of []bool, []int64, []float64, []string, [][]byte.
type Column struct {
	Name   string
	Kind   Kind
	Vector interface{}
}

func (c Column) Len() int {
	switch v := c.Vector.(type) {
	case []bool:
		return len(v)
	case []int64:
		return len(v)
	case []float64:
		return len(v)
	case []string:
		return len(v)
	case [][]byte:
		return len(v)
	}
	return 0
}

// NewColumn builds a column buffer, inferring the kind from the vector.
func NewColumn(name string, vector interface{}) (Column, error) {
	kind, err := KindOf(vector)
	if err != nil {
		return Column{}, errors.Wrapf(err, "column %s", name)
	}
	return Column{Name: name, Kind: kind, Vector: vector}, nil
}

// KindOf maps a fetched vector back to its element kind.
func KindOf(vector interface{}) (Kind, error) {
	switch vector.(type) {
	case []bool:
		return KindBool, nil
	case []int64:
		return KindInt64, nil
	case []float64:
		return KindFloat64, nil
	case []string:
		return KindString, nil
	case [][]byte:
		return KindBytes, nil
	}
	return 0, errors.Errorf("unsupported vector type %T", vector)
}

func newVector(kind Kind, capacity int) (interface{}, error) {
	switch kind {
	case KindBool:
		return make([]bool, 0, capacity), nil
	case KindInt64:
		return make([]int64, 0, capacity), nil
	case KindFloat64:
		return make([]float64, 0, capacity), nil
	case KindString:
		return make([]string, 0, capacity), nil
	case KindBytes:
		return make([][]byte, 0, capacity), nil
	}
	return nil, errors.Errorf("unknown kind %d", kind)
}

// appendRange appends src[lo:hi] to dst, both vectors of the same kind.
func appendRange(dst, src interface{}, lo, hi int) (interface{}, error) {
	switch d := dst.(type) {
	case []bool:
		s, ok := src.([]bool)
		if !ok {
			return nil, errors.Errorf("vector type mismatch, %T and %T", dst, src)
		}
		return append(d, s[lo:hi]...), nil
	case []int64:
		s, ok := src.([]int64)
		if !ok {
			return nil, errors.Errorf("vector type mismatch, %T and %T", dst, src)
		}
		return append(d, s[lo:hi]...), nil
	case []float64:
		s, ok := src.([]float64)
		if !ok {
			return nil, errors.Errorf("vector type mismatch, %T and %T", dst, src)
		}
		return append(d, s[lo:hi]...), nil
	case []string:
		s, ok := src.([]string)
		if !ok {
			return nil, errors.Errorf("vector type mismatch, %T and %T", dst, src)
		}
		return append(d, s[lo:hi]...), nil
	case [][]byte:
		s, ok := src.([][]byte)
		if !ok {
			return nil, errors.Errorf("vector type mismatch, %T and %T", dst, src)
		}
		return append(d, s[lo:hi]...), nil
	}
	return nil, errors.Errorf("unsupported vector type %T", dst)
}
