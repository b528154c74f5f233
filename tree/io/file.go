package io

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is a random-access input file.
type File interface {
	io.ReadSeeker
	io.Closer
	Size() (int64, error)
}

// WriteFile is an append-only output file that can be synced before close.
type WriteFile interface {
	io.Writer
	io.Closer
	Sync() error
}

type osFile struct {
	f *os.File
}

func (of osFile) Size() (int64, error) {
	fi, err := of.f.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return fi.Size(), nil
}

func (of osFile) Read(p []byte) (n int, err error) {
	if n, err = of.f.Read(p); err != nil && err != io.EOF {
		return n, errors.WithStack(err)
	}
	return
}

func (of osFile) Seek(offset int64, whence int) (int64, error) {
	n, err := of.f.Seek(offset, whence)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

func (of osFile) Close() error {
	if err := of.f.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return osFile{f: f}, nil
}

type osWriteFile struct {
	f *os.File
}

func (of osWriteFile) Write(p []byte) (n int, err error) {
	if n, err = of.f.Write(p); err != nil {
		return n, errors.WithStack(err)
	}
	return
}

func (of osWriteFile) Sync() error {
	if err := of.f.Sync(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (of osWriteFile) Close() error {
	if err := of.f.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func Create(path string) (WriteFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return osWriteFile{f: f}, nil
}
