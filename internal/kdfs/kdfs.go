// Package kdfs implements the neutral filesystem primitives behind the
// root package's file façade: open/close/read/write/seek/truncate/access/
// stat plus a directory iterator. It wraps the os package directly and
// returns raw *os.PathError/*fs.PathError values; the root package maps
// those to canonical Error kinds, keeping kdfs itself free of any
// dependency on the root package.
package kdfs

import (
	"io"
	"os"
)

// Whence mirrors io.Seeker's origin constants, re-exported so callers don't
// need to import io themselves for this package's API.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

// File wraps an open file handle.
type File struct {
	f   *os.File
	eof bool
	err bool
}

// OpenMode selects how Open creates or truncates the target file,
// patterned after the original API's fopen-style mode strings.
type OpenMode int

const (
	ReadOnly OpenMode = iota
	WriteTruncate
	WriteAppend
	ReadWrite
)

// Open opens pathname per mode.
func Open(pathname string, mode OpenMode) (*File, error) {
	var flag int
	switch mode {
	case ReadOnly:
		flag = os.O_RDONLY
	case WriteTruncate:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case WriteAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ReadWrite:
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(pathname, flag, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Close closes the file.
func (f *File) Close() error { return f.f.Close() }

// Read reads into buf, tracking end-of-file and error sticky flags the way
// the original API's kdFEOF/kdFerror query them after the fact rather than
// only via the Read call's own return.
func (f *File) Read(buf []byte) (int, error) {
	n, err := f.f.Read(buf)
	if err == io.EOF {
		f.eof = true
	} else if err != nil {
		f.err = true
	}
	return n, err
}

// Write writes buf.
func (f *File) Write(buf []byte) (int, error) {
	n, err := f.f.Write(buf)
	if err != nil {
		f.err = true
	}
	return n, err
}

// Seek repositions the file offset; seeking also clears the sticky EOF flag
// per standard C stream semantics.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.f.Seek(offset, whence)
	if err == nil {
		f.eof = false
	}
	return pos, err
}

// Tell reports the current file offset.
func (f *File) Tell() (int64, error) {
	return f.f.Seek(0, io.SeekCurrent)
}

// Truncate resizes the file to size bytes.
func (f *File) Truncate(size int64) error {
	return f.f.Truncate(size)
}

// EOF reports whether the last Read hit end-of-file.
func (f *File) EOF() bool { return f.eof }

// Error reports whether the last Read or Write set the sticky error flag.
func (f *File) Error() bool { return f.err }

// ClearError clears the sticky EOF and error flags.
func (f *File) ClearError() {
	f.eof = false
	f.err = false
}

// Access reports whether pathname exists and is reachable.
func Access(pathname string) error {
	_, err := os.Stat(pathname)
	return err
}

// Stat reports file metadata.
func Stat(pathname string) (os.FileInfo, error) {
	return os.Stat(pathname)
}

// Rename renames src to dest, deferring entirely to the host rename(2)/
// MoveFile semantics (directory-into-itself, nonempty-target, and similar
// edge cases are whatever the OS reports, not reimplemented here).
func Rename(src, dest string) error {
	return os.Rename(src, dest)
}

// Remove deletes pathname.
func Remove(pathname string) error {
	return os.Remove(pathname)
}

// Dir is an open directory iterator.
type Dir struct {
	f       *os.File
	scratch string
}

// OpenDir opens pathname for iteration via ReadEntry.
func OpenDir(pathname string) (*Dir, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	return &Dir{f: f}, nil
}

// ReadEntry advances the iterator and returns the next entry's name, or
// ("", io.EOF) once exhausted. The name is stashed in the iterator's
// single scratch slot, mirroring the original API's per-thread scratch
// buffer: a second ReadEntry call overwrites it.
func (d *Dir) ReadEntry() (string, error) {
	names, err := d.f.Readdirnames(1)
	if err != nil {
		return "", err
	}
	d.scratch = names[0]
	return d.scratch, nil
}

// Close closes the directory iterator.
func (d *Dir) Close() error { return d.f.Close() }
