package kd

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/kdrt/kd/internal/kdfs"
)

// FileMode selects how Fopen creates or truncates its target, modeled on
// the original API's fopen(3)-style mode strings ("r", "w", "a", "r+").
type FileMode int

const (
	FileReadOnly FileMode = iota
	FileWriteTruncate
	FileWriteAppend
	FileReadWrite
)

// File is an open file handle (§6 "Filesystem collaborator").
type File struct {
	f *kdfs.File
}

// Fopen opens pathname per mode.
func Fopen(pathname string, mode FileMode) (*File, Error) {
	f, err := kdfs.Open(pathname, kdfs.OpenMode(mode))
	if err != nil {
		return nil, mapFSError(err)
	}
	return &File{f: f}, ErrNone
}

// Close closes the file.
func (f *File) Close() Error {
	if err := f.f.Close(); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// Read reads into buf.
func (f *File) Read(buf []byte) (int, Error) {
	n, err := f.f.Read(buf)
	if err != nil && err != io.EOF {
		return n, mapFSError(err)
	}
	return n, ErrNone
}

// Write writes buf.
func (f *File) Write(buf []byte) (int, Error) {
	n, err := f.f.Write(buf)
	if err != nil {
		return n, mapFSError(err)
	}
	return n, ErrNone
}

// Seek repositions the file offset.
func (f *File) Seek(offset int64, whence int) (int64, Error) {
	pos, err := f.f.Seek(offset, whence)
	if err != nil {
		return pos, mapFSError(err)
	}
	return pos, ErrNone
}

// Tell reports the current file offset.
func (f *File) Tell() (int64, Error) {
	pos, err := f.f.Tell()
	if err != nil {
		return pos, mapFSError(err)
	}
	return pos, ErrNone
}

// Truncate resizes the file to size bytes.
func (f *File) Truncate(size int64) Error {
	if err := f.f.Truncate(size); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// EOF reports whether the last Read hit end-of-file.
func (f *File) EOF() bool { return f.f.EOF() }

// Ferror reports whether the last Read or Write set the sticky error flag.
func (f *File) Ferror() bool { return f.f.Error() }

// ClearErr clears the sticky EOF and error flags.
func (f *File) ClearErr() { f.f.ClearError() }

// Access reports whether pathname exists and is reachable.
func Access(pathname string) Error {
	if err := kdfs.Access(pathname); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// Stat reports whether pathname names a directory, plus its size in bytes.
func Stat(pathname string) (isDir bool, size int64, kerr Error) {
	info, err := kdfs.Stat(pathname)
	if err != nil {
		return false, 0, mapFSError(err)
	}
	return info.IsDir(), info.Size(), ErrNone
}

// Rename renames src to dest. The result follows the host rename(2)/
// MoveFile semantics directly: a nonexistent src is NOENT, a file-over-
// directory or directory-over-nonempty-directory attempt is surfaced per
// the host's own rejection, not independently re-validated (§6 "Filesystem
// collaborator").
func Rename(src, dest string) Error {
	if err := kdfs.Rename(src, dest); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// Remove deletes pathname.
func Remove(pathname string) Error {
	if err := kdfs.Remove(pathname); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// Dir is an open directory iterator. Its single name slot is the per-file
// analogue of the per-thread scratch the original API reuses for this
// purpose; a fresh ReadEntry call overwrites whatever the previous one
// returned.
type Dir struct {
	d *kdfs.Dir
}

// OpenDir opens pathname for iteration.
func OpenDir(pathname string) (*Dir, Error) {
	d, err := kdfs.OpenDir(pathname)
	if err != nil {
		return nil, mapFSError(err)
	}
	return &Dir{d: d}, ErrNone
}

// ReadEntry advances the iterator, returning the next entry's name. At
// end-of-directory it returns ("", ErrNone) with an empty name; callers
// distinguish "no more entries" from a real failure by checking for an
// empty returned name rather than a non-ErrNone Error.
func (d *Dir) ReadEntry() (string, Error) {
	name, err := d.d.ReadEntry()
	if err != nil {
		if err == io.EOF {
			return "", ErrNone
		}
		return "", mapFSError(err)
	}
	return name, ErrNone
}

// Close closes the directory iterator.
func (d *Dir) Close() Error {
	if err := d.d.Close(); err != nil {
		return mapFSError(err)
	}
	return ErrNone
}

// mapFSError maps a filesystem error to a canonical Error kind (§7),
// following the host-errno-to-canonical-kind mapping approach the original
// API applies via kdSetErrorPlatformVEN.
func mapFSError(err error) Error {
	if err == nil {
		return ErrNone
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoEnt
	}
	if errors.Is(err, fs.ErrExist) {
		return ErrExists
	}
	if errors.Is(err, fs.ErrPermission) {
		return ErrAccess
	}
	if errors.Is(err, os.ErrClosed) {
		return ErrBadFile
	}
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.EACCES:
			return ErrAccess
		case syscall.EBUSY:
			return ErrBusy
		case syscall.EEXIST:
			return ErrExists
		case syscall.EINVAL:
			return ErrInvalid
		case syscall.ENOENT:
			return ErrNoEnt
		case syscall.ENOTDIR:
			return ErrInvalid
		case syscall.EISDIR:
			return ErrIsDir
		case syscall.ENAMETOOLONG:
			return ErrNameTooLong
		case syscall.ENOSPC:
			return ErrNoSpace
		case syscall.EMFILE, syscall.ENFILE:
			return ErrTooManyOpenFiles
		case syscall.EFBIG:
			return ErrFileTooLarge
		case syscall.ENOMEM:
			return ErrOutOfMemory
		}
	}
	return ErrIO
}
