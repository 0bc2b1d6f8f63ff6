// Package jsonfile reads and writes whole JSON documents on disk. Writes go
// through a temp-file, fsync, rename sequence so a reader sees either the
// previous or the new content, never a partial file, and each overwrite
// leaves a timestamped backup of the previous version next to the target.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// maxCollisions bounds the suffixes tried when two backups land on the same
// timestamp token.
const maxCollisions = 100

// fsops holds the operations tests replace to simulate crashes and pin the clock.
var fsops = struct {
	rename func(oldpath, newpath string) error
	now    func() time.Time
}{
	rename: os.Rename,
	now:    time.Now,
}

var tokenReplacer = strings.NewReplacer(":", "-", ".", "-")

// Token formats t as a backup timestamp token, an ISO-8601 UTC instant with
// colons and dots replaced by dashes. The width is fixed so lexicographic
// order of tokens equals chronological order.
func Token(t time.Time) string {
	return tokenReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000000000Z"))
}

// ParseToken is the inverse of Token. It also accepts the millisecond tokens
// older deployments wrote and ignores a trailing collision suffix.
func ParseToken(token string) (time.Time, error) {
	const secondsLayout = "2006-01-02T15-04-05"
	if len(token) < len(secondsLayout)+2 {
		return time.Time{}, fmt.Errorf("backup token %q too short", token)
	}
	t, err := time.Parse(secondsLayout, token[:len(secondsLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("backup token %q: %w", token, err)
	}
	rest := token[len(secondsLayout):]
	if rest[0] != '-' {
		return time.Time{}, fmt.Errorf("backup token %q: missing fraction", token)
	}
	frac, _, ok := strings.Cut(rest[1:], "Z")
	if !ok || frac == "" || len(frac) > 9 {
		return time.Time{}, fmt.Errorf("backup token %q: bad fraction", token)
	}
	var nanos int64
	for i := 0; i < 9; i++ {
		nanos *= 10
		if i < len(frac) {
			c := frac[i]
			if c < '0' || c > '9' {
				return time.Time{}, fmt.Errorf("backup token %q: bad fraction", token)
			}
			nanos += int64(c - '0')
		}
	}
	return t.Add(time.Duration(nanos)).UTC(), nil
}

// Marshal renders v the way documents are stored: two-space indentation,
// HTML characters left as is, trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON backs up the current content of path, then atomically replaces
// it with v. It returns the backup file name, or "" when there was nothing
// to back up. Any failure before the rename leaves path untouched.
func WriteJSON(path string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	backup, err := Backup(path, "")
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return backup, err
	}
	return backup, nil
}

// WriteFileAtomic writes data to a temporary sibling of path, syncs it and
// renames it over path. The rename is the atomicity boundary.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrIO, err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", types.ErrIO, step, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %w", types.ErrIO, err)
	}
	if err := fsops.rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming temp file onto %s: %w", types.ErrIO, path, err)
	}
	return nil
}

// Backup copies path to "<base>.bak.<token>" in the same directory, with
// "<base>.bak.<label>.<token>" when label is set. A missing source is not an
// error and yields "". The backup file is created exclusively, so a token
// collision picks the next "-NN" suffix instead of overwriting.
func Backup(path, label string) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: opening %s for backup: %w", types.ErrIO, path, err)
	}
	defer src.Close()

	dir := filepath.Dir(path)
	name := filepath.Base(path) + ".bak."
	if label != "" {
		name += label + "."
	}
	name += Token(fsops.now())

	for i := 0; i < maxCollisions; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%02d", name, i)
		}
		dstPath := filepath.Join(dir, candidate)
		dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: creating backup %s: %w", types.ErrIO, candidate, err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			os.Remove(dstPath)
			return "", fmt.Errorf("%w: copying backup %s: %w", types.ErrIO, candidate, err)
		}
		if err := dst.Sync(); err != nil {
			dst.Close()
			os.Remove(dstPath)
			return "", fmt.Errorf("%w: syncing backup %s: %w", types.ErrIO, candidate, err)
		}
		if err := dst.Close(); err != nil {
			os.Remove(dstPath)
			return "", fmt.Errorf("%w: closing backup %s: %w", types.ErrIO, candidate, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w: no free backup name for %s", types.ErrIO, name)
}

// ReadFile returns the bytes at path, mapping a missing file to
// types.ErrNotFound and any other failure to types.ErrIO.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrNotFound, path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrIO, path, err)
	}
	return data, nil
}

// ReadJSON reads path and decodes it into v. Malformed content yields
// types.ErrParse.
func ReadJSON(path string, v any) error {
	data, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrParse, path, err)
	}
	return nil
}
