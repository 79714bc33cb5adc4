package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrNoFileName is returned when a name is empty or absent.
	ErrNoFileName = errors.New("no file name given")
	// ErrNoExtension is returned when a name carries no dot-separated extension.
	ErrNoExtension = errors.New("file name is invalid: no extension found")
)

// SplitExtension splits a file name on its final dot. Everything before the
// last dot is the base, the final segment is the extension, so "a.b.c" yields
// ("a.b", "c"). Names without any dot are rejected, as are names ending in a
// dot, which leave no extension segment. A leading dot is fine: dotfiles like
// ".txt" yield an empty base.
func SplitExtension(name string) (string, string, error) {
	if name == "" {
		return "", "", ErrNoFileName
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "", "", ErrNoExtension
	}
	return name[:idx], name[idx+1:], nil
}

// HashFileName derives the stored identifier for a file: the SHA-1 digest of
// the base name (extension excluded) rendered as lowercase hex. The result is
// a pure function of the name, so the same base name maps to the same id
// across uploads and restarts.
func HashFileName(name string) (string, error) {
	base, _, err := SplitExtension(name)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:]), nil
}
