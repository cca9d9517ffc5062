// Package safecopy places files into a directory without overwriting
// anything: a name already taken by different content moves to the next
// name in the sequence photo.jpg, photo-1.jpg, photo-2.jpg, and a name
// already holding identical content is reused.
package safecopy

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IncrementFilename appends -1 to a name, or increments an existing numeric
// suffix: a.jpg -> a-1.jpg -> a-2.jpg. A non-numeric suffix after the last
// dash is left alone and -1 is appended.
func IncrementFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base, ext = ext, ""
	}

	if i := strings.LastIndex(base, "-"); i >= 0 {
		if n, err := strconv.Atoi(base[i+1:]); err == nil && n >= 0 {
			return base[:i] + "-" + strconv.Itoa(n+1) + ext
		}
	}
	return base + "-1" + ext
}

// DestFilename returns the name src should take inside dir: either the first
// free name in the sequence or the first name whose content matches src.
func DestFilename(src, dir string) (string, error) {
	name := filepath.Base(src)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", err
	}

	for {
		target := filepath.Join(dir, name)
		info, err := os.Stat(target)
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		if info.Mode().IsRegular() && info.Size() == srcInfo.Size() {
			same, err := sameContent(src, target)
			if err != nil {
				return "", err
			}
			if same {
				return name, nil
			}
		}
		name = IncrementFilename(name)
	}
}

// Copy places src into dir and returns the local filename. A leading ~ in
// src expands to the home directory. Existing files are never overwritten.
func Copy(src, dir string) (string, error) {
	src, err := ExpandHome(src)
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", fmt.Errorf("copy attachment: empty source path")
	}

	name, err := DestFilename(src, dir)
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}
	if err := copyFile(src, target); err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	return name, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

func sameContent(a, b string) (bool, error) {
	sumA, err := checksum(a)
	if err != nil {
		return false, err
	}
	sumB, err := checksum(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(sumA, sumB), nil
}

func checksum(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, err
	}
	return hash.Sum(nil), nil
}
