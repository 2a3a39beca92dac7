// Package export saves archives returned by the processing service into the
// download directory.
package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive names match what the service's own web client offered for download.
const (
	ConvertedArchive = "converted_dicom_files.zip"
	ExtractArchive   = "dicom_metadata_and_pixels.zip"
)

const maxAttempts = 1000

// Result describes a saved archive.
type Result struct {
	Path    string
	Bytes   int
	Entries []string
}

// Save validates data as a zip archive and writes it to dir/name. An existing
// file is never overwritten; "name (1).zip", "name (2).zip" and so on are
// tried instead.
func Save(dir, name string, data []byte) (Result, error) {
	entries, err := Inspect(data)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create download dir: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("create %s: %w", candidate, err)
		}
		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			_ = os.Remove(path)
			return Result{}, fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := file.Close(); err != nil {
			return Result{}, fmt.Errorf("close %s: %w", candidate, err)
		}
		return Result{Path: path, Bytes: len(data), Entries: entries}, nil
	}
	return Result{}, fmt.Errorf("no free file name for %s in %s", name, dir)
}

// Inspect lists the file entries of a zip archive held in memory.
func Inspect(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("read archive: empty response")
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}
