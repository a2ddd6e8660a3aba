/*
DESCRIPTION
  store.go provides the Store interface through which the AEC engine loads and
  persists calibration data, and FileStore, its file backed implementation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package calib

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Store loads and persists calibration data.
type Store interface {
	// Load returns the persisted calibration table.
	Load() (Table, error)

	// Save persists the points measured by a passing calibration run.
	Save(pts []Point) error

	// LoadInline returns the persisted inline calibration blob.
	LoadInline() ([]byte, error)

	// SaveInline persists an inline calibration blob.
	SaveInline(b []byte) error
}

// ErrTooLarge is returned when an inline calibration blob exceeds the store
// limit.
var ErrTooLarge = errors.New("inline calibration blob too large")

// FileStore is a Store backed by files. Empty paths disable the corresponding
// artifact; loading from a disabled path reports os.ErrNotExist.
type FileStore struct {
	CalibrationPath string // Binary calibration table.
	TuningPath      string // CSV tuning file.
	InlinePath      string // Inline calibration blob.
	MaxInlineSize   int    // Zero means unlimited.
}

// Load implements Store.
func (s *FileStore) Load() (Table, error) {
	if s.CalibrationPath == "" {
		return nil, errors.Wrap(os.ErrNotExist, "no calibration path")
	}
	f, err := os.Open(s.CalibrationPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not open calibration file")
	}
	defer f.Close()
	return ReadTable(f)
}

// Save implements Store. The binary table is written first, then the tuning
// file if a tuning path is set.
func (s *FileStore) Save(pts []Point) error {
	if s.CalibrationPath != "" {
		var buf bytes.Buffer
		err := WriteTable(&buf, TableOf(pts))
		if err != nil {
			return err
		}
		err = os.WriteFile(s.CalibrationPath, buf.Bytes(), 0644)
		if err != nil {
			return errors.Wrap(err, "could not write calibration file")
		}
	}

	if s.TuningPath != "" {
		var buf bytes.Buffer
		err := WriteTuning(&buf, pts)
		if err != nil {
			return err
		}
		err = os.WriteFile(s.TuningPath, buf.Bytes(), 0644)
		if err != nil {
			return errors.Wrap(err, "could not write tuning file")
		}
	}
	return nil
}

// LoadInline implements Store.
func (s *FileStore) LoadInline() ([]byte, error) {
	if s.InlinePath == "" {
		return nil, errors.Wrap(os.ErrNotExist, "no inline calibration path")
	}
	f, err := os.Open(s.InlinePath)
	if err != nil {
		return nil, errors.Wrap(err, "could not open inline calibration file")
	}
	defer f.Close()

	var r io.Reader = f
	if s.MaxInlineSize > 0 {
		// Read one byte past the limit so an oversized file is detected.
		r = io.LimitReader(f, int64(s.MaxInlineSize)+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read inline calibration file")
	}
	if s.MaxInlineSize > 0 && len(b) > s.MaxInlineSize {
		return nil, errors.Wrapf(ErrTooLarge, "limit is %d bytes", s.MaxInlineSize)
	}
	return b, nil
}

// SaveInline implements Store.
func (s *FileStore) SaveInline(b []byte) error {
	if s.InlinePath == "" {
		return nil
	}
	if s.MaxInlineSize > 0 && len(b) > s.MaxInlineSize {
		return errors.Wrapf(ErrTooLarge, "%d bytes, limit is %d", len(b), s.MaxInlineSize)
	}
	return errors.Wrap(os.WriteFile(s.InlinePath, b, 0644), "could not write inline calibration file")
}
