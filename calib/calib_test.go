/*
DESCRIPTION
  calib_test.go provides testing for the calibration encodings, FileStore and
  Summarize.

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
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestWriteTableLayout(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, Table{{RG: 1, BG: 0.5, Flux: 2}})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := []byte{
		0x01, 0x00, 0x00, 0x00, // Count.
		0x00, 0x00, 0x01, 0x00, // RG 1.0.
		0x00, 0x80, 0x00, 0x00, // BG 0.5.
		0x00, 0x00, 0x02, 0x00, // Flux 2.0.
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("unexpected encoding\nwant: %x\ngot:  %x", want, buf.Bytes())
	}
}

func TestReadTable(t *testing.T) {
	want := Table{{RG: 1.25, BG: 0.75, Flux: 310.5}, {RG: 0.9, BG: 1.1, Flux: -2}}
	var buf bytes.Buffer
	err := WriteTable(&buf, want)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !cmp.Equal(got, want, cmpopts.EquateApprox(0, 1.0/(1<<fixedShift))) {
		t.Errorf("unexpected table\n%s", cmp.Diff(want, got))
	}
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short count", data: []byte{0x01, 0x00}},
		{name: "truncated", data: []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00}},
		{name: "too many", data: []byte{0xff, 0xff, 0x00, 0x00}},
	}

	for _, test := range tests {
		_, err := ReadTable(bytes.NewReader(test.data))
		if err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestTuning(t *testing.T) {
	pts := []Point{
		{LED1: 100, LED2: 0, RG: 1.5, BG: 0.5, Flux: 120},
		{LED1: 50, LED2: 50, RG: 1.25, BG: 0.75, Flux: 118.5},
	}

	var buf bytes.Buffer
	err := WriteTuning(&buf, pts)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	wantLines := []string{
		"LED1,LED2,RG,BG,Flux",
		"100,0,1.5000,0.5000,120.0000",
		"50,50,1.2500,0.7500,118.5000",
	}
	if !cmp.Equal(lines, wantLines) {
		t.Errorf("unexpected tuning file\n%s", cmp.Diff(wantLines, lines))
	}

	got, err := ReadTuning(&buf)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !cmp.Equal(got, pts) {
		t.Errorf("unexpected points\n%s", cmp.Diff(pts, got))
	}

	_, err = ReadTuning(strings.NewReader("A,B,C,D,E\n1,2,3,4,5\n"))
	if err == nil {
		t.Error("expected error for bad header")
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{
		CalibrationPath: filepath.Join(dir, "led.bin"),
		TuningPath:      filepath.Join(dir, "led.csv"),
		InlinePath:      filepath.Join(dir, "inline.bin"),
		MaxInlineSize:   8,
	}

	_, err := s.Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist before save, got: %v", err)
	}

	pts := []Point{{LED1: 10, LED2: 20, RG: 1, BG: 2, Flux: 3}}
	err = s.Save(pts)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	tbl, err := s.Load()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !cmp.Equal(tbl, TableOf(pts)) {
		t.Errorf("unexpected table\n%s", cmp.Diff(TableOf(pts), tbl))
	}

	if _, err := os.Stat(s.TuningPath); err != nil {
		t.Errorf("tuning file not written: %v", err)
	}

	err = s.SaveInline([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	b, err := s.LoadInline()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("unexpected inline blob: %v", b)
	}

	err = s.SaveInline(make([]byte, 9))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got: %v", err)
	}

	err = os.WriteFile(s.InlinePath, make([]byte, 9), 0644)
	if err != nil {
		t.Fatalf("could not write oversized blob: %v", err)
	}
	_, err = s.LoadInline()
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge on load, got: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]Point{
		{RG: 1, BG: 2, Flux: 10},
		{RG: 3, BG: 2, Flux: 30},
	})
	want := Summary{
		Points:   2,
		MeanRG:   2,
		StdRG:    math.Sqrt2,
		MeanBG:   2,
		StdBG:    0,
		MeanFlux: 20,
		MinFlux:  10,
		MaxFlux:  30,
	}
	if !cmp.Equal(got, want, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("unexpected summary\n%s", cmp.Diff(want, got))
	}

	one := Summarize([]Point{{RG: 1, BG: 1, Flux: 1}})
	if one.StdRG != 0 || one.StdBG != 0 {
		t.Errorf("expected zero deviation for one point, got: %+v", one)
	}
}
