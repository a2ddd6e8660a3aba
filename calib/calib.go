/*
DESCRIPTION
  calib.go provides the dual-LED flash calibration table and measured point
  types, and the binary and CSV encodings used to persist them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package calib provides persistence of dual-LED flash calibration data: a
// fixed-point binary calibration table, a human readable CSV tuning file and
// an opaque inline calibration blob.
package calib

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TuningHeader is the first line of a tuning file.
const TuningHeader = "LED1,LED2,RG,BG,Flux"

// Binary table layout.
const (
	fixedShift = 16 // Q16.16.
	countSize  = 4
	entrySize  = 12

	// MaxEntries bounds the entry count accepted when reading a table.
	MaxEntries = 1024
)

// Entry is one calibration table entry: the colour ratios and flux measured
// at one LED current pair.
type Entry struct {
	RG, BG, Flux float32
}

// Table is a calibration table as loaded into the exposure algorithm.
type Table []Entry

// Point is a measured LED calibration point.
type Point struct {
	LED1, LED2 uint32 // mA.
	RG, BG     float32
	Flux       float32
}

// TableOf returns the calibration table for measured points pts.
func TableOf(pts []Point) Table {
	t := make(Table, len(pts))
	for i, p := range pts {
		t[i] = Entry{RG: p.RG, BG: p.BG, Flux: p.Flux}
	}
	return t
}

func toFixed(f float32) uint32 {
	return uint32(int32(math.Round(float64(f) * (1 << fixedShift))))
}

func fromFixed(v uint32) float32 {
	return float32(float64(int32(v)) / (1 << fixedShift))
}

// WriteTable writes t to w in the binary calibration format: a little-endian
// uint32 count followed by count RG, BG, flux triples in Q16.16 fixed-point.
func WriteTable(w io.Writer, t Table) error {
	buf := make([]byte, countSize+len(t)*entrySize)
	binary.LittleEndian.PutUint32(buf, uint32(len(t)))
	for i, e := range t {
		b := buf[countSize+i*entrySize:]
		binary.LittleEndian.PutUint32(b[0:], toFixed(e.RG))
		binary.LittleEndian.PutUint32(b[4:], toFixed(e.BG))
		binary.LittleEndian.PutUint32(b[8:], toFixed(e.Flux))
	}
	_, err := w.Write(buf)
	if err != nil {
		return errors.Wrap(err, "could not write calibration table")
	}
	return nil
}

// ReadTable reads a binary calibration table from r.
func ReadTable(r io.Reader) (Table, error) {
	var hdr [countSize]byte
	_, err := io.ReadFull(r, hdr[:])
	if err != nil {
		return nil, errors.Wrap(err, "could not read calibration count")
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxEntries {
		return nil, fmt.Errorf("calibration count %d exceeds maximum %d", n, MaxEntries)
	}

	buf := make([]byte, int(n)*entrySize)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %d calibration entries", n)
	}

	t := make(Table, n)
	for i := range t {
		b := buf[i*entrySize:]
		t[i] = Entry{
			RG:   fromFixed(binary.LittleEndian.Uint32(b[0:])),
			BG:   fromFixed(binary.LittleEndian.Uint32(b[4:])),
			Flux: fromFixed(binary.LittleEndian.Uint32(b[8:])),
		}
	}
	return t, nil
}

// WriteTuning writes pts to w as a tuning CSV file.
func WriteTuning(w io.Writer, pts []Point) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, TuningHeader)
	for _, p := range pts {
		fmt.Fprintf(bw, "%d,%d,%s,%s,%s\n", p.LED1, p.LED2, ftoa(p.RG), ftoa(p.BG), ftoa(p.Flux))
	}
	return errors.Wrap(bw.Flush(), "could not write tuning data")
}

func ftoa(f float32) string { return strconv.FormatFloat(float64(f), 'f', 4, 32) }

// ReadTuning reads a tuning CSV file from r.
func ReadTuning(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	recs, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "could not read tuning data")
	}
	if len(recs) == 0 {
		return nil, errors.New("tuning data has no header")
	}
	if got := strings.Join(recs[0], ","); got != TuningHeader {
		return nil, fmt.Errorf("unexpected tuning header: %q", got)
	}

	pts := make([]Point, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		var p Point
		led1, err := strconv.ParseUint(rec[0], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: bad LED1 current", i+1)
		}
		led2, err := strconv.ParseUint(rec[1], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: bad LED2 current", i+1)
		}
		p.LED1, p.LED2 = uint32(led1), uint32(led2)

		var vals [3]float32
		for j := range vals {
			f, err := strconv.ParseFloat(rec[2+j], 32)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: bad ratio", i+1)
			}
			vals[j] = float32(f)
		}
		p.RG, p.BG, p.Flux = vals[0], vals[1], vals[2]
		pts = append(pts, p)
	}
	return pts, nil
}
