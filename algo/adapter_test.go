/*
DESCRIPTION
  adapter_test.go provides testing for the Adapter.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package algo

import (
	"errors"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

// recorder is an Algorithm that records the params of every call.
type recorder struct {
	calls       [][]Param
	unsupported map[ParamType]bool
	result      Result
}

func (r *recorder) SetParams(params []Param) error {
	r.calls = append(r.calls, params)
	for _, p := range params {
		if r.unsupported[p.Type()] {
			return ErrUnsupported
		}
	}
	return nil
}

func (r *recorder) GetParam(req Request, params []Param) (Result, error) {
	r.calls = append(r.calls, params)
	return r.result, nil
}

func (r *recorder) Process(s Stats, params []Param) (Output, error) {
	r.calls = append(r.calls, params)
	return Output{}, nil
}

func (r *recorder) Close() error { return nil }

func TestIdentityAttached(t *testing.T) {
	id := CameraIdentity{ID: 2, Role: RoleTele, Kind: TypeAux}
	rec := &recorder{result: FrameControl{}}
	a := NewAdapter(rec, (*logging.TestLogger)(t))
	a.SetIdentity(id)

	err := a.Set(FPSRange{Min: 15, Max: 30})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	err = a.SetOptional(DualCamera{Enabled: true})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	_, err = a.FlashFrameControl()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	_, err = a.Process(Stats{FrameID: 1})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if len(rec.calls) != 4 {
		t.Fatalf("unexpected number of calls, want: 4, got: %d", len(rec.calls))
	}
	for i, c := range rec.calls {
		got, ok := IdentityOf(c)
		if !ok {
			t.Errorf("call %d: no camera identity attached", i)
			continue
		}
		if got != id {
			t.Errorf("call %d: unexpected identity\nwant: %v\ngot: %v", i, id, got)
		}
	}

	want := []Param{FPSRange{Min: 15, Max: 30}, id}
	if !cmp.Equal(rec.calls[0], want) {
		t.Errorf("unexpected params\n%s", cmp.Diff(want, rec.calls[0]))
	}
}

func TestSetOptional(t *testing.T) {
	rec := &recorder{unsupported: map[ParamType]bool{ParamCropWindow: true}}
	a := NewAdapter(rec, (*logging.TestLogger)(t))

	err := a.SetOptional(CropWindow{Width: 1, Height: 1})
	if err != nil {
		t.Errorf("unsupported optional param should not be an error, got: %v", err)
	}

	err = a.Set(CropWindow{Width: 1, Height: 1})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestResultTypeMismatch(t *testing.T) {
	rec := &recorder{result: VendorTags{}}
	a := NewAdapter(rec, (*logging.TestLogger)(t))

	_, err := a.FlashFrameControl()
	if !errors.Is(err, ErrFailed) {
		t.Errorf("expected ErrFailed for mismatched result, got: %v", err)
	}
}

func TestStatsLuma(t *testing.T) {
	tests := []struct {
		stats Stats
		want  float32
	}{
		{stats: Stats{}, want: 0},
		{stats: Stats{Grid: []GridRegion{{R: 100, G: 100, B: 100, Count: 4}}}, want: 100},
		{stats: Stats{Grid: []GridRegion{{R: 0, G: 0, B: 0, Count: 1}, {R: 200, G: 200, B: 200, Count: 3}}}, want: 150},
	}

	for i, test := range tests {
		got := test.stats.Luma()
		if d := got - test.want; d > 0.01 || d < -0.01 {
			t.Errorf("did not get expected result for test: %d\nWant: %v, Got: %v\n", i, test.want, got)
		}
	}
}
