/*
DESCRIPTION
  fake_test.go provides a scripted algorithm and calibration store for
  testing the engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import (
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/aec/aec/config"
	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/calib"
)

// fakeAlg is an algorithm whose outputs are set by the test.
type fakeAlg struct {
	out        algo.Output
	processErr error
	modeErr    error // Returned when setting an operation mode.
	flashFC    algo.FrameControl
	defaults   algo.Output
	tags       []algo.VendorTag
	inline     []byte
	inlineErr  error

	// Measurement results returned per point index; the last result of a
	// point repeats once the others are used up.
	results map[uint32][]algo.MeasurementResult
	// LED currents of the start exposure of each point.
	currents func(idx uint32) [algo.NumLEDs]uint32

	unsupported map[algo.ParamType]bool

	sets       []algo.Param
	modes      []algo.OperationMode
	noIdentity int
	closed     bool
}

func newFakeAlg() *fakeAlg {
	return &fakeAlg{
		results: make(map[uint32][]algo.MeasurementResult),
		currents: func(idx uint32) [algo.NumLEDs]uint32 {
			return [algo.NumLEDs]uint32{100 + 10*idx, 200 + 10*idx}
		},
		unsupported: make(map[algo.ParamType]bool),
	}
}

func (f *fakeAlg) checkIdentity(params []algo.Param) {
	if _, ok := algo.IdentityOf(params); !ok {
		f.noIdentity++
	}
}

func (f *fakeAlg) SetParams(params []algo.Param) error {
	f.checkIdentity(params)
	for _, p := range params {
		if f.unsupported[p.Type()] {
			return algo.ErrUnsupported
		}
		if _, ok := p.(algo.OperationMode); ok && f.modeErr != nil {
			return f.modeErr
		}
	}
	for _, p := range params {
		if _, ok := p.(algo.CameraIdentity); ok {
			continue
		}
		f.sets = append(f.sets, p)
		if m, ok := p.(algo.OperationMode); ok {
			f.modes = append(f.modes, m)
		}
	}
	return nil
}

func (f *fakeAlg) GetParam(req algo.Request, params []algo.Param) (algo.Result, error) {
	f.checkIdentity(params)
	switch r := req.(type) {
	case algo.FlashFrameControlRequest:
		return f.flashFC, nil
	case algo.StartExposureRequest:
		return algo.FrameControl{LEDCurrents: f.currents(r.Index)}, nil
	case algo.MeasurementResultRequest:
		rs := f.results[r.Index]
		if len(rs) == 0 {
			return algo.MeasurementResult{Index: r.Index}, nil
		}
		res := rs[0]
		if len(rs) > 1 {
			f.results[r.Index] = rs[1:]
		}
		return res, nil
	case algo.VendorTagsRequest:
		return algo.VendorTags{Tags: f.tags}, nil
	case algo.DefaultsRequest:
		return f.defaults, nil
	case algo.InlineCalibrationRequest:
		if f.inlineErr != nil {
			return nil, f.inlineErr
		}
		return algo.InlineCalibration{Data: f.inline}, nil
	}
	return nil, algo.ErrUnsupported
}

func (f *fakeAlg) Process(s algo.Stats, params []algo.Param) (algo.Output, error) {
	f.checkIdentity(params)
	if f.processErr != nil {
		return algo.Output{}, f.processErr
	}
	return f.out, nil
}

func (f *fakeAlg) Close() error {
	f.closed = true
	return nil
}

// lastMode returns the last operation mode set.
func (f *fakeAlg) lastMode() algo.Mode {
	if len(f.modes) == 0 {
		return -1
	}
	return f.modes[len(f.modes)-1].Mode
}

// fakeStore is an in-memory calibration store.
type fakeStore struct {
	table   calib.Table
	loadErr error
	inline  []byte
	saves   int
	saved   []calib.Point
	savedIn []byte
}

func (s *fakeStore) Load() (calib.Table, error) { return s.table, s.loadErr }

func (s *fakeStore) Save(pts []calib.Point) error {
	s.saves++
	s.saved = append([]calib.Point(nil), pts...)
	return nil
}

func (s *fakeStore) LoadInline() ([]byte, error) { return s.inline, s.loadErr }

func (s *fakeStore) SaveInline(b []byte) error {
	s.savedIn = b
	return nil
}

// newTestEngine returns an engine over a fake algorithm and store. mod, if
// not nil, adjusts the config before construction.
func newTestEngine(t *testing.T, mod func(*config.Config)) (*Engine, *fakeAlg, *fakeStore) {
	t.Helper()
	cfg := config.Config{Logger: (*logging.TestLogger)(t), LogLevel: logging.Debug}
	if mod != nil {
		mod(&cfg)
	}
	alg := newFakeAlg()
	store := &fakeStore{}
	e, err := New(cfg, alg, store)
	if err != nil {
		t.Fatalf("could not create engine: %v", err)
	}
	return e, alg, store
}

func handle(t *testing.T, e *Engine, in Input, out Output) {
	t.Helper()
	err := e.HandleCommand(in.Command(), in, out)
	if err != nil {
		t.Fatalf("%s failed: %v", in.Command(), err)
	}
}

// stats processes a frame with the algorithm reporting info.
func stats(t *testing.T, e *Engine, alg *fakeAlg, info algo.FrameInfo) *StatsOutput {
	t.Helper()
	alg.out.FrameInfo = info
	out := &StatsOutput{}
	handle(t, e, ProcessStats{}, out)
	return out
}

func perFrame(t *testing.T, e *Engine, h HALParam) *PerFrameOutput {
	t.Helper()
	out := &PerFrameOutput{}
	handle(t, e, SetPerFrameControlParam{HAL: h}, out)
	return out
}

// trigger sends h, which carries a trigger, followed by the same request with
// its triggers idle, and returns the output of h.
func trigger(t *testing.T, e *Engine, h HALParam) *PerFrameOutput {
	t.Helper()
	out := perFrame(t, e, h)
	h.AETrigger, h.AFTrigger = AETriggerIdle, AFTriggerIdle
	perFrame(t, e, h)
	return out
}

func nodes(t *testing.T, e *Engine, n SetNodesUpdate) {
	t.Helper()
	handle(t, e, n, nil)
}

// converged returns an engine that is streaming in StateConverged.
func converged(t *testing.T, mod func(*config.Config)) (*Engine, *fakeAlg, *fakeStore) {
	t.Helper()
	e, alg, store := newTestEngine(t, mod)
	handle(t, e, StartDriver{}, nil)
	handle(t, e, StartStreaming{}, nil)
	stats(t, e, alg, algo.FrameInfo{Settled: true})
	if e.State() != StateConverged {
		t.Fatalf("did not converge, state: %s", e.State())
	}
	return e, alg, store
}

// checkInvariants fails t if the sub-states are inconsistent with the
// exposure state.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	if e.state != StateFlash && e.preFlash != PreFlashInactive {
		t.Errorf("pre-flash state %s outside of Flash (state %s)", e.preFlash, e.state)
	}
	if e.state != StateFlash && e.trigger != FlashTriggerInvalid {
		t.Errorf("flash trigger %s outside of Flash (state %s)", e.trigger, e.state)
	}
	if e.state != StateLEDCalibration && e.measure != nil {
		t.Errorf("LED measurement held outside of LEDCalibration (state %s)", e.state)
	}
	if m := e.measure; m != nil {
		if m.completed > m.target || uint(len(m.currents)) > m.target {
			t.Errorf("measurement overflow: completed %d, table %d, target %d", m.completed, len(m.currents), m.target)
		}
	}
}
