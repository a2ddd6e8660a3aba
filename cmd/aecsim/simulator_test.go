/*
DESCRIPTION
  simulator_test.go tests the aecsim frame loop and variable file handling.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/aec/config"
	"github.com/ausocean/aec/algo/sim"
	"github.com/ausocean/aec/device"
	"github.com/ausocean/utils/logging"
)

func newTestSimulator(t *testing.T, lux float64, precapture int) (*simulator, *device.ManualFlash) {
	t.Helper()
	l := (*logging.TestLogger)(t)
	e, err := aec.New(config.Config{Logger: l, LogLevel: logging.Debug}, sim.New(sim.Config{}, l), nil)
	if err != nil {
		t.Fatalf("could not create engine: %v", err)
	}
	t.Cleanup(func() { e.Destroy() })

	fl := device.NewManualFlash()
	err = fl.Start()
	if err != nil {
		t.Fatalf("could not start flash: %v", err)
	}
	s := newSimulator(e, sim.NewScene(lux), fl, l)
	s.precapture = precapture
	s.capture = true
	err = s.start()
	if err != nil {
		t.Fatalf("could not start simulator: %v", err)
	}
	return s, fl
}

func TestSimulator(t *testing.T) {
	tests := []struct {
		name         string
		lux          float64
		precapture   int
		wantCaptures int
		wantFired    bool
	}{
		{name: "bright", lux: 200, precapture: 50},
		{name: "dark", lux: 0.5, precapture: 50, wantCaptures: 1, wantFired: true},
		{name: "dark no trigger", lux: 0.5, precapture: -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, fl := newTestSimulator(t, test.lux, test.precapture)
			for i := 0; i < 200; i++ {
				err := s.step()
				if err != nil {
					t.Fatalf("frame %d failed: %v", i, err)
				}
			}
			if s.captures != test.wantCaptures {
				t.Errorf("did not get expected captures, want: %d, got: %d", test.wantCaptures, s.captures)
			}
			if got := fl.Fired() > 0; got != test.wantFired {
				t.Errorf("did not get expected flash use, want: %v, got: %v", test.wantFired, got)
			}
			if st := s.e.State(); st == aec.StateFlash {
				t.Errorf("pre-flash did not finish, pre-flash state: %s", s.e.PreFlashState())
			}
			s.stop()
			if st := s.e.State(); st != aec.StateInactive {
				t.Errorf("did not get expected state after stop, got: %s", st)
			}
		})
	}
}

func TestParseVars(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{
			in:   "PrecaptureWaitFrames=5\n\n# comment\n logging = Debug \n",
			want: map[string]string{"PrecaptureWaitFrames": "5", "logging": "Debug"},
		},
		{
			in:   "TuningPath=/a=b\n",
			want: map[string]string{"TuningPath": "/a=b"},
		},
		{
			in:      "PrecaptureWaitFrames\n",
			wantErr: true,
		},
	}

	for i, test := range tests {
		got, err := parseVars(strings.NewReader(test.in))
		if (err != nil) != test.wantErr {
			t.Errorf("did not get expected error for test %d, got: %v", i, err)
			continue
		}
		if test.wantErr {
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("did not get expected result for test %d\n%s", i, cmp.Diff(test.want, got))
		}
	}
}

func TestWatchVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aecsim.conf")
	err := os.WriteFile(path, []byte("PrecaptureWaitFrames=3\n"), 0o644)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}

	w, err := watchVars(path, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("could not watch config: %v", err)
	}
	defer w.Close()

	err = os.WriteFile(path, []byte("PrecaptureWaitFrames=7\n"), 0o644)
	if err != nil {
		t.Fatalf("could not rewrite config: %v", err)
	}

	// A write may be reported more than once; wait for the new content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case vars := <-w.C:
			if vars[config.KeyPrecaptureWaitFrames] == "7" {
				return
			}
		case <-timeout:
			t.Fatal("did not get changed vars")
		}
	}
}

func TestForwardVarsStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aecsim.conf")
	err := os.WriteFile(path, []byte("EVStep=0.5\n"), 0o644)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}

	events := make(chan fsnotify.Event, 1)
	c := make(chan map[string]string) // Nobody receives.
	done := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		forwardVars(path, events, nil, c, done, (*logging.TestLogger)(t))
		close(returned)
	}()

	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	close(done)
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("forwarding did not stop while a send was pending")
	}
	if _, ok := <-c; ok {
		t.Error("vars channel not closed")
	}
}
