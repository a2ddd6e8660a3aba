/*
DESCRIPTION
  device.go provides Flash, an interface that describes a configurable LED
  flash that can be started and stopped and driven with LED currents.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for the flash
// hardware driven by the frame controls of the AEC engine.
package device

import (
	"errors"
	"fmt"

	"github.com/ausocean/aec/algo"
)

// Config holds the configuration of a Flash. An implementation should
// specify which fields it considers.
type Config struct {
	Bus        int    // I2C bus number.
	Address    byte   // I2C address of the driver.
	MaxCurrent uint32 // mA per LED.
	Timeout    uint32 // Flash timeout in ms.
}

// Flash describes a configurable dual-LED flash.
type Flash interface {
	// Name returns the name of the Flash.
	Name() string

	// Set allows for configuration of the Flash using a Config struct.
	Set(c Config) error

	// Start readies the Flash; after which Apply may be called.
	Start() error

	// Stop turns the LEDs off and releases the Flash.
	Stop() error

	// IsRunning is used to determine if the device is running.
	IsRunning() bool

	// Apply drives the LEDs with the given currents in mA. Zero currents turn
	// the LEDs off.
	Apply(currents [algo.NumLEDs]uint32) error
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters
// for Flash devices.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ManualFlash is an implementation of the Flash interface that records the
// currents it is given rather than driving hardware.
type ManualFlash struct {
	isRunning bool
	max       uint32
	applied   [][algo.NumLEDs]uint32
}

// NewManualFlash provides a new ManualFlash.
func NewManualFlash() *ManualFlash {
	return &ManualFlash{}
}

// Name returns the name of ManualFlash i.e. "ManualFlash".
func (m *ManualFlash) Name() string { return "ManualFlash" }

// Set takes the maximum current from c. A zero maximum does not limit
// currents.
func (m *ManualFlash) Set(c Config) error {
	m.max = c.MaxCurrent
	return nil
}

// Start sets the ManualFlash isRunning flag to true.
func (m *ManualFlash) Start() error {
	m.isRunning = true
	return nil
}

// Stop sets the isRunning flag to false.
func (m *ManualFlash) Stop() error {
	m.isRunning = false
	return nil
}

// IsRunning returns the value of the isRunning flag to indicate if Start has
// been called (and Stop has not been called after).
func (m *ManualFlash) IsRunning() bool { return m.isRunning }

// Apply records currents, limited to the maximum current.
func (m *ManualFlash) Apply(currents [algo.NumLEDs]uint32) error {
	if !m.isRunning {
		return errors.New("manual flash has not been started, can't apply")
	}
	if m.max != 0 {
		for i, c := range currents {
			if c > m.max {
				currents[i] = m.max
			}
		}
	}
	m.applied = append(m.applied, currents)
	return nil
}

// Applied returns the currents applied since the ManualFlash was created.
func (m *ManualFlash) Applied() [][algo.NumLEDs]uint32 { return m.applied }

// Fired returns the number of applications that turned an LED on.
func (m *ManualFlash) Fired() int {
	var n int
	for _, c := range m.applied {
		if c != ([algo.NumLEDs]uint32{}) {
			n++
		}
	}
	return n
}
