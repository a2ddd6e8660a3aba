/*
DESCRIPTION
  flash.go provides an implementation of the Flash interface for a dual-LED
  flash driver IC programmed over I2C.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flash provides an implementation of device.Flash for a dual-LED
// flash driver on an I2C bus.
package flash

import (
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"
	"github.com/kidoman/embd"

	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/device"
)

// Used to indicate package in logging.
const pkg = "flash: "

// Configuration defaults.
const (
	defaultBus        = 1
	defaultAddress    = 0x63
	defaultMaxCurrent = 1500 // mA.
	defaultTimeout    = 600  // ms.
	maxTimeout        = 1600 // ms.
)

// Driver registers.
const (
	regEnable     = 0x01
	regLED1Flash  = 0x03
	regLED2Flash  = 0x04
	regTiming     = 0x08
	regFlags      = 0x0a
	regDeviceID   = 0x0c
	enableLED1    = 0x01
	enableLED2    = 0x02
	enableFlash   = 0x0c
	flagTimeout   = 0x01
	flagThermal   = 0x04
	brightnessMax = 0x7f
	timeoutStep   = 40 // ms per timing register step.
)

// Configuration field errors.
var (
	errBadBus        = errors.New("bus bad or unset, defaulting")
	errBadAddress    = errors.New("address bad or unset, defaulting")
	errBadMaxCurrent = errors.New("max current bad or unset, defaulting")
	errBadTimeout    = errors.New("timeout bad or unset, defaulting")
)

// Bus is the part of an I2C bus used by the driver. embd.I2CBus satisfies
// Bus.
type Bus interface {
	WriteByteToReg(addr, reg, value byte) error
	ReadByteFromReg(addr, reg byte) (byte, error)
	Close() error
}

// Flash is an implementation of device.Flash for an I2C dual-LED driver.
type Flash struct {
	log       logging.Logger
	cfg       device.Config
	bus       Bus
	open      func(n byte) Bus
	isRunning bool
	last      [algo.NumLEDs]uint32
}

// New returns a new Flash that opens its bus with embd.
func New(l logging.Logger) *Flash {
	return NewWithBus(l, func(n byte) Bus { return embd.NewI2CBus(n) })
}

// NewWithBus returns a new Flash that opens its bus with open.
func NewWithBus(l logging.Logger, open func(n byte) Bus) *Flash {
	return &Flash{log: l, open: open}
}

// Name returns the name of the device.
func (f *Flash) Name() string {
	return "I2CFlash"
}

// Set will validate the relevant fields of the given Config struct and assign
// the struct to the Flash's Config. If fields are not valid, an error is
// added to the multiError and a default value is used.
func (f *Flash) Set(c device.Config) error {
	var errs device.MultiError
	if c.Bus < 0 || c.Bus > 0xff {
		errs = append(errs, errBadBus)
		c.Bus = defaultBus
	}

	if c.Address == 0 || c.Address > 0x7f {
		errs = append(errs, errBadAddress)
		c.Address = defaultAddress
	}

	if c.MaxCurrent == 0 {
		errs = append(errs, errBadMaxCurrent)
		c.MaxCurrent = defaultMaxCurrent
	}

	if c.Timeout == 0 || c.Timeout > maxTimeout {
		errs = append(errs, errBadTimeout)
		c.Timeout = defaultTimeout
	}
	f.cfg = c
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Start opens the bus, checks the driver responds and programs the flash
// timeout.
func (f *Flash) Start() error {
	if f.isRunning {
		return nil
	}
	f.bus = f.open(byte(f.cfg.Bus))

	id, err := f.bus.ReadByteFromReg(f.cfg.Address, regDeviceID)
	if err != nil {
		f.bus.Close()
		return fmt.Errorf("could not read device id: %w", err)
	}
	f.log.Info(pkg+"flash driver found", "bus", f.cfg.Bus, "address", f.cfg.Address, "id", id)

	err = f.bus.WriteByteToReg(f.cfg.Address, regTiming, byte(f.cfg.Timeout/timeoutStep))
	if err != nil {
		f.bus.Close()
		return fmt.Errorf("could not set flash timeout: %w", err)
	}
	err = f.bus.WriteByteToReg(f.cfg.Address, regEnable, 0)
	if err != nil {
		f.bus.Close()
		return fmt.Errorf("could not disable LEDs: %w", err)
	}
	f.isRunning = true
	return nil
}

// Stop turns the LEDs off and closes the bus.
func (f *Flash) Stop() error {
	if !f.isRunning {
		return nil
	}
	f.isRunning = false
	err := f.bus.WriteByteToReg(f.cfg.Address, regEnable, 0)
	if err != nil {
		f.log.Warning(pkg+"could not disable LEDs", "error", err.Error())
	}
	return f.bus.Close()
}

// IsRunning is used to determine if the device is running.
func (f *Flash) IsRunning() bool { return f.isRunning }

// Apply programs the brightness of each LED and enables those with current.
// Unchanged currents are not rewritten.
func (f *Flash) Apply(currents [algo.NumLEDs]uint32) error {
	if !f.isRunning {
		return errors.New("flash has not been started, can't apply")
	}
	if currents == f.last {
		return nil
	}

	var enable byte
	for i, reg := range [algo.NumLEDs]byte{regLED1Flash, regLED2Flash} {
		code := brightness(currents[i], f.cfg.MaxCurrent)
		err := f.bus.WriteByteToReg(f.cfg.Address, reg, code)
		if err != nil {
			return fmt.Errorf("could not set LED%d brightness: %w", i+1, err)
		}
		if code != 0 {
			enable |= enableLED1 << i
		}
	}
	if enable != 0 {
		enable |= enableFlash
	}
	err := f.bus.WriteByteToReg(f.cfg.Address, regEnable, enable)
	if err != nil {
		return fmt.Errorf("could not enable LEDs: %w", err)
	}
	f.last = currents
	f.log.Debug(pkg+"LED currents applied", "led1", currents[0], "led2", currents[1])
	return f.checkFlags()
}

// checkFlags reports driver faults.
func (f *Flash) checkFlags() error {
	flags, err := f.bus.ReadByteFromReg(f.cfg.Address, regFlags)
	if err != nil {
		return fmt.Errorf("could not read flags: %w", err)
	}
	if flags&flagThermal != 0 {
		return errors.New("flash driver thermal shutdown")
	}
	if flags&flagTimeout != 0 {
		f.log.Warning(pkg + "flash timed out")
	}
	return nil
}

// brightness returns the brightness register code for mA, limited to max.
func brightness(mA, max uint32) byte {
	if mA == 0 || max == 0 {
		return 0
	}
	if mA > max {
		mA = max
	}
	code := (mA*brightnessMax + max/2) / max
	if code == 0 {
		code = 1
	}
	return byte(code)
}
