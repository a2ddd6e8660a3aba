/*
DESCRIPTION
  ledcalib.go provides the LED calibration state machine, run while the
  engine is in StateLEDCalibration. A run measures the flash colour ratios
  and flux at a sequence of LED current points chosen by the algorithm and
  persists them once every point has passed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import (
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/calib"
)

// flashMeasurement is an LED calibration run. The engine owns the only
// reference; dropping it releases the current table.
type flashMeasurement struct {
	id        uuid.UUID
	start     time.Time
	target    uint
	completed uint
	allPassed bool

	// currents[i] are the LED currents of measurement point i.
	currents [][algo.NumLEDs]uint32
	points   []calib.Point
}

func newFlashMeasurement(n uint) *flashMeasurement {
	return &flashMeasurement{
		id:        uuid.New(),
		start:     time.Now(),
		target:    n,
		allPassed: true,
		currents:  make([][algo.NumLEDs]uint32, 0, n),
		points:    make([]calib.Point, 0, n),
	}
}

// record adds the currents of the next point to the table.
func (m *flashMeasurement) record(c [algo.NumLEDs]uint32) error {
	if uint(len(m.currents)) >= m.target {
		return pkgerrors.Wrapf(ErrNoMemory, "LED current table full at %d points", m.target)
	}
	m.currents = append(m.currents, c)
	return nil
}

func (e *Engine) enterLEDCalibration() {
	e.measure = newFlashMeasurement(e.calCount)
	e.ledState = LEDCalibrationReady
	e.state = StateLEDCalibration
	e.log.Info(pkg+"starting LED calibration", "run", e.measure.id.String(), "points", e.calCount)
}

func (e *Engine) runLEDCalibration(ctx *frameContext) error {
	if ctx.cmd != CommandProcessStats {
		return nil
	}
	m := e.measure

	switch e.ledState {
	case LEDCalibrationReady:
		if m.target == 0 {
			e.completeLEDCalibration(false)
			return nil
		}
		err := e.startMeasurementPoint(ctx, 0)
		if err != nil {
			e.completeLEDCalibration(false)
			return err
		}
		e.ledState = LEDCalibrationCollecting
		return nil
	case LEDCalibrationPartialComplete:
		e.ledState = LEDCalibrationCollecting
	case LEDCalibrationComplete:
		return nil
	}

	res, err := e.alg.MeasurementResult(uint32(m.completed))
	if err != nil {
		e.log.Error(pkg+"could not get LED measurement result", "run", m.id.String(), "error", err.Error())
		e.completeLEDCalibration(false)
		return err
	}
	if res.Overall == algo.MeasurementFail || res.Point == algo.MeasurementBreak {
		e.log.Warning(pkg+"LED calibration failed", "run", m.id.String(), "point", m.completed, "status", res.Point.String())
		e.completeLEDCalibration(false)
		return nil
	}
	pointDone := res.Point != algo.MeasurementOngoing && uint(res.Index) == m.completed
	if res.Overall != algo.MeasurementOngoing && !pointDone {
		e.log.Info(pkg+"LED calibration ended by algorithm", "run", m.id.String(), "point", m.completed, "status", res.Overall.String())
		e.completeLEDCalibration(res.Overall == algo.MeasurementPass)
		return nil
	}
	if !pointDone {
		e.applyCurrents(ctx, m.currents[m.completed])
		return nil
	}

	c := m.currents[m.completed]
	m.points = append(m.points, calib.Point{LED1: c[0], LED2: c[1], RG: res.Ratio.RG, BG: res.Ratio.BG, Flux: res.Ratio.Flux})
	if res.Point != algo.MeasurementPass {
		m.allPassed = false
	}
	m.completed++
	e.log.Debug(pkg+"LED measurement point done", "run", m.id.String(), "point", m.completed, "status", res.Point.String())

	if res.Overall != algo.MeasurementOngoing || m.completed >= m.target {
		e.completeLEDCalibration(res.Overall == algo.MeasurementPass || (res.Overall == algo.MeasurementOngoing && m.allPassed))
		return nil
	}
	err = e.startMeasurementPoint(ctx, m.completed)
	if err != nil {
		e.completeLEDCalibration(false)
		return err
	}
	e.ledState = LEDCalibrationPartialComplete
	return nil
}

// startMeasurementPoint puts the algorithm into measurement of point idx and
// records the point's LED currents.
func (e *Engine) startMeasurementPoint(ctx *frameContext, idx uint) error {
	err := e.setMode(algo.ModeFlashMeasurement, uint32(idx))
	if err != nil {
		return err
	}
	fc, err := e.alg.StartExposure(uint32(idx))
	if err != nil {
		return err
	}
	err = e.measure.record(fc.LEDCurrents)
	if err != nil {
		return err
	}
	if ctx.fc != nil {
		*ctx.fc = fc
	}
	return nil
}

func (e *Engine) applyCurrents(ctx *frameContext, c [algo.NumLEDs]uint32) {
	if ctx.fc != nil {
		ctx.fc.LEDCurrents = c
	}
}

// completeLEDCalibration ends the run, saving its points if it passed, and
// leaves calibration mode.
func (e *Engine) completeLEDCalibration(pass bool) {
	m := e.measure
	err := e.setMode(algo.ModeStreaming, 0)
	if err != nil {
		e.log.Error(pkg+"could not restore streaming mode", "error", err.Error())
	}

	sum := calib.Summarize(m.points)
	e.log.Info(pkg+"LED calibration complete", "run", m.id.String(), "pass", pass, "points", sum.Points,
		"meanRG", sum.MeanRG, "stdRG", sum.StdRG, "meanBG", sum.MeanBG, "stdBG", sum.StdBG,
		"meanFlux", sum.MeanFlux, "duration", time.Since(m.start).String())
	if pass {
		e.lastRun = sum
		e.saveCalibration(m)
	}

	e.measure = nil
	e.calEnabled = false
	e.ledState = LEDCalibrationComplete
}

func (e *Engine) saveCalibration(m *flashMeasurement) {
	if e.store == nil {
		e.log.Warning(pkg+"no calibration store, not saving", "run", m.id.String())
		return
	}
	err := e.store.Save(m.points)
	if err != nil {
		e.log.Error(pkg+"could not save LED calibration", "run", m.id.String(), "error", err.Error())
	}

	blob, err := e.alg.InlineCalibration()
	switch {
	case errors.Is(err, algo.ErrUnsupported):
		return
	case err != nil:
		e.log.Warning(pkg+"could not get inline calibration", "error", err.Error())
		return
	}
	err = e.store.SaveInline(blob)
	if err != nil {
		e.log.Error(pkg+"could not save inline calibration", "run", m.id.String(), "error", err.Error())
	}
}

// loadCalibration loads the stored LED calibration table into the
// algorithm. Missing data leaves the algorithm uncalibrated.
func (e *Engine) loadCalibration() error {
	if e.store == nil {
		e.log.Warning(pkg + "no calibration store")
		return nil
	}
	t, err := e.store.Load()
	if err != nil {
		e.log.Warning(pkg+"could not load LED calibration, continuing uncalibrated", "error", err.Error())
		return nil
	}
	entries := make([]algo.LEDRatio, len(t))
	for i, en := range t {
		entries[i] = algo.LEDRatio{RG: en.RG, BG: en.BG, Flux: en.Flux}
	}
	e.log.Info(pkg+"loaded LED calibration", "entries", len(entries))
	return e.alg.Set(algo.LEDCalibration{Entries: entries})
}

// loadInlineCalibration loads the stored inline calibration blob into the
// algorithm.
func (e *Engine) loadInlineCalibration() error {
	if e.store == nil {
		e.log.Warning(pkg + "no calibration store")
		return nil
	}
	b, err := e.store.LoadInline()
	switch {
	case errors.Is(err, calib.ErrTooLarge):
		return pkgerrors.Wrap(ErrNoMemory, err.Error())
	case err != nil:
		e.log.Warning(pkg+"could not load inline calibration, continuing uncalibrated", "error", err.Error())
		return nil
	}
	return e.alg.Set(algo.InlineCalibration{Data: b})
}

func (e *Engine) ledCalibrationConfig(out *LEDCalibrationConfigOutput) {
	out.Enabled = e.calEnabled
	out.Measurements = e.calCount
	out.State, out.Active = e.LEDCalibrationState()
	out.Summary = e.lastRun
	if e.measure != nil {
		out.Completed = e.measure.completed
	}
}
