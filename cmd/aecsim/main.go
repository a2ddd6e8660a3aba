/*
DESCRIPTION
  aecsim runs the AEC engine against a simulated scene and exposure
  algorithm, driving the flash device from the engine frame control and
  reloading engine variables when its config file changes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package aecsim is a frame loop simulator for the AEC engine.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/coreos/go-systemd/daemon"
	_ "github.com/kidoman/embd/host/rpi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/aec/config"
	"github.com/ausocean/aec/algo/sim"
	"github.com/ausocean/aec/calib"
	"github.com/ausocean/aec/device"
	"github.com/ausocean/aec/device/flash"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.3.0"

// Logging configuration.
const (
	logPath      = "/var/log/aecsim/aecsim.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	pkg           = "aecsim: "
	flashI2C      = "i2c"
	flashManual   = "manual"
	frameInterval = 33 * time.Millisecond
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		lux         = flag.Float64("lux", 50, "scene illuminance in lux")
		frames      = flag.Int("frames", 300, "number of frames to run, 0 runs until interrupted")
		precapture  = flag.Int("precapture", 60, "frame of the AE precapture trigger, negative disables")
		capture     = flag.Bool("capture", true, "issue a still capture when the pre-flash completes")
		calibrate   = flag.Bool("calibrate", false, "run an LED calibration once exposure settles")
		configPath  = flag.String("config", "", "engine variables file, watched for changes")
		flashKind   = flag.String("flash", flashManual, "flash device: "+flashManual+" or "+flashI2C)
		calPath     = flag.String("calibration", "", "LED calibration table path")
		tuningPath  = flag.String("tuning", "", "LED tuning CSV path")
		inlinePath  = flag.String("inline", "", "inline calibration blob path")
		realTime    = flag.Bool("realtime", false, "pace frames at the sensor frame rate")
		logFile     = flag.String("log", logPath, "log file path")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logFile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting aecsim", "version", version)

	cfg := config.Config{
		Logger:                log,
		LogLevel:              logVerbosity,
		LEDCalibration:        *calibrate,
		CalibrationPath:       *calPath,
		TuningPath:            *tuningPath,
		InlineCalibrationPath: *inlinePath,
	}
	var vars map[string]string
	if *configPath != "" {
		var err error
		vars, err = readVars(*configPath)
		if err != nil {
			log.Warning(pkg+"could not read config file, using defaults", "path", *configPath, "error", err)
		}
		cfg.Update(vars)
	}
	err := cfg.Validate()
	if err != nil {
		log.Fatal(pkg+"invalid config", "error", err)
	}

	store := &calib.FileStore{
		CalibrationPath: cfg.CalibrationPath,
		TuningPath:      cfg.TuningPath,
		InlinePath:      cfg.InlineCalibrationPath,
		MaxInlineSize:   int(cfg.MaxInlineCalibrationSize),
	}

	alg := sim.New(sim.Config{}, log)
	e, err := aec.New(cfg, alg, store)
	if err != nil {
		log.Fatal(pkg+"could not create engine", "error", err)
	}
	defer e.Destroy()

	fl, err := newFlash(*flashKind, log)
	if err != nil {
		log.Fatal(pkg+"could not start flash", "error", err)
	}
	defer fl.Stop()

	var changed <-chan map[string]string
	if *configPath != "" {
		w, err := watchVars(*configPath, log)
		if err != nil {
			log.Warning(pkg+"could not watch config file", "path", *configPath, "error", err)
		} else {
			defer w.Close()
			changed = w.C
		}
	}

	s := newSimulator(e, sim.NewScene(*lux), fl, log)
	s.precapture = *precapture
	s.capture = *capture
	err = s.start()
	if err != nil {
		log.Fatal(pkg+"could not start engine", "error", err)
	}

	// ok is false when not run as a systemd notify unit.
	ok, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warning(pkg+"could not notify systemd", "error", err)
	} else if ok {
		log.Debug(pkg + "notified systemd")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var tick <-chan time.Time
	if *realTime {
		t := time.NewTicker(frameInterval)
		defer t.Stop()
		tick = t.C
	}

	for i := 0; *frames == 0 || i < *frames; i++ {
		select {
		case <-interrupt:
			log.Info(pkg + "interrupted")
			s.stop()
			return
		case vars, ok := <-changed:
			if !ok {
				log.Warning(pkg + "config watch ended")
				changed = nil
				break
			}
			err = e.Update(vars)
			if err != nil {
				log.Error(pkg+"could not update engine", "error", err)
			} else {
				log.Info(pkg+"engine variables updated", "vars", len(vars))
			}
		default:
		}
		if tick != nil {
			<-tick
		}
		err = s.step()
		if err != nil {
			log.Error(pkg+"frame failed", "frame", i, "error", err)
		}
	}
	s.stop()
	log.Info(pkg+"finished", "frames", *frames, "captures", s.captures, "state", e.State().String())
}

// newFlash creates and starts the flash device named by kind.
func newFlash(kind string, l logging.Logger) (device.Flash, error) {
	var fl device.Flash
	switch kind {
	case flashManual:
		fl = device.NewManualFlash()
	case flashI2C:
		fl = flash.New(l)
	default:
		return nil, fmt.Errorf("unknown flash device: %s", kind)
	}
	err := fl.Set(device.Config{})
	if err != nil {
		l.Warning(pkg+"flash config defaulted", "device", fl.Name(), "error", err)
	}
	err = fl.Start()
	if err != nil {
		return nil, err
	}
	return fl, nil
}
