/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	gyrod.go: Service entry point. Reads the settings, brings up the ICM-42605 on SPI and
	serves its raw samples.
*/

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/takama/daemon"
)

const (
	// name of the service
	name        = "gyrod"
	description = "ICM-42605 gyro/accelerometer sampling service"

	defaultConfigLocation = "/boot/gyrod.conf"
	defaultLogDir         = "/var/log"
)

var (
	gyrodVersion = "dev" // set with -ldflags
	uptimeClock  *monotonic
)

var stdlog, errlog *log.Logger

// Service has embedded daemon
type Service struct {
	daemon.Daemon
}

// Manage by daemon commands or run the daemon
func (service *Service) Manage() (string, error) {
	configLocation := flag.String("config", defaultConfigLocation, "Settings file (JSON)")
	logDir := flag.String("logdir", defaultLogDir, "Directory for gyrod.log")
	writeDefaults := flag.Bool("write-defaults", false, "Write the default settings to -config and exit")
	flag.Parse()

	usage := "Usage: " + name + " install | remove | start | stop | status"
	// if received any kind of command, do it
	if flag.NArg() > 0 {
		switch flag.Arg(0) {
		case "install":
			return service.Install()
		case "remove":
			return service.Remove()
		case "start":
			return service.Start()
		case "stop":
			return service.Stop()
		case "status":
			return service.Status()
		default:
			return usage, nil
		}
	}

	if *writeDefaults {
		setSettings(defaultSettings())
		if err := saveSettings(*configLocation); err != nil {
			return "", err
		}
		return "wrote " + *configLocation, nil
	}

	uptimeClock = newMonotonic()
	initLogging(*logDir)
	log.Printf("gyrod %s starting.\n", gyrodVersion)

	readSettings(*configLocation)
	cfg := currentSettings()

	registerMetrics(prometheus.DefaultRegisterer)
	sampleBroadcaster = NewUIBroadcaster()
	if cfg.SampleLog_Enabled {
		l, err := openSampleLog(cfg.SampleLog_Path)
		if err != nil {
			log.Printf("can't open sample log %s: %s\n", cfg.SampleLog_Path, err)
		} else {
			sampleLog = l
		}
	}

	initSPISensors()
	go managementInterface(cfg.HTTP_Addr)

	// Set up channel on which to send signal notifications.
	// We must use a buffered channel or risk missing the signal
	// if we're not ready to receive when the signal is sent.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	// interrupt by system signal
	for {
		killSignal := <-interrupt
		log.Println("Got signal:", killSignal)
		if killSignal == syscall.SIGUSR1 {
			// The IMU is configured once per power up; only DEBUG takes effect on reload.
			reloadSettings(*configLocation)
			continue
		}
		shutdown()
		if killSignal == syscall.SIGINT {
			return "Daemon was interrupted by system signal", nil
		}
		return "Daemon was killed", nil
	}
}

func shutdown() {
	closeSensors()
	if sampleLog != nil {
		if err := sampleLog.Close(); err != nil {
			log.Printf("closing sample log: %s\n", err)
		}
	}
}

func init() {
	stdlog = log.New(os.Stdout, "", 0)
	errlog = log.New(os.Stderr, "", 0)
}

func main() {
	srv, err := daemon.New(name, description, daemon.SystemDaemon)
	if err != nil {
		errlog.Println("Error: ", err)
		os.Exit(1)
	}
	service := &Service{srv}
	msg, err := service.Manage()
	if err != nil {
		errlog.Println(msg, "\nError: ", err)
		os.Exit(1)
	}
	stdlog.Println(msg)
}
