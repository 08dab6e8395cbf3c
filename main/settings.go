/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	settings.go: Read, validate and save the gyrod JSON settings file.
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/b3nn0/gyrod/sensors/icm42605"
)

const (
	spiBackendRPIO = "rpio"
	spiBackendEmbd = "embd"
)

type settings struct {
	SPI_Backend    string // "rpio" or "embd"
	SPI_Channel    int    // chip select (rpio) or spidev channel (embd)
	SPI_Default_Hz int    // bus speed for other users of the bus

	Gyro_Rate_kHz      uint8
	Gyro_Divider_Drops uint8
	Gyro_Hardware_LPF  uint8
	Gyro_Filter_Order  int
	DataReady_Enabled  bool
	DataReady_Pin      int // BCM numbering
	Sample_Period_us   int

	SampleLog_Enabled bool
	SampleLog_Path    string

	HTTP_Addr string
	DEBUG     bool
}

var (
	errBackend     = errors.New("settings: SPI_Backend must be rpio or embd")
	errHardwareLPF = errors.New("settings: Gyro_Hardware_LPF must be 0..3")
	errSpeed       = errors.New("settings: SPI_Default_Hz must be positive")
	errDataReady   = errors.New("settings: DataReady_Enabled needs the rpio SPI_Backend")
)

var (
	settingsMu     sync.RWMutex
	globalSettings settings
)

// currentSettings returns a copy of the settings in use.
func currentSettings() settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return globalSettings
}

func setSettings(s settings) {
	settingsMu.Lock()
	globalSettings = s
	settingsMu.Unlock()
}

func defaultSettings() settings {
	return settings{
		SPI_Backend:       spiBackendRPIO,
		SPI_Channel:       0,
		SPI_Default_Hz:    10000000,
		Gyro_Rate_kHz:     8,
		Gyro_Hardware_LPF: 0,
		Gyro_Filter_Order: icm42605.DefaultGyroFilterOrder,
		DataReady_Enabled: false,
		DataReady_Pin:     25,
		Sample_Period_us:  1000,
		SampleLog_Enabled: false,
		SampleLog_Path:    "/var/log/gyrod.sqlite",
		HTTP_Addr:         ":9978",
	}
}

func (s settings) validate() error {
	if s.SPI_Backend != spiBackendRPIO && s.SPI_Backend != spiBackendEmbd {
		return errBackend
	}
	if s.Gyro_Hardware_LPF > 3 {
		return errHardwareLPF
	}
	if s.SPI_Default_Hz <= 0 {
		return errSpeed
	}
	// the data-ready pin is watched through the rpio memory map, which only the rpio bus opens
	if s.DataReady_Enabled && s.SPI_Backend != spiBackendRPIO {
		return errDataReady
	}
	return s.driverConfig().Validate()
}

func (s settings) driverConfig() icm42605.Config {
	return icm42605.Config{FilterOrder: s.Gyro_Filter_Order, DataReady: s.DataReady_Enabled}
}

// loadSettings reads path over the defaults, so a partial file only overrides what it names.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	buf, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(buf, &s); err != nil {
		return defaultSettings(), fmt.Errorf("settings: %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return defaultSettings(), err
	}
	return s, nil
}

func readSettings(path string) {
	s, err := loadSettings(path)
	if err != nil {
		log.Printf("can't read settings %s: %s\n", path, err.Error())
	} else {
		log.Printf("read in settings.\n")
	}
	setSettings(s)
}

// reloadSettings replaces the settings in use only when path reads and validates; a broken
// file keeps the running settings.
func reloadSettings(path string) error {
	s, err := loadSettings(path)
	if err != nil {
		log.Printf("can't reload settings %s, keeping current ones: %s\n", path, err.Error())
		return err
	}
	setSettings(s)
	log.Printf("reloaded settings.\n")
	return nil
}

func saveSettings(path string) error {
	s := currentSettings()
	jsonSettings, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonSettings, 0644); err != nil {
		log.Printf("can't save settings %s: %s\n", path, err.Error())
		return err
	}
	log.Printf("wrote settings.\n")
	return nil
}
