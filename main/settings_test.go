package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/b3nn0/gyrod/sensors/icm42605"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettingsPartial(t *testing.T) {
	path := writeFile(t, "gyrod.conf", `{"Gyro_Hardware_LPF": 2, "SPI_Backend": "embd", "DEBUG": true}`)

	s, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.Gyro_Hardware_LPF != 2 || s.SPI_Backend != spiBackendEmbd || !s.DEBUG {
		t.Errorf("settings not applied: %+v", s)
	}
	if s.Gyro_Filter_Order != icm42605.DefaultGyroFilterOrder || s.HTTP_Addr != ":9978" {
		t.Errorf("defaults lost: %+v", s)
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"backend", `{"SPI_Backend": "i2c"}`, errBackend},
		{"lpf", `{"Gyro_Hardware_LPF": 4}`, errHardwareLPF},
		{"speed", `{"SPI_Default_Hz": 0}`, errSpeed},
		{"filter order", `{"Gyro_Filter_Order": 5}`, icm42605.ErrFilterOrder},
		{"data ready without rpio", `{"SPI_Backend": "embd", "DataReady_Enabled": true}`, errDataReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := loadSettings(writeFile(t, "gyrod.conf", tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if s != defaultSettings() {
				t.Errorf("invalid file should give defaults, got %+v", s)
			}
		})
	}
}

func TestLoadSettingsBadJSON(t *testing.T) {
	s, err := loadSettings(writeFile(t, "gyrod.conf", `{"Gyro_Rate_kHz": `))
	if err == nil {
		t.Fatal("expected error")
	}
	if s != defaultSettings() {
		t.Errorf("got %+v", s)
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gyrod.conf")
	want := defaultSettings()
	want.Gyro_Divider_Drops = 3
	setSettings(want)
	defer setSettings(settings{})

	if err := saveSettings(path); err != nil {
		t.Fatalf("saveSettings: %v", err)
	}
	s, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
}

func TestReloadSettingsKeepsCurrentOnError(t *testing.T) {
	running := defaultSettings()
	running.Gyro_Hardware_LPF = 3
	running.DEBUG = true
	setSettings(running)
	defer setSettings(settings{})

	if err := reloadSettings(writeFile(t, "gyrod.conf", `{"Gyro_Hardware_LPF": 9}`)); err == nil {
		t.Fatal("expected error")
	}
	if got := currentSettings(); got != running {
		t.Errorf("settings changed to %+v", got)
	}

	if err := reloadSettings(writeFile(t, "gyrod.conf", `{"DEBUG": false}`)); err != nil {
		t.Fatalf("reloadSettings: %v", err)
	}
	if currentSettings().DEBUG {
		t.Error("DEBUG not reloaded")
	}
}

func TestReloadSettingsConcurrentReaders(t *testing.T) {
	path := writeFile(t, "gyrod.conf", `{"DEBUG": true}`)
	defer setSettings(settings{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = currentSettings().DEBUG
		}
	}()
	for i := 0; i < 10; i++ {
		reloadSettings(path)
	}
	<-done
}

func TestDriverConfig(t *testing.T) {
	s := defaultSettings()
	s.DataReady_Enabled = true
	s.Gyro_Filter_Order = 2
	if got := s.driverConfig(); got != (icm42605.Config{FilterOrder: 2, DataReady: true}) {
		t.Errorf("driverConfig() = %+v", got)
	}
}
