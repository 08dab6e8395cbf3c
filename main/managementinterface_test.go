package main

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/b3nn0/gyrod/sensors"
)

func TestStatusReportsDroppedSamples(t *testing.T) {
	uptimeClock = newMonotonic()
	sampleLog = &sampleLogger{queue: make(chan sensors.Sample, 1)}
	sampleLog.Add(sensors.Sample{})
	sampleLog.Add(sensors.Sample{})
	sampleBroadcaster = &uibroadcaster{}
	sampleBroadcaster.sockets_mu = new(sync.Mutex)
	defer func() {
		uptimeClock = nil
		sampleLog = nil
		sampleBroadcaster = nil
	}()

	rec := httptest.NewRecorder()
	handleStatusRequest(rec, httptest.NewRequest("GET", "/status", nil))

	var s status
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode /status: %v", err)
	}
	if s.SampleLogDropped != 1 {
		t.Errorf("SampleLogDropped = %d, want 1", s.SampleLogDropped)
	}
	if s.SampleClients != 0 {
		t.Errorf("SampleClients = %d, want 0", s.SampleClients)
	}
	if s.LastSampleAge != "never" {
		t.Errorf("LastSampleAge = %q", s.LastSampleAge)
	}
}
