package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/websocket"
)

func currentStatus() status {
	statusMu.Lock()
	s := globalStatus
	last := lastSampleTime
	statusMu.Unlock()

	s.Version = gyrodVersion
	s.Uptime = uptimeClock.HumanizeUptime()
	s.LastSampleAge = uptimeClock.HumanizeAge(last)
	if spiDevice != nil {
		s.SPIWriteErrors = spiDevice.WriteErrors()
	}
	if sampleLog != nil {
		s.SampleLogDropped = sampleLog.Dropped()
	}
	if sampleBroadcaster != nil {
		s.SampleClients = sampleBroadcaster.NumSockets()
	}
	return s
}

func handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	statusJSON, _ := json.Marshal(currentStatus())
	w.Write(statusJSON)
}

func handleSettingsGetRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s := currentSettings()
	settingsJSON, _ := json.Marshal(&s)
	w.Write(settingsJSON)
}

// handleSamplesConnection streams raw samples as JSON until the client goes away.
func handleSamplesConnection(conn *websocket.Conn) {
	sampleBroadcaster.AddSocket(conn)
	// Block until the client closes; the broadcaster drops the socket on write failure.
	io.Copy(io.Discard, conn)
}

func managementInterface(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", handleStatusRequest)
	mux.HandleFunc("/settings", handleSettingsGetRequest)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/samples", websocket.Handler(handleSamplesConnection))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("managementInterface ListenAndServe: %s\n", err.Error())
	}
}
