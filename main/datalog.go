/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	datalog.go: Log raw IMU samples to sqlite for offline analysis. Samples are queued and
	written in batches so the sampling loop never waits on the disk.
*/

package main

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/b3nn0/gyrod/sensors"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dataLogBatchSize     = 500
	dataLogFlushInterval = 1 * time.Second
	dataLogQueueLen      = 10000
)

const createSamplesTable = `CREATE TABLE IF NOT EXISTS samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	t INTEGER NOT NULL,
	gx INTEGER, gy INTEGER, gz INTEGER,
	ax INTEGER, ay INTEGER, az INTEGER,
	gyro_error TEXT, acc_error TEXT
)`

type sampleLogger struct {
	db      *sql.DB
	queue   chan sensors.Sample
	dropped uint64

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

var sampleLog *sampleLogger

func openSampleLog(path string) (*sampleLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createSamplesTable); err != nil {
		db.Close()
		return nil, err
	}
	l := &sampleLogger{
		db:    db,
		queue: make(chan sensors.Sample, dataLogQueueLen),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.writer()
	return l, nil
}

// Add queues s. When the writer falls behind the sample is dropped and counted.
func (l *sampleLogger) Add(s sensors.Sample) {
	select {
	case l.queue <- s:
	default:
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
	}
}

func (l *sampleLogger) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

func (l *sampleLogger) writer() {
	defer close(l.done)
	timer := time.NewTicker(dataLogFlushInterval)
	defer timer.Stop()
	batch := make([]sensors.Sample, 0, dataLogBatchSize)
	for {
		select {
		case s := <-l.queue:
			batch = append(batch, s)
			if len(batch) < dataLogBatchSize {
				continue
			}
		case <-timer.C:
		case <-l.quit:
			for len(l.queue) > 0 {
				batch = append(batch, <-l.queue)
			}
			l.flush(batch)
			return
		}
		l.flush(batch)
		batch = batch[:0]
	}
}

func errString(err error) interface{} {
	if err == nil {
		return nil
	}
	return err.Error()
}

func (l *sampleLogger) flush(batch []sensors.Sample) {
	if len(batch) == 0 {
		return
	}
	tx, err := l.db.Begin()
	if err != nil {
		log.Printf("datalog: begin: %s\n", err)
		return
	}
	stmt, err := tx.Prepare("INSERT INTO samples (t, gx, gy, gz, ax, ay, az, gyro_error, acc_error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		log.Printf("datalog: prepare: %s\n", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()
	for _, s := range batch {
		_, err := stmt.Exec(s.T.UnixNano(),
			s.Gyro[0], s.Gyro[1], s.Gyro[2],
			s.Acc[0], s.Acc[1], s.Acc[2],
			errString(s.GyroErr), errString(s.AccErr))
		if err != nil {
			log.Printf("datalog: insert: %s\n", err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("datalog: commit: %s\n", err)
	}
}

// Close writes out everything queued and closes the database.
func (l *sampleLogger) Close() error {
	close(l.quit)
	<-l.done
	return l.db.Close()
}
