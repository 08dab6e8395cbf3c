/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	logging.go: Initialize go logging, watch log file size and rotate, delete old logs
*/

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/ricochet2200/go-disk-usage/du"
)

const (
	debugLogFile = "gyrod.log"
	maxLogFiles  = 10
	maxLogSize   = 10 * 1024 * 1024 // rotate at 10mb
	minFreeDisk  = 50 * 1024 * 1024 // leave 50mb free
)

var (
	logDirf       string
	debugLogf     string
	logFileHandle *os.File
)

func getLogFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	logs := make([]string, 0)
	if err != nil {
		return logs
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), debugLogFile+".") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	// gyrod.log.1 is the newest
	sort.Slice(logs, func(i, j int) bool {
		return logSuffix(logs[i]) < logSuffix(logs[j])
	})
	return logs
}

func logSuffix(path string) int {
	n, err := strconv.Atoi(path[strings.LastIndex(path, ".")+1:])
	if err != nil {
		return -1
	}
	return n
}

// shiftLogs renames gyrod.log.N to gyrod.log.N+1 and drops the oldest, then moves the current
// log to gyrod.log.1.
func shiftLogs(dir string) {
	logs := getLogFiles(dir)
	for i := len(logs) - 1; i >= 0; i-- {
		logNum := logSuffix(logs[i])
		if logNum < 0 {
			continue
		}
		if logNum >= maxLogFiles-1 {
			os.Remove(logs[i])
			continue
		}
		os.Rename(logs[i], filepath.Join(dir, debugLogFile+"."+strconv.Itoa(logNum+1)))
	}
	current := filepath.Join(dir, debugLogFile)
	os.Rename(current, current+".1")
}

func rotateLogs() {
	shiftLogs(logDirf)
	openLogFile()
}

func deleteOldestLog(dir string) int64 {
	logs := getLogFiles(dir)
	if len(logs) == 0 {
		return 0
	}
	oldest := logs[len(logs)-1]
	stat, err := os.Stat(oldest)
	if err != nil {
		return 0
	}
	if err := os.Remove(oldest); err != nil {
		return 0
	}
	return stat.Size()
}

func logFileWatcher() {
	for {
		logSize, err := os.Stat(debugLogf)
		if err == nil && logSize.Size() > maxLogSize {
			log.Printf("log file at %s, rotating\n", humanize.Bytes(uint64(logSize.Size())))
			rotateLogs()
		}

		usage := du.NewDiskUsage(logDirf)
		freeBytes := int64(usage.Free())
		for freeBytes < minFreeDisk {
			deleted := deleteOldestLog(logDirf)
			if deleted == 0 {
				break
			}
			log.Printf("low disk space (%s free), removed old log\n", humanize.Bytes(uint64(freeBytes)))
			freeBytes += deleted
		}

		time.Sleep(30 * time.Second)
	}
}

func openLogFile() {
	oldFp := logFileHandle
	debugLogf = filepath.Join(logDirf, debugLogFile)
	fp, err := os.OpenFile(debugLogf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open '%s': %s\n", debugLogf, err.Error())
	} else {
		logFileHandle = fp
		log.SetOutput(io.MultiWriter(fp, os.Stdout))
	}
	if oldFp != nil {
		oldFp.Close()
	}
}

func initLogging(dir string) {
	logDirf = dir
	openLogFile()
	go logFileWatcher()
}

func logDbg(msg string, args ...any) {
	if currentSettings().DEBUG {
		log.Printf(msg, args...)
	}
}
