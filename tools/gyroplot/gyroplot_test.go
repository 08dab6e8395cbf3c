package main

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestReadTracesNewestInTimeOrder(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "samples.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE samples (id INTEGER PRIMARY KEY AUTOINCREMENT, t INTEGER NOT NULL,
		gx INTEGER, gy INTEGER, gz INTEGER, ax INTEGER, ay INTEGER, az INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 5; i++ {
		if _, err := db.Exec("INSERT INTO samples (t, gx, gy, gz, ax, ay, az) VALUES (?, ?, 0, 0, 0, 0, 0)",
			1e9+i*1e6, i); err != nil {
			t.Fatal(err)
		}
	}

	gyro, _, err := readTraces(db, 3)
	if err != nil {
		t.Fatalf("readTraces: %v", err)
	}
	if len(gyro.x) != 3 {
		t.Fatalf("%d points, want 3", len(gyro.x))
	}
	for i, want := range []float64{2, 3, 4} {
		if gyro.x[i].Y != want {
			t.Errorf("point %d gx = %v, want %v", i, gyro.x[i].Y, want)
		}
		if wantX := float64(i) / 1e3; gyro.x[i].X < wantX-1e-9 || gyro.x[i].X > wantX+1e-9 {
			t.Errorf("point %d t = %v, want %v", i, gyro.x[i].X, wantX)
		}
	}
}
