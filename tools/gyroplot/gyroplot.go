// gyroplot draws the raw gyro and accelerometer traces recorded by gyrod's sample log.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type trace struct {
	x, y, z plotter.XYs
}

func readTraces(db *sql.DB, limit int) (gyro, acc trace, err error) {
	// newest limit rows, oldest first for the line plotter
	rows, err := db.Query(`SELECT t, gx, gy, gz, ax, ay, az FROM
		(SELECT id, t, gx, gy, gz, ax, ay, az FROM samples ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC`, limit)
	if err != nil {
		return
	}
	defer rows.Close()

	var t0 int64
	for rows.Next() {
		var t, gx, gy, gz, ax, ay, az int64
		if err = rows.Scan(&t, &gx, &gy, &gz, &ax, &ay, &az); err != nil {
			return
		}
		if t0 == 0 {
			t0 = t
		}
		ts := float64(t)
		gyro.x = append(gyro.x, plotter.XY{X: ts, Y: float64(gx)})
		gyro.y = append(gyro.y, plotter.XY{X: ts, Y: float64(gy)})
		gyro.z = append(gyro.z, plotter.XY{X: ts, Y: float64(gz)})
		acc.x = append(acc.x, plotter.XY{X: ts, Y: float64(ax)})
		acc.y = append(acc.y, plotter.XY{X: ts, Y: float64(ay)})
		acc.z = append(acc.z, plotter.XY{X: ts, Y: float64(az)})
	}
	err = rows.Err()

	// seconds since the first sample shown
	for _, xys := range []plotter.XYs{gyro.x, gyro.y, gyro.z, acc.x, acc.y, acc.z} {
		for i := range xys {
			xys[i].X = (xys[i].X - float64(t0)) / 1e9
		}
	}
	return
}

func savePlot(title, unit string, tr trace, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = unit

	if err := plotutil.AddLines(p, "X", tr.x, "Y", tr.y, "Z", tr.z); err != nil {
		return err
	}
	return p.Save(12*vg.Inch, 4*vg.Inch, file)
}

func main() {
	dbPath := flag.String("db", "/var/log/gyrod.sqlite", "gyrod sample log")
	limit := flag.Int("n", 5000, "number of most recent samples to plot")
	out := flag.String("out", "gyro", "output file prefix")
	flag.Parse()

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("open %s: %s", *dbPath, err)
	}
	defer db.Close()

	gyro, acc, err := readTraces(db, *limit)
	if err != nil {
		log.Fatalf("read samples: %s", err)
	}
	if len(gyro.x) == 0 {
		fmt.Fprintf(os.Stderr, "no samples in %s\n", *dbPath)
		os.Exit(1)
	}

	if err := savePlot("Gyro raw", "LSB", gyro, *out+"_gyro.png"); err != nil {
		log.Fatalf("gyro plot: %s", err)
	}
	if err := savePlot("Accel raw", "LSB", acc, *out+"_acc.png"); err != nil {
		log.Fatalf("accel plot: %s", err)
	}
	fmt.Printf("plotted %d samples\n", len(gyro.x))
}
