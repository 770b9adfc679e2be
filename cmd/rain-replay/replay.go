package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gorain/pkg/config"
	"github.com/itohio/gorain/pkg/rain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when the input holds no usable rows.
var ErrNoSamples = errors.New("no samples in input")

// loadConfig loads the configuration file and applies RAIN_* overrides from
// the environment and envFile.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// recordedSample is one row of a recording. Uptime is relative to the first row.
type recordedSample struct {
	Uptime time.Duration
	Value  int
}

// readRecording parses a recording with either one value per row or
// "unix_micros,value" rows. Rows without timestamps are spaced by rate.
// Blank lines, '#' comments and a non-numeric header row are skipped.
func readRecording(r io.Reader, rate time.Duration) ([]recordedSample, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		samples []recordedSample
		first   int64
		row     int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read recording: %w", err)
		}
		row++

		var micros int64
		var valueField string
		switch len(record) {
		case 1:
			valueField = record[0]
		case 2:
			valueField = record[1]
			micros, err = strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
			if err != nil {
				if row == 1 {
					continue
				}
				return nil, fmt.Errorf("row %d: invalid timestamp: %w", row, err)
			}
		default:
			return nil, fmt.Errorf("row %d: expected 1 or 2 fields, got %d", row, len(record))
		}

		value, err := strconv.Atoi(strings.TrimSpace(valueField))
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid value: %w", row, err)
		}
		if value < 0 || value > rain.MaxRaw {
			return nil, fmt.Errorf("row %d: value out of range: %d", row, value)
		}

		var uptime time.Duration
		if len(record) == 2 {
			if len(samples) == 0 {
				first = micros
			}
			uptime = time.Duration(micros-first) * time.Microsecond
		} else {
			uptime = time.Duration(len(samples)) * rate
		}
		samples = append(samples, recordedSample{Uptime: uptime, Value: value})
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

// replay feeds samples through a fresh pipeline and returns the emitted readings.
func replay(samples []recordedSample, opts ...rain.Option) []rain.Reading {
	p := rain.New(opts...)
	var readings []rain.Reading
	for _, s := range samples {
		if reading, ok := p.OnSample(s.Value, s.Uptime); ok {
			readings = append(readings, reading)
		}
	}
	return readings
}

// Summary describes a series of values.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// summarize computes summary statistics of values. The zero Summary is
// returned for an empty series.
func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

// Report is the outcome of a replay.
type Report struct {
	Readings   []rain.Reading
	Raw        Summary
	Filtered   Summary
	Categories map[rain.RainCategory]int
	Trends     map[rain.TrendState]int
}

// buildReport replays samples and summarizes the raw input and the emitted
// filtered averages.
func buildReport(samples []recordedSample, opts ...rain.Option) Report {
	raw := make([]float64, len(samples))
	for i, s := range samples {
		raw[i] = float64(s.Value)
	}

	readings := replay(samples, opts...)
	filtered := make([]float64, len(readings))
	report := Report{
		Readings:   readings,
		Categories: make(map[rain.RainCategory]int),
		Trends:     make(map[rain.TrendState]int),
	}
	for i, r := range readings {
		filtered[i] = float64(r.Filter.FilteredAverage)
		report.Categories[r.Category]++
		report.Trends[r.Trend]++
	}

	report.Raw = summarize(raw)
	report.Filtered = summarize(filtered)
	return report
}

// writeReport prints the readings followed by the summary.
func writeReport(w io.Writer, report Report, quiet bool) error {
	if !quiet {
		for _, r := range report.Readings {
			lines := r.DisplayLines()
			if _, err := fmt.Fprintf(w, "%10.3fs  %-18s %-15s filtered=%4d baseline=%4d valid=%2d\n",
				r.Uptime.Seconds(), lines[0], lines[1], r.Filter.FilteredAverage, r.Baseline, r.Filter.ValidCount); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "readings: %d\n", len(report.Readings))
	writeSummary(w, "raw", report.Raw)
	writeSummary(w, "filtered", report.Filtered)

	for _, c := range []rain.RainCategory{rain.NoRain, rain.SmallRain, rain.MedRain, rain.BigRain} {
		fmt.Fprintf(w, "%-12s %d\n", c.String()+":", report.Categories[c])
	}
	for _, t := range []rain.TrendState{rain.Stable, rain.Rising, rain.Falling} {
		fmt.Fprintf(w, "%-12s %d\n", t.String()+":", report.Trends[t])
	}
	return nil
}

func writeSummary(w io.Writer, name string, s Summary) {
	fmt.Fprintf(w, "%-9s n=%d mean=%.1f stddev=%.1f median=%.1f min=%.0f max=%.0f\n",
		name, s.Count, s.Mean, s.StdDev, s.Median, s.Min, s.Max)
}
