package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"BatterySentinel/internal/model"
)

// CSVFetcher reads series from three-column CSV files. A leading header row
// is skipped when its first field is not numeric.
type CSVFetcher struct {
	DischargePath string // time,current,voltage
	AgingPath     string // cycle,capacity,resistance
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDischarge(ctx context.Context) (*model.DischargeSeries, error) {
	if f.DischargePath == "" {
		return nil, fmt.Errorf("csv: no discharge file configured")
	}
	cols, err := readColumns(ctx, f.DischargePath)
	if err != nil {
		return nil, err
	}
	return &model.DischargeSeries{Time: cols[0], Current: cols[1], Voltage: cols[2]}, nil
}

func (f *CSVFetcher) FetchAging(ctx context.Context) (*model.AgingSeries, error) {
	if f.AgingPath == "" {
		return nil, fmt.Errorf("csv: no aging file configured")
	}
	cols, err := readColumns(ctx, f.AgingPath)
	if err != nil {
		return nil, err
	}
	return &model.AgingSeries{Cycles: cols[0], Capacity: cols[1], Resistance: cols[2]}, nil
}

func readColumns(ctx context.Context, path string) ([3][]float64, error) {
	var cols [3][]float64

	file, err := os.Open(path)
	if err != nil {
		return cols, fmt.Errorf("csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true
	r.Comment = '#'

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return cols, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cols, fmt.Errorf("csv %s: %w", path, err)
		}
		if line == 1 && isHeader(rec[0]) {
			continue
		}
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return cols, fmt.Errorf("csv %s line %d: %w", path, line, err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	return cols, nil
}

func isHeader(field string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	return err != nil
}
