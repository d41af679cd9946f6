package ml

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when fitting on zero rows.
var ErrEmptyDataset = errors.New("ml: empty dataset")

// MinMaxScaler maps each column to [0, 1] using the min and max observed at
// fit time. Values outside the fitted range are not clamped.
type MinMaxScaler struct {
	min   []float64
	max   []float64
	scale []float64
}

// FitMinMax computes per-column bounds over rows. All rows must have the same width.
func FitMinMax(rows [][]float64) (*MinMaxScaler, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	width := len(rows[0])
	s := &MinMaxScaler{
		min:   make([]float64, width),
		max:   make([]float64, width),
		scale: make([]float64, width),
	}
	copy(s.min, rows[0])
	copy(s.max, rows[0])

	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("ml: row %d has %d columns, expected %d", i, len(row), width)
		}
		for j, v := range row {
			if v < s.min[j] {
				s.min[j] = v
			}
			if v > s.max[j] {
				s.max[j] = v
			}
		}
	}

	for j := range s.scale {
		// A constant column keeps a unit range so it maps to x - min.
		dataRange := s.max[j] - s.min[j]
		if dataRange == 0 {
			dataRange = 1
		}
		s.scale[j] = 1 / dataRange
	}
	return s, nil
}

// Width returns the number of columns the scaler was fitted on.
func (s *MinMaxScaler) Width() int {
	return len(s.min)
}

// Min returns a copy of the fitted column minimums.
func (s *MinMaxScaler) Min() []float64 {
	return append([]float64(nil), s.min...)
}

// Max returns a copy of the fitted column maximums.
func (s *MinMaxScaler) Max() []float64 {
	return append([]float64(nil), s.max...)
}

// Transform scales one row. The input is not modified.
func (s *MinMaxScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.min) {
		return nil, fmt.Errorf("ml: row has %d columns, scaler expects %d", len(row), len(s.min))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.min[j]) * s.scale[j]
	}
	return out, nil
}

// TransformAll scales every row.
func (s *MinMaxScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("ml: row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
