package features

// MinMaxScaler maps each column into [0,1] over the range observed during
// Fit. A constant column scales to zero rather than dividing by zero.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Fit records the per-column minima and maxima of rows.
func (s *MinMaxScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		s.Min, s.Max = nil, nil
		return
	}
	n := len(rows[0])
	s.Min = make([]float64, n)
	s.Max = make([]float64, n)
	copy(s.Min, rows[0])
	copy(s.Max, rows[0])
	for _, row := range rows[1:] {
		for c, v := range row {
			if v < s.Min[c] {
				s.Min[c] = v
			}
			if v > s.Max[c] {
				s.Max[c] = v
			}
		}
	}
}

// Transform scales rows into [0,1] using the fitted ranges. The input is
// not modified.
func (s *MinMaxScaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for c, v := range row {
			span := s.Max[c] - s.Min[c]
			if span == 0 {
				scaled[c] = 0
				continue
			}
			scaled[c] = (v - s.Min[c]) / span
		}
		out[i] = scaled
	}
	return out
}

// InverseClose maps a scaled close value back to price space.
func (s *MinMaxScaler) InverseClose(v float64) float64 {
	return v*(s.Max[CloseIndex]-s.Min[CloseIndex]) + s.Min[CloseIndex]
}
