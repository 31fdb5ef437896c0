package equipment

import "math"

// CorrelationCell is one cell of the parameter similarity matrix.
type CorrelationCell struct {
	Row   Parameter `json:"row" yaml:"row"`
	Col   Parameter `json:"col" yaml:"col"`
	Value float64   `json:"value" yaml:"value"`
}

// Correlate scores how close two averages are on a [0, 1] scale.
//
// This is a bounded similarity heuristic, not a statistical correlation:
// equal inputs score exactly 1, otherwise 1 - |a-b|/max(a, b) clamped to
// [0, 1]. A zero maximum scores 0.
func Correlate(a, b float64) float64 {
	if a == b {
		return 1
	}
	hi := math.Max(a, b)
	if hi == 0 {
		return 0
	}
	v := 1 - math.Abs(a-b)/hi
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// CorrelationMatrix scores every pair of Parameters for d. Rows and columns
// follow Parameters order; the result is symmetric with a unit diagonal.
func CorrelationMatrix(d *Dataset) [][]CorrelationCell {
	if d == nil {
		return nil
	}
	matrix := make([][]CorrelationCell, len(Parameters))
	for i, row := range Parameters {
		matrix[i] = make([]CorrelationCell, len(Parameters))
		for j, col := range Parameters {
			matrix[i][j] = CorrelationCell{
				Row:   row,
				Col:   col,
				Value: Correlate(d.Average(row), d.Average(col)),
			}
		}
	}
	return matrix
}
