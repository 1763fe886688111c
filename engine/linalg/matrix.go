package linalg

import "fmt"

// Matrix is a dense m×n grid stored row-major.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix builds an m×n matrix from row-major values.
func NewMatrix(rows, cols int, values ...float64) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("%w: %dx%d matrix", ErrDimensionMismatch, rows, cols)
	}
	if len(values) != rows*cols {
		return Matrix{}, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrDimensionMismatch, len(values), rows, cols)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return Matrix{rows: rows, cols: cols, data: data}, nil
}

// Zeros returns an m×n matrix of zeros. Non-positive sizes yield an empty matrix.
func Zeros(rows, cols int) Matrix {
	if rows <= 0 || cols <= 0 {
		return Matrix{}
	}
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows and Cols return the matrix dimensions.
func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

// At and Set access the element in row i, column j.
func (m Matrix) At(i, j int) float64     { return m.data[i*m.cols+j] }
func (m Matrix) Set(i, j int, x float64) { m.data[i*m.cols+j] = x }

// Mul returns m·o. It requires m.Cols() == o.Rows().
func (m Matrix) Mul(o Matrix) (Matrix, error) {
	if m.cols != o.rows {
		return Matrix{}, fmt.Errorf("%w: %dx%d times %dx%d", ErrDimensionMismatch, m.rows, m.cols, o.rows, o.cols)
	}
	r := Zeros(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			var sum float64
			for k := 0; k < m.cols; k++ {
				sum += m.data[i*m.cols+k] * o.data[k*o.cols+j]
			}
			r.data[i*r.cols+j] = sum
		}
	}
	return r, nil
}

// Transpose returns the n×m transpose of m.
func (m Matrix) Transpose() Matrix {
	t := Zeros(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*t.cols+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Equal reports whether m and o have the same shape and elements.
func (m Matrix) Equal(o Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// FromVector turns v into a single column (column == true) or a single row.
func FromVector(v Vector, column bool) (Matrix, error) {
	if column {
		return NewMatrix(len(v), 1, v...)
	}
	return NewMatrix(1, len(v), v...)
}

// ToVector flattens a single-row or single-column matrix.
func (m Matrix) ToVector() (Vector, error) {
	if m.rows != 1 && m.cols != 1 {
		return nil, fmt.Errorf("%w: %dx%d matrix is not a vector", ErrDimensionMismatch, m.rows, m.cols)
	}
	out := make(Vector, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m Matrix) String() string {
	return fmt.Sprintf("Matrix(%dx%d)%v", m.rows, m.cols, m.data)
}
