// Package vectorizer builds vocabularies and label sets and encodes documents
// as fixed-width presence and one-hot vectors.
package vectorizer

// SparseVector represents a sparse float64 vector.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector creates a sparse vector with given dimension.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// FromDense keeps the non-zero entries of dense.
func FromDense(dense []float64) SparseVector {
	sv := NewSparseVector(len(dense))
	for i, v := range dense {
		if v != 0 {
			sv.Indices = append(sv.Indices, i)
			sv.Values = append(sv.Values, v)
		}
	}
	return sv
}

// Dot computes the dot product with a dense vector.
func (sv SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range sv.Indices {
		if idx < len(dense) {
			sum += sv.Values[i] * dense[idx]
		}
	}
	return sum
}

// ToDense converts to a dense float64 slice.
func (sv SparseVector) ToDense() []float64 {
	dense := make([]float64, sv.Dim)
	for i, idx := range sv.Indices {
		if idx < sv.Dim {
			dense[idx] = sv.Values[i]
		}
	}
	return dense
}

// Nnz returns the number of non-zero entries.
func (sv SparseVector) Nnz() int {
	return len(sv.Indices)
}
