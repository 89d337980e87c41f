// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import "math"

const (
	svdMaxIterations = 200
	svdTolerance     = 1e-10

	// svdMinEigenvalue is the cutoff below which a direction carries no
	// usable signal and factor extraction stops early.
	svdMinEigenvalue = 1e-12
)

// truncatedSVD factorizes a dense rows×cols matrix into its top-k singular
// directions. It returns the row projections U = A·V (rows×k) and the item
// factors V (cols×k), so that U·Vᵀ reconstructs the rank-k approximation
// of A. The third return is the number of factors actually extracted, which
// can be lower than k when the matrix has less signal.
//
// The right singular vectors are the leading eigenvectors of the Gram
// matrix AᵀA, extracted by power iteration with Gram-Schmidt deflation.
// Start vectors are deterministic, so identical input yields identical
// factors across fits.
func truncatedSVD(a [][]float64, k int) (userFactors, itemFactors [][]float64, extracted int) {
	rows := len(a)
	if rows == 0 {
		return nil, nil, 0
	}
	cols := len(a[0])
	if cols == 0 || k <= 0 {
		return nil, nil, 0
	}
	if k > cols {
		k = cols
	}

	gram := gramMatrix(a)

	// Leading eigenvectors of the Gram matrix, one per factor.
	basis := make([][]float64, 0, k)
	for f := 0; f < k; f++ {
		v, lambda := dominantEigenvector(gram, basis, f)
		if lambda < svdMinEigenvalue {
			break
		}
		basis = append(basis, v)
	}

	extracted = len(basis)
	if extracted == 0 {
		return nil, nil, 0
	}

	userFactors = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		userFactors[i] = make([]float64, extracted)
		for f, v := range basis {
			var dot float64
			for j := 0; j < cols; j++ {
				dot += a[i][j] * v[j]
			}
			userFactors[i][f] = dot
		}
	}

	itemFactors = make([][]float64, cols)
	for j := 0; j < cols; j++ {
		itemFactors[j] = make([]float64, extracted)
		for f, v := range basis {
			itemFactors[j][f] = v[j]
		}
	}

	return userFactors, itemFactors, extracted
}

// gramMatrix computes AᵀA for a dense rows×cols matrix.
func gramMatrix(a [][]float64) [][]float64 {
	rows := len(a)
	cols := len(a[0])

	gram := make([][]float64, cols)
	for i := range gram {
		gram[i] = make([]float64, cols)
	}

	for r := 0; r < rows; r++ {
		row := a[r]
		for i := 0; i < cols; i++ {
			if row[i] == 0 {
				continue
			}
			for j := i; j < cols; j++ {
				gram[i][j] += row[i] * row[j]
			}
		}
	}
	// Mirror the upper triangle.
	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			gram[j][i] = gram[i][j]
		}
	}
	return gram
}

// dominantEigenvector finds the leading eigenvector of gram orthogonal to
// the given basis via power iteration. seed varies the deterministic start
// vector so successive factors do not all start identically.
func dominantEigenvector(gram [][]float64, basis [][]float64, seed int) ([]float64, float64) {
	n := len(gram)

	// Deterministic non-degenerate start vector.
	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(i+seed+1)
	}
	orthogonalize(v, basis)
	if norm := vectorNorm(v); norm > 0 {
		scaleVector(v, 1/norm)
	}

	next := make([]float64, n)
	var lambda float64
	for iter := 0; iter < svdMaxIterations; iter++ {
		// next = gram · v
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += gram[i][j] * v[j]
			}
			next[i] = sum
		}

		orthogonalize(next, basis)

		norm := vectorNorm(next)
		if norm < svdMinEigenvalue {
			return v, 0
		}
		scaleVector(next, 1/norm)

		// Convergence on direction change.
		var diff float64
		for i := range v {
			d := next[i] - v[i]
			diff += d * d
		}
		copy(v, next)
		lambda = norm
		if diff < svdTolerance {
			break
		}
	}
	return v, lambda
}

// orthogonalize removes the projection of v onto each basis vector
// (classical Gram-Schmidt). Basis vectors must be unit length.
func orthogonalize(v []float64, basis [][]float64) {
	for _, b := range basis {
		var dot float64
		for i := range v {
			dot += v[i] * b[i]
		}
		for i := range v {
			v[i] -= dot * b[i]
		}
	}
}

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func scaleVector(v []float64, s float64) {
	for i := range v {
		v[i] *= s
	}
}
