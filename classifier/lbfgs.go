package classifier

// lbfgs keeps the last m curvature pairs for limited-memory BFGS.
type lbfgs struct {
	m    int
	s    [][]float64
	y    [][]float64
	rho  []float64
	k    int
	size int
}

func newLBFGS(m int) *lbfgs {
	return &lbfgs{
		m:   m,
		s:   make([][]float64, m),
		y:   make([][]float64, m),
		rho: make([]float64, m),
	}
}

func (l *lbfgs) update(s, y []float64) {
	sy := dot(s, y)
	if sy <= 0 {
		return
	}
	idx := l.k % l.m
	l.s[idx] = append(l.s[idx][:0], s...)
	l.y[idx] = append(l.y[idx][:0], y...)
	l.rho[idx] = 1.0 / sy
	l.k++
	if l.size < l.m {
		l.size++
	}
}

// slot maps the i-th stored pair (0 = oldest) to its ring buffer index.
func (l *lbfgs) slot(i int) int {
	idx := (l.k - l.size + i) % l.m
	if idx < 0 {
		idx += l.m
	}
	return idx
}

// direction returns the descent direction -H*grad via the two-loop recursion.
func (l *lbfgs) direction(grad []float64) []float64 {
	n := len(grad)
	q := make([]float64, n)
	copy(q, grad)

	if l.size == 0 {
		for i := range q {
			q[i] = -q[i]
		}
		return q
	}

	alpha := make([]float64, l.size)
	for i := l.size - 1; i >= 0; i-- {
		idx := l.slot(i)
		a := l.rho[idx] * dot(l.s[idx], q)
		alpha[i] = a
		for j := range n {
			q[j] -= a * l.y[idx][j]
		}
	}

	latest := l.slot(l.size - 1)
	if yy := dot(l.y[latest], l.y[latest]); yy > 0 {
		gamma := dot(l.s[latest], l.y[latest]) / yy
		for i := range q {
			q[i] *= gamma
		}
	}

	for i := range l.size {
		idx := l.slot(i)
		beta := l.rho[idx] * dot(l.y[idx], q)
		for j := range n {
			q[j] += (alpha[i] - beta) * l.s[idx][j]
		}
	}

	for i := range q {
		q[i] = -q[i]
	}
	return q
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
