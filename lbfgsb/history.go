// SPDX-License-Identifier: MIT

package lbfgsb

import "gonum.org/v1/gonum/floats"

// history is the ring buffer of L-BFGS correction pairs.
type history struct {
	s, y  [][]float64
	rho   []float64
	alpha []float64
	head  int // index of the oldest pair
	n     int // pairs stored
	gamma float64
}

func newHistory(m, dim int) *history {
	h := &history{
		s:     make([][]float64, m),
		y:     make([][]float64, m),
		rho:   make([]float64, m),
		alpha: make([]float64, m),
		gamma: 1,
	}
	for i := 0; i < m; i++ {
		h.s[i] = make([]float64, dim)
		h.y[i] = make([]float64, dim)
	}

	return h
}

func (h *history) len() int { return h.n }

func (h *history) reset() {
	h.head, h.n, h.gamma = 0, 0, 1
}

// push stores (s, y) with sy = sᵀy > 0, evicting the oldest pair when full.
func (h *history) push(s, y []float64, sy float64) {
	m := len(h.s)
	idx := (h.head + h.n) % m
	if h.n == m {
		idx = h.head
		h.head = (h.head + 1) % m
	} else {
		h.n++
	}
	copy(h.s[idx], s)
	copy(h.y[idx], y)
	h.rho[idx] = 1 / sy
	h.gamma = sy / floats.Dot(y, y)
}

// apply overwrites q with H·q using the two-loop recursion and the scaled
// identity γI as the initial inverse Hessian.
func (h *history) apply(q []float64) {
	m := len(h.s)
	for k := h.n - 1; k >= 0; k-- {
		i := (h.head + k) % m
		h.alpha[i] = h.rho[i] * floats.Dot(h.s[i], q)
		floats.AddScaled(q, -h.alpha[i], h.y[i])
	}
	floats.Scale(h.gamma, q)
	for k := 0; k < h.n; k++ {
		i := (h.head + k) % m
		beta := h.rho[i] * floats.Dot(h.y[i], q)
		floats.AddScaled(q, h.alpha[i]-beta, h.s[i])
	}
}
