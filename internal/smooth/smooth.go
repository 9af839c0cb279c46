// Package smooth moves mesh vertices with umbrella-operator filters while
// keeping topology fixed.
package smooth

import (
	"errors"
	"fmt"
	"sort"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
)

// Method selects the filter.
type Method string

const (
	Taubin    Method = "taubin"
	Laplacian Method = "laplacian"
)

// ErrUnknownMethod is returned for method names other than taubin/laplacian.
var ErrUnknownMethod = errors.New("smooth: unknown method")

// ParseMethod validates a method name from configuration.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Taubin, Laplacian:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w %q (want %q or %q)", ErrUnknownMethod, s, Taubin, Laplacian)
}

// Params are the filter weights. Mu is only used by Taubin and must be
// negative with |Mu| > Lambda to avoid shrinkage.
type Params struct {
	Lambda float64
	Mu     float64
}

// DefaultParams returns λ=0.5, μ=-0.53.
func DefaultParams() Params {
	return Params{Lambda: 0.5, Mu: -0.53}
}

// Smooth returns new vertex positions after the given number of iterations.
// The face list and vertex count are unchanged; m itself is not modified.
func Smooth(m *mesh.Mesh, method Method, iterations int, p Params) ([]mathutil.Vec3, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if iterations < 0 {
		return nil, fmt.Errorf("smooth: negative iteration count %d", iterations)
	}

	adj := Neighbors(len(m.Vertices), m.Faces)
	cur := append([]mathutil.Vec3(nil), m.Vertices...)
	next := make([]mathutil.Vec3, len(cur))

	for it := 0; it < iterations; it++ {
		step(cur, next, adj, p.Lambda)
		cur, next = next, cur
		if method == Taubin {
			step(cur, next, adj, p.Mu)
			cur, next = next, cur
		}
	}
	return cur, nil
}

// step writes dst[i] = src[i] + w * (mean(neighbours) - src[i]).
func step(src, dst []mathutil.Vec3, adj [][]int, w float64) {
	for i, v := range src {
		nb := adj[i]
		if len(nb) == 0 {
			dst[i] = v
			continue
		}
		var sum mathutil.Vec3
		for _, j := range nb {
			sum = sum.Add(src[j])
		}
		lap := sum.Scale(1 / float64(len(nb))).Sub(v)
		dst[i] = v.Add(lap.Scale(w))
	}
}

// Neighbors returns the sorted one-ring of every vertex.
func Neighbors(n int, faces [][3]int) [][]int {
	sets := make([]map[int]struct{}, n)
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = make(map[int]struct{}, 6)
		}
		sets[a][b] = struct{}{}
	}
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			link(a, b)
			link(b, a)
		}
	}
	adj := make([][]int, n)
	for i, s := range sets {
		for j := range s {
			adj[i] = append(adj[i], j)
		}
		sort.Ints(adj[i])
	}
	return adj
}
