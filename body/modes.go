package body

import (
	"fmt"
	"math"
	"sort"

	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"
)

// PlateModes returns up to maxModes frequencies in [f11, maxHz] of a clamped
// orthotropic top plate. The x and y wavenumbers come from the spectrum of
// the discrete Dirichlet Laplacian on a grid of n interior points per axis,
// over a plate of aspect ratio (length/width) ratio with stiffness ratio
// stiffness (along/across grain). The lowest mode is scaled to f11.
//
//	f_mn ∝ sqrt(S·λx_m² + 2·√S·λx_m·λy_n + λy_n²)
func PlateModes(f11, maxHz float64, maxModes, n int, ratio, stiffness float64) ([]float64, error) {
	if f11 <= 0 || maxHz <= f11 {
		return nil, fmt.Errorf("invalid mode range %.1f..%.1f Hz", f11, maxHz)
	}
	if n < 2 {
		return nil, fmt.Errorf("grid points must be >= 2")
	}
	if ratio <= 0 || stiffness <= 0 {
		return nil, fmt.Errorf("plate ratio and stiffness must be > 0")
	}

	lx := pdefd.Eigenvalues(n, ratio/float64(n+1), pdepoisson.Dirichlet)
	ly := pdefd.Eigenvalues(n, 1.0/float64(n+1), pdepoisson.Dirichlet)
	if len(lx) == 0 || len(ly) == 0 {
		return nil, fmt.Errorf("empty eigenspectrum")
	}

	sqrtS := math.Sqrt(stiffness)
	omega := func(a, b float64) float64 {
		return math.Sqrt(stiffness*a*a + 2*sqrtS*a*b + b*b)
	}
	base := omega(lx[0], ly[0])
	if base <= 0 {
		return nil, fmt.Errorf("degenerate lowest mode")
	}

	freqs := make([]float64, 0, maxModes)
	for _, a := range lx {
		for _, b := range ly {
			f := f11 * omega(a, b) / base
			if f > maxHz {
				// ly is non-decreasing, so the rest of this row is higher.
				break
			}
			freqs = append(freqs, f)
		}
	}
	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs, nil
}
