package solver

import "math"

// bisect finds a root of f within a sign-changing bracket [lo, hi] by plain
// interval halving. Slower than brent but unconditionally convergent on a
// valid bracket, so it serves as the guaranteed fallback. flo is the already
// computed value at lo; the upper endpoint's value is not needed since the
// sign test against flo decides which half keeps the root.
func bisect(f Func, lo, hi, flo, tol float64, maxIter int) (root float64, iters int, converged bool, err error) {
	for i := 0; i < maxIter; i++ {
		iters = i + 1

		mid := (lo + hi) / 2
		fmid, ferr := f(mid)
		if ferr != nil {
			return 0, iters, false, ferr
		}

		if fmid == 0 || math.Abs(hi-lo) < tol {
			return mid, iters, true, nil
		}

		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, iters, false, nil
}
