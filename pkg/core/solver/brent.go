package solver

import "math"

// brent finds a root of f within a bracket [a, b] where f(a) and f(b) have
// opposite signs. It is the classic Brent-Dekker scheme: inverse quadratic
// interpolation when the three working points allow it, secant otherwise,
// and a bisection step whenever the interpolated candidate misbehaves.
// Returns the root, the iterations consumed, and whether it converged
// within maxIter.
//
// fa and fb are the already-computed endpoint values so the caller's bracket
// probe is not repeated.
func brent(f Func, a, b, fa, fb, tol float64, maxIter int) (root float64, iters int, converged bool, err error) {
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	d := b - a
	mflag := true

	for i := 0; i < maxIter; i++ {
		iters = i + 1

		if fb == 0 || math.Abs(b-a) < tol {
			return b, iters, true, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant
			s = b - fb*(b-a)/(fb-fa)
		}

		// Conditions forcing a bisection step instead of the candidate
		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}
		bisect := s < lo || s > hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < tol) ||
			(!mflag && math.Abs(c-d) < tol)
		if bisect {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs, ferr := f(s)
		if ferr != nil {
			return 0, iters, false, ferr
		}

		d = c
		c, fc = b, fb

		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return b, iters, false, nil
}
