package cpu

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/born-ml/hograd/internal/parallel"
)

func mapBinary[T constraints.Float](dst, a, b []T, f func(x, y T) T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(a[i], b[i])
		}
	}, cfg)
}

func mapCompare[T constraints.Float](dst []bool, a, b []T, f func(x, y T) bool, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(a[i], b[i])
		}
	}, cfg)
}

func scaleFloat[T constraints.Float](dst, x []T, s T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = x[i] * s
		}
	}, cfg)
}

func whereFloat[T constraints.Float](dst []T, cond []bool, x, y []T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			if cond[i] {
				dst[i] = x[i]
			} else {
				dst[i] = y[i]
			}
		}
	}, cfg)
}

func sumFloat[T constraints.Float](x []T) T {
	var s T
	for _, v := range x {
		s += v
	}
	return s
}

func fillFloat[T constraints.Float](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}

func isNaN[T constraints.Float](v T) bool { return math.IsNaN(float64(v)) }

func add[T constraints.Float](x, y T) T { return x + y }

func mul[T constraints.Float](x, y T) T { return x * y }

// minimum returns NaN if either operand is NaN; on ties it returns x.
func minimum[T constraints.Float](x, y T) T {
	switch {
	case isNaN(x):
		return x
	case isNaN(y):
		return y
	case x <= y:
		return x
	default:
		return y
	}
}

// maximum returns NaN if either operand is NaN; on ties it returns x.
func maximum[T constraints.Float](x, y T) T {
	switch {
	case isNaN(x):
		return x
	case isNaN(y):
		return y
	case x >= y:
		return x
	default:
		return y
	}
}

func lowerEqual[T constraints.Float](x, y T) bool { return x <= y }

func greaterEqual[T constraints.Float](x, y T) bool { return x >= y }
