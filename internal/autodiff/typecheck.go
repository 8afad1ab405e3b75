package autodiff

import "fmt"

// TypeChecker accumulates expectations about a Function's inputs and
// reports the first one that fails.
//
// Example:
//
//	return autodiff.Expect("minimum", in).
//		Size(2).
//		Float(0).
//		SameDType(0, 1).
//		SameShape(0, 1).
//		Err()
type TypeChecker struct {
	fn  string
	in  []TypeInfo
	err *TypeCheckError
}

// Expect starts a type check for the Function labelled fn.
func Expect(fn string, in []TypeInfo) *TypeChecker {
	return &TypeChecker{fn: fn, in: in}
}

func (c *TypeChecker) fail(format string, args ...any) *TypeChecker {
	if c.err == nil {
		c.err = &TypeCheckError{
			Function: c.fn,
			Inputs:   c.in,
			Reason:   fmt.Sprintf(format, args...),
		}
	}
	return c
}

func (c *TypeChecker) valid(i int) bool {
	if i < 0 || i >= len(c.in) {
		c.fail("input %d missing", i)
		return false
	}
	return true
}

// Size expects exactly n inputs.
func (c *TypeChecker) Size(n int) *TypeChecker {
	if c.err == nil && len(c.in) != n {
		c.fail("expected %d inputs, got %d", n, len(c.in))
	}
	return c
}

// Float expects input i to have a floating-point dtype.
func (c *TypeChecker) Float(i int) *TypeChecker {
	if c.err == nil && c.valid(i) && !c.in[i].DType.IsFloat() {
		c.fail("input %d dtype %s is not a float type", i, c.in[i].DType)
	}
	return c
}

// SameDType expects inputs i and j to share a dtype.
func (c *TypeChecker) SameDType(i, j int) *TypeChecker {
	if c.err == nil && c.valid(i) && c.valid(j) && c.in[i].DType != c.in[j].DType {
		c.fail("input %d dtype %s != input %d dtype %s", i, c.in[i].DType, j, c.in[j].DType)
	}
	return c
}

// SameShape expects inputs i and j to share a shape.
func (c *TypeChecker) SameShape(i, j int) *TypeChecker {
	if c.err == nil && c.valid(i) && c.valid(j) && !c.in[i].Shape.Equal(c.in[j].Shape) {
		c.fail("input %d shape %v != input %d shape %v", i, c.in[i].Shape, j, c.in[j].Shape)
	}
	return c
}

// Scalar expects input i to hold exactly one element.
func (c *TypeChecker) Scalar(i int) *TypeChecker {
	if c.err == nil && c.valid(i) && c.in[i].Shape.NumElements() != 1 {
		c.fail("input %d shape %v is not a scalar", i, c.in[i].Shape)
	}
	return c
}

// Rank expects input i to have exactly r dimensions.
func (c *TypeChecker) Rank(i, r int) *TypeChecker {
	if c.err == nil && c.valid(i) && len(c.in[i].Shape) != r {
		c.fail("input %d shape %v does not have rank %d", i, c.in[i].Shape, r)
	}
	return c
}

// Elementwise expects n float inputs that all share input 0's dtype and
// shape.
func (c *TypeChecker) Elementwise(n int) *TypeChecker {
	c.Size(n).Float(0)
	for i := 1; i < n; i++ {
		c.SameDType(0, i).SameShape(0, i)
	}
	return c
}

// Err returns the first failed expectation, or nil.
func (c *TypeChecker) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}
