package numeric

import (
	"bytes"
	"fmt"

	"github.com/mdsplus/mdsgo/errors"
)

// Array is an n-dimensional array of scalars sharing one dtype, stored flat
// in row-major order. The zero value is an empty array.
type Array struct {
	dtype DType
	shape []int
	data  []Scalar
}

// NewArray builds an array of dtype d and the given shape from values in
// row-major order. Each value is converted with ScalarOf and cast to d. An
// empty shape makes a zero-dimensional array holding exactly one value.
func NewArray(d DType, shape []int, values ...interface{}) (*Array, error) {
	size := 1
	for _, n := range shape {
		if n < 0 {
			return nil, errors.Newf("negative dimension in shape %v", shape)
		}
		size *= n
	}
	if size != len(values) {
		return nil, errors.Newf(
			"%d values do not fill shape %v (%d elements)",
			len(values),
			shape,
			size)
	}

	data := make([]Scalar, len(values))
	for i, v := range values {
		s, err := ScalarOf(v)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		if data[i], err = s.Astype(d); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return &Array{
		dtype: d,
		shape: append([]int(nil), shape...),
		data:  data,
	}, nil
}

// Vector is a shorthand for a one-dimensional NewArray.
func Vector(d DType, values ...interface{}) (*Array, error) {
	return NewArray(d, []int{len(values)}, values...)
}

// DType is the dtype shared by every element.
func (a *Array) DType() DType {
	return a.dtype
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

func (a *Array) Ndim() int {
	return len(a.shape)
}

// Size is the total number of elements.
func (a *Array) Size() int {
	return len(a.data)
}

// At returns the element at the given multi-dimensional index.
func (a *Array) At(index ...int) (Scalar, error) {
	if len(index) != len(a.shape) {
		return Scalar{}, errors.Newf(
			"index %v has %d dimensions, array has %d",
			index,
			len(index),
			len(a.shape))
	}
	if len(a.data) == 0 {
		return Scalar{}, errors.Newf("index %v into an empty array", index)
	}
	offset := 0
	for i, n := range a.shape {
		if index[i] < 0 || index[i] >= n {
			return Scalar{}, errors.Newf("index %v out of bounds for shape %v", index, a.shape)
		}
		offset = offset*n + index[i]
	}
	return a.data[offset], nil
}

// Astype returns a copy of the array with every element cast to d. The
// first element that cannot be cast aborts the whole cast.
func (a *Array) Astype(d DType) (*Array, error) {
	data := make([]Scalar, len(a.data))
	for i, s := range a.data {
		var err error
		if data[i], err = s.Astype(d); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return &Array{dtype: d, shape: a.Shape(), data: data}, nil
}

// ToList materializes the array as nested []interface{} slices of native Go
// values, one level per dimension. A zero-dimensional array yields its
// single native value, the zero Array an empty list.
func (a *Array) ToList() interface{} {
	if len(a.data) == 0 && len(a.shape) == 0 {
		return []interface{}{}
	}
	if len(a.shape) == 0 {
		return a.data[0].Interface()
	}
	list, _ := a.toList(0, 0)
	return list
}

func (a *Array) toList(dim int, offset int) ([]interface{}, int) {
	n := a.shape[dim]
	list := make([]interface{}, n)
	for i := 0; i < n; i++ {
		if dim == len(a.shape)-1 {
			list[i] = a.data[offset].Interface()
			offset++
		} else {
			list[i], offset = a.toList(dim+1, offset)
		}
	}
	return list, offset
}

func (a *Array) String() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "array(%v, dtype=%s)", a.ToList(), a.dtype)
	return buf.String()
}
