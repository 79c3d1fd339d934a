// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/sparse/internal/tensor"
)

// RawTensor is a dense, row-major tensor backed by a byte buffer.
//
// It is the dense side of sparse.ToDense and sparse.FromDense.
//
// Example:
//
//	raw, _ := tensor.FromSlice([]float32{1, 0, 0, 2}, tensor.Shape{2, 2})
//	data := tensor.Data[float32](raw) // Zero-copy typed view
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled dense tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice copies data into a new dense tensor of the given shape.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Data returns the buffer of r as a []T. It panics if T does not match
// r.DType().
func Data[T DType](r *RawTensor) []T {
	return tensor.Data[T](r)
}
