// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the shape, dtype and dense tensor types shared by
// the sparse package.
//
// # Basic Usage
//
//	shape := tensor.Shape{4, 2, 3}
//	fmt.Println(shape.NumElements()) // 24
//
//	raw, _ := tensor.FromSlice([]float64{1, 0, 0, 2}, tensor.Shape{2, 2})
//	fmt.Println(tensor.Data[float64](raw))
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool (dense masks only; sparse tensors use Numeric)
package tensor
