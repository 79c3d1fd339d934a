// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparse

import (
	"github.com/born-ml/sparse/internal/loader"
	"github.com/born-ml/sparse/tensor"
)

// Sparsify keeps the elements of raw whose magnitude exceeds threshold.
func Sparsify[T Numeric](raw *tensor.RawTensor, threshold float64) (*COO[T], error) {
	return loader.Sparsify[T](raw, threshold)
}

// ImportSafeTensors reads the named dense tensor from a SafeTensors file and
// sparsifies it. F16 and BF16 tensors are widened to float32 first.
func ImportSafeTensors[T Numeric](path, name string, threshold float64) (*COO[T], map[string]string, error) {
	return loader.ImportFile[T](path, name, threshold)
}

// ExportSafeTensors densifies tensors into a SafeTensors file.
func ExportSafeTensors[T Numeric](path string, tensors map[string]Tensor[T], metadata map[string]string) error {
	return loader.ExportFile(path, tensors, metadata)
}
