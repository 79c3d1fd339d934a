// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparse

import (
	"io"

	"github.com/born-ml/sparse/internal/serialization"
)

// Header describes a .bcoo file.
type Header = serialization.Header

// EncodeOptions configures Encode and WriteFile.
type EncodeOptions = serialization.EncodeOptions

// DecodeOptions configures Decode and ReadFile.
type DecodeOptions = serialization.DecodeOptions

// Encode writes t to w in .bcoo format.
func Encode[T Numeric](w io.Writer, t Tensor[T], opts EncodeOptions) error {
	return serialization.Encode(w, t, opts)
}

// Decode reads a .bcoo tensor, converting its values to T.
func Decode[T Numeric](r io.Reader, opts DecodeOptions) (*COO[T], Header, error) {
	return serialization.Decode[T](r, opts)
}

// WriteFile writes t to the .bcoo file at path.
func WriteFile[T Numeric](path string, t Tensor[T], opts EncodeOptions) error {
	return serialization.WriteFile(path, t, opts)
}

// ReadFile reads the .bcoo file at path, converting its values to T.
func ReadFile[T Numeric](path string, opts DecodeOptions) (*COO[T], Header, error) {
	return serialization.ReadFile[T](path, opts)
}
