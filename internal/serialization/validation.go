package serialization

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/sparse/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 1 << 20   // 1MB - maximum header size
	MaxTensorNameLen = 4096      // Maximum tensor name length
	MaxRank          = 64        // Maximum number of dimensions
	MaxEntries       = 1<<31 - 1 // Maximum number of stored entries
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal performs basic validation checks only.
	ValidationNormal
	// ValidationNone skips validation (dangerous! Use only with trusted input).
	ValidationNone
)

// ValidateTensorName checks tensor names for path traversal attacks and malicious patterns.
// Names double as store keys, so separators are rejected too.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name[:32] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
			Err:     ErrTensorNameTooLong,
		}
	}

	// Path traversal prevention - critical for security.
	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
			Err:     ErrInvalidTensorName,
		}
	}

	// Prevent absolute paths and directory separators.
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
			Err:     ErrInvalidTensorName,
		}
	}

	// Prevent null bytes (can bypass length checks in some contexts).
	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
			Err:     ErrInvalidTensorName,
		}
	}

	return nil
}

// denseSize returns the number of dense elements of shape, saturating at
// math.MaxInt64.
func denseSize(shape []int) int64 {
	n := int64(1)
	for _, d := range shape {
		if d == 0 {
			return 0
		}
		if n > math.MaxInt64/int64(d) {
			n = math.MaxInt64
			continue
		}
		n *= int64(d)
	}
	return n
}

// ValidateHeader checks a decoded header before its payload is read.
//
// Dtype, rank, entry count and payload size are checked at every level,
// since decoding depends on them. Normal validation adds the name and shape
// checks; strict validation also requires the entry count to fit the dense
// shape.
func ValidateHeader(h *Header, level ValidationLevel) error {
	dtype, ok := tensor.ParseDataType(h.DType)
	if !ok || dtype == tensor.Bool {
		return &ValidationError{Type: "invalid_dtype", Tensor: h.Name, Details: fmt.Sprintf("dtype %q", h.DType), Err: ErrUnsupportedDType}
	}
	if h.HasFlag(FlagHalfPrecision) && !dtype.IsFloat() {
		return &ValidationError{Type: "invalid_flags", Tensor: h.Name, Details: "half precision set for " + h.DType}
	}
	if h.NNZ < 0 || h.NNZ > MaxEntries {
		return &ValidationError{Type: "too_many_entries", Tensor: h.Name, Details: fmt.Sprintf("nnz %d, max %d", h.NNZ, MaxEntries)}
	}
	if len(h.Shape) > MaxRank {
		return &ValidationError{Type: "invalid_shape", Tensor: h.Name, Details: fmt.Sprintf("rank %d > max %d", len(h.Shape), MaxRank)}
	}
	if want := payloadSize(h.NNZ, len(h.Shape), dtype, h.Flags); h.PayloadSize != want {
		return &ValidationError{
			Type:    "payload_size",
			Tensor:  h.Name,
			Details: fmt.Sprintf("payload %d bytes, %d entries of rank %d need %d", h.PayloadSize, h.NNZ, len(h.Shape), want),
			Err:     ErrPayloadSize,
		}
	}

	if level == ValidationNone {
		return nil
	}

	if h.Name != "" {
		if err := ValidateTensorName(h.Name); err != nil {
			return err
		}
	}
	if err := tensor.Shape(h.Shape).Validate(); err != nil {
		return &ValidationError{Type: "invalid_shape", Tensor: h.Name, Details: err.Error()}
	}

	if level == ValidationStrict {
		if dense := denseSize(h.Shape); int64(h.NNZ) > dense {
			return &ValidationError{
				Type:    "too_many_entries",
				Tensor:  h.Name,
				Details: fmt.Sprintf("nnz %d exceeds %d dense elements of shape %v", h.NNZ, dense, h.Shape),
			}
		}
	}

	return nil
}
