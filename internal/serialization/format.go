package serialization

import (
	"time"

	"github.com/born-ml/sparse/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "BCOO"
	FormatVersion   = 1
	HeaderAlignment = 64   // Payload starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	IndexSize       = 8    // Coordinates are stored as int64
)

// Flags for the .bcoo format.
const (
	FlagHalfPrecision uint32 = 1 << 0 // bit 0: float values stored as IEEE 754 binary16
	FlagHasMetadata   uint32 = 1 << 1 // bit 1: custom metadata included
)

// libraryVersion is recorded in every header this package writes.
const libraryVersion = "0.1.0"

// Header is the JSON header of a .bcoo file.
type Header struct {
	FormatVersion  int               `json:"format_version"`     // Version of the .bcoo format
	LibraryVersion string            `json:"library_version"`    // Version of the library that wrote the file
	Name           string            `json:"name,omitempty"`     // Tensor name (e.g., "embeddings.sparse")
	DType          string            `json:"dtype"`              // Element type of the tensor (e.g., "float32")
	Shape          []int             `json:"shape"`              // Dense shape
	NNZ            int               `json:"nnz"`                // Number of stored entries
	CreatedAt      time.Time         `json:"created_at"`         // When the file was written
	Metadata       map[string]string `json:"metadata,omitempty"` // Custom metadata

	// Filled in from the fixed header when reading.
	Flags       uint32 `json:"-"`
	PayloadSize int64  `json:"-"`
}

// HasFlag reports whether flag is set in h.Flags.
func (h *Header) HasFlag(flag uint32) bool {
	return h.Flags&flag != 0
}

// valueSize returns the stored size of one value.
func valueSize(dtype tensor.DataType, flags uint32) int {
	if flags&FlagHalfPrecision != 0 {
		return 2
	}
	return dtype.Size()
}

// payloadSize returns the expected payload size for nnz entries of the
// given rank.
func payloadSize(nnz, rank int, dtype tensor.DataType, flags uint32) int64 {
	return int64(nnz) * int64(rank*IndexSize+valueSize(dtype, flags))
}

// alignedHeaderEnd returns the offset at which the payload starts.
func alignedHeaderEnd(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
