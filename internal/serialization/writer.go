package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/x448/float16"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// EncodeOptions configures Encode.
type EncodeOptions struct {
	Name          string            // Optional tensor name, validated with ValidateTensorName
	HalfPrecision bool              // Store float values as binary16
	Metadata      map[string]string // Custom metadata
}

// Encode writes t to w in .bcoo format.
func Encode[T sparse.Numeric](w io.Writer, t sparse.Tensor[T], opts EncodeOptions) error {
	dtype := tensor.DataTypeOf[T]()

	if opts.Name != "" {
		if err := ValidateTensorName(opts.Name); err != nil {
			return err
		}
	}

	var flags uint32
	if opts.HalfPrecision {
		if !dtype.IsFloat() {
			return fmt.Errorf("half precision requires a float dtype, got %s", dtype)
		}
		flags |= FlagHalfPrecision
	}
	if len(opts.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	payload := encodePayload(t, dtype, flags)

	header := Header{
		FormatVersion:  FormatVersion,
		LibraryVersion: libraryVersion,
		Name:           opts.Name,
		DType:          dtype.String(),
		Shape:          []int(t.Shape()),
		NNZ:            t.NNZ(),
		CreatedAt:      time.Now().UTC(),
		Metadata:       opts.Metadata,
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerJSON))
	}

	// Fixed header layout:
	// 0x00 magic, 0x04 version, 0x08 flags, 0x0C reserved,
	// 0x10 header size, 0x18 payload size, 0x20 SHA-256 of the payload.
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(payload)))
	checksum := ComputeChecksum(payload)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	padding := alignedHeaderEnd(int64(len(headerJSON))) - int64(FixedHeaderSize+len(headerJSON))
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// encodePayload lays out the coordinates as int64 followed by the values.
func encodePayload[T sparse.Numeric](t sparse.Tensor[T], dtype tensor.DataType, flags uint32) []byte {
	indices := t.Indices()
	values := t.Values()
	buf := make([]byte, payloadSize(len(values), t.Rank(), dtype, flags))

	off := 0
	for _, v := range indices {
		binary.LittleEndian.PutUint64(buf[off:], uint64(int64(v)))
		off += IndexSize
	}

	half := flags&FlagHalfPrecision != 0
	for _, v := range values {
		switch {
		case half:
			binary.LittleEndian.PutUint16(buf[off:], float16.Fromfloat32(float32(v)).Bits())
			off += 2
		case dtype == tensor.Float32:
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
			off += 4
		case dtype == tensor.Float64:
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(float64(v)))
			off += 8
		case dtype == tensor.Int32:
			binary.LittleEndian.PutUint32(buf[off:], uint32(int32(v)))
			off += 4
		case dtype == tensor.Int64:
			binary.LittleEndian.PutUint64(buf[off:], uint64(int64(v)))
			off += 8
		default: // Uint8
			buf[off] = byte(v)
			off++
		}
	}
	return buf
}

// WriteFile encodes t into the file at path, replacing it.
func WriteFile[T sparse.Numeric](path string, t sparse.Tensor[T], opts EncodeOptions) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for tensor saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	bw := bufio.NewWriter(file)
	if err := Encode(bw, t, opts); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return file.Close()
}
