package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/x448/float16"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// DecodeOptions configures Decode.
type DecodeOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// prelude is everything in front of the payload.
type prelude struct {
	header     Header
	headerSize int64
	checksum   [ChecksumSize]byte
}

func readPrelude(r io.Reader, level ValidationLevel) (*prelude, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixed[0:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	p := &prelude{}
	flags := binary.LittleEndian.Uint32(fixed[8:12])
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	payloadBytes := binary.LittleEndian.Uint64(fixed[24:32])
	copy(p.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if payloadBytes > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadSize, payloadBytes)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &p.header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	p.header.Flags = flags
	p.header.PayloadSize = int64(payloadBytes)
	p.headerSize = int64(headerSize)

	if err := ValidateHeader(&p.header, level); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return p, nil
}

// ReadHeader reads and validates the header of a .bcoo stream without
// reading the payload.
func ReadHeader(r io.Reader, level ValidationLevel) (Header, error) {
	p, err := readPrelude(r, level)
	if err != nil {
		return Header{}, err
	}
	return p.header, nil
}

// Decode reads a .bcoo tensor from r, converting stored values to T.
// Coordinates go through the same checks as sparse.NewCOO.
func Decode[T sparse.Numeric](r io.Reader, opts DecodeOptions) (*sparse.COO[T], Header, error) {
	p, err := readPrelude(r, opts.ValidationLevel)
	if err != nil {
		return nil, Header{}, err
	}

	padding := alignedHeaderEnd(p.headerSize) - (FixedHeaderSize + p.headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read padding: %w", err)
	}

	// The declared size is untrusted; let the buffer grow with the data.
	payload, err := io.ReadAll(io.LimitReader(r, p.header.PayloadSize))
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to read payload: %w", err)
	}
	if int64(len(payload)) != p.header.PayloadSize {
		return nil, Header{}, fmt.Errorf("%w: truncated at %d of %d bytes", ErrPayloadSize, len(payload), p.header.PayloadSize)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(payload), p.checksum); err != nil {
			return nil, Header{}, err
		}
	}

	indices, values, err := decodePayload[T](payload, &p.header)
	if err != nil {
		return nil, Header{}, err
	}

	t, err := sparse.NewCOOFromIndices(values, indices, tensor.Shape(p.header.Shape))
	if err != nil {
		return nil, Header{}, fmt.Errorf("invalid tensor data: %w", err)
	}
	return t, p.header, nil
}

// decodePayload splits a payload into coordinates and values converted
// to T.
func decodePayload[T sparse.Numeric](payload []byte, header *Header) ([]int, []T, error) {
	dtype, _ := tensor.ParseDataType(header.DType)
	nnz := header.NNZ

	indices := make([]int, nnz*len(header.Shape))
	off := 0
	for i := range indices {
		v := int64(binary.LittleEndian.Uint64(payload[off:]))
		if v < 0 || v > math.MaxInt {
			return nil, nil, &ValidationError{Type: "invalid_coordinate", Tensor: header.Name, Details: fmt.Sprintf("component %d", v)}
		}
		indices[i] = int(v)
		off += IndexSize
	}

	values := make([]T, nnz)
	half := header.HasFlag(FlagHalfPrecision)
	for i := range values {
		switch {
		case half:
			values[i] = T(float16.Frombits(binary.LittleEndian.Uint16(payload[off:])).Float32())
			off += 2
		case dtype == tensor.Float32:
			values[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(payload[off:])))
			off += 4
		case dtype == tensor.Float64:
			values[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])))
			off += 8
		case dtype == tensor.Int32:
			values[i] = T(int32(binary.LittleEndian.Uint32(payload[off:])))
			off += 4
		case dtype == tensor.Int64:
			values[i] = T(int64(binary.LittleEndian.Uint64(payload[off:])))
			off += 8
		default: // Uint8
			values[i] = T(payload[off])
			off++
		}
	}
	return indices, values, nil
}

// ReadFile decodes the tensor stored in the file at path.
func ReadFile[T sparse.Numeric](path string, opts DecodeOptions) (*sparse.COO[T], Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for tensor loading
	file, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode[T](bufio.NewReader(file), opts)
}

// ReadFileHeader reads the header of the file at path.
func ReadFileHeader(path string, level ValidationLevel) (Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for tensor loading
	file, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadHeader(bufio.NewReader(file), level)
}
