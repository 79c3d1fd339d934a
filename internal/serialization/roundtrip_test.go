package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// sampleTensor builds the [4, 2, 3] tensor used across the sparse tests.
func sampleTensor(t *testing.T) *sparse.COO[float32] {
	t.Helper()
	coords := [][]int{
		{0, 0, 2}, {0, 1, 1}, {0, 1, 2}, {1, 0, 1}, {1, 1, 2},
		{2, 0, 1}, {2, 1, 2}, {3, 0, 2}, {3, 1, 0},
	}
	values := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	c, err := sparse.NewCOO(values, coords, tensor.Shape{4, 2, 3})
	require.NoError(t, err)
	return c
}

func encode(t *testing.T, c sparse.Tensor[float32], opts EncodeOptions) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode[float32](&buf, c, opts))
	return buf.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := sampleTensor(t)
	data := encode(t, c, EncodeOptions{Name: "sample", Metadata: map[string]string{"source": "unit"}})

	// Fixed header fields.
	assert.Equal(t, MagicBytes, string(data[0:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(data[8:12]))
	headerSize := int64(binary.LittleEndian.Uint64(data[16:24]))
	payloadBytes := int64(binary.LittleEndian.Uint64(data[24:32]))
	assert.Equal(t, payloadSize(9, 3, tensor.Float32, 0), payloadBytes)
	assert.Equal(t, alignedHeaderEnd(headerSize)+payloadBytes, int64(len(data)))
	assert.Zero(t, alignedHeaderEnd(headerSize)%HeaderAlignment)

	got, header, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](c, got))
	assert.Equal(t, "sample", header.Name)
	assert.Equal(t, "float32", header.DType)
	assert.Equal(t, []int{4, 2, 3}, header.Shape)
	assert.Equal(t, 9, header.NNZ)
	assert.Equal(t, "unit", header.Metadata["source"])
	assert.True(t, header.HasFlag(FlagHasMetadata))
	assert.False(t, header.HasFlag(FlagHalfPrecision))
}

func TestEncodeDecodeDTypes(t *testing.T) {
	shape := tensor.Shape{3, 3}
	coords := [][]int{{0, 0}, {1, 2}, {2, 1}}

	t.Run("float64", func(t *testing.T) {
		c, err := sparse.NewCOO([]float64{1.25, -2.5, 1e300}, coords, shape)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode[float64](&buf, c, EncodeOptions{}))
		got, _, err := Decode[float64](&buf, DecodeOptions{})
		require.NoError(t, err)
		assert.True(t, sparse.Equal[float64](c, got))
	})

	t.Run("int32", func(t *testing.T) {
		c, err := sparse.NewCOO([]int32{7, -3, 1 << 30}, coords, shape)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode[int32](&buf, c, EncodeOptions{}))
		got, header, err := Decode[int32](&buf, DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, "int32", header.DType)
		assert.True(t, sparse.Equal[int32](c, got))
	})

	t.Run("int64", func(t *testing.T) {
		c, err := sparse.NewCOO([]int64{-1, 1 << 40, 5}, coords, shape)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode[int64](&buf, c, EncodeOptions{}))
		got, _, err := Decode[int64](&buf, DecodeOptions{})
		require.NoError(t, err)
		assert.True(t, sparse.Equal[int64](c, got))
	})

	t.Run("uint8", func(t *testing.T) {
		c, err := sparse.NewCOO([]uint8{1, 255, 128}, coords, shape)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode[uint8](&buf, c, EncodeOptions{}))
		got, _, err := Decode[uint8](&buf, DecodeOptions{})
		require.NoError(t, err)
		assert.True(t, sparse.Equal[uint8](c, got))
	})

	t.Run("widen int32 to float64", func(t *testing.T) {
		c, err := sparse.NewCOO([]int32{7, -3, 2}, coords, shape)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode[int32](&buf, c, EncodeOptions{}))
		got, header, err := Decode[float64](&buf, DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, "int32", header.DType)
		assert.Equal(t, []float64{7, -3, 2}, got.Values())
		assert.Equal(t, c.Indices(), got.Indices())
	})
}

func TestHalfPrecision(t *testing.T) {
	c, err := sparse.NewCOO([]float32{1.5, -2, 0.25}, [][]int{{0}, {3}, {7}}, tensor.Shape{8})
	require.NoError(t, err)

	half := encode(t, c, EncodeOptions{HalfPrecision: true})

	got, header, err := Decode[float32](bytes.NewReader(half), DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, header.HasFlag(FlagHalfPrecision))
	assert.Equal(t, int64(3*(IndexSize+2)), header.PayloadSize)
	assert.Equal(t, "float32", header.DType)
	assert.Equal(t, []float32{1.5, -2, 0.25}, got.Values())

	// Integers cannot be stored as binary16.
	ints, err := sparse.NewCOO([]int32{1}, [][]int{{0}}, tensor.Shape{8})
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, Encode[int32](&buf, ints, EncodeOptions{HalfPrecision: true}))
	assert.Zero(t, buf.Len())
}

func TestEncodeView(t *testing.T) {
	c := sampleTensor(t)
	v, err := c.Get(sparse.Interval(1, 3), sparse.Point(1))
	require.NoError(t, err)

	data := encode(t, v, EncodeOptions{})
	got, header, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, header.Shape)
	assert.True(t, sparse.Equal[float32](v, got))
}

func TestEncodeEmpty(t *testing.T) {
	c, err := sparse.Zeros[float32](tensor.Shape{0, 5})
	require.NoError(t, err)

	data := encode(t, c, EncodeOptions{})
	got, header, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
	require.NoError(t, err)
	assert.Zero(t, header.NNZ)
	assert.Zero(t, got.NNZ())
	assert.Equal(t, tensor.Shape{0, 5}, got.Shape())
}

func TestEncodeInvalidName(t *testing.T) {
	var buf bytes.Buffer
	err := Encode[float32](&buf, sampleTensor(t), EncodeOptions{Name: "../escape"})
	assert.ErrorIs(t, err, ErrInvalidTensorName)
}

func TestDecodeCorruption(t *testing.T) {
	c := sampleTensor(t)

	tests := []struct {
		name    string
		corrupt func(data []byte) []byte
		wantErr error
	}{
		{
			name: "flipped payload byte",
			corrupt: func(data []byte) []byte {
				data[len(data)-1] ^= 0xFF
				return data
			},
			wantErr: ErrChecksumMismatch,
		},
		{
			name: "bad magic",
			corrupt: func(data []byte) []byte {
				copy(data[0:4], "BORN")
				return data
			},
			wantErr: ErrInvalidMagic,
		},
		{
			name: "future version",
			corrupt: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[4:8], FormatVersion+1)
				return data
			},
			wantErr: ErrUnsupportedVersion,
		},
		{
			name: "payload size mismatch",
			corrupt: func(data []byte) []byte {
				size := binary.LittleEndian.Uint64(data[24:32])
				binary.LittleEndian.PutUint64(data[24:32], size+4)
				return data
			},
			wantErr: ErrPayloadSize,
		},
		{
			name: "truncated payload",
			corrupt: func(data []byte) []byte {
				return data[:len(data)-5]
			},
			wantErr: ErrPayloadSize,
		},
		{
			name: "oversized header",
			corrupt: func(data []byte) []byte {
				binary.LittleEndian.PutUint64(data[16:24], MaxHeaderSize+1)
				return data
			},
			wantErr: ErrHeaderTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.corrupt(encode(t, c, EncodeOptions{}))
			_, _, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeSkipChecksumValidation(t *testing.T) {
	c := sampleTensor(t)
	data := encode(t, c, EncodeOptions{})
	// Corrupt the stored checksum only.
	data[ChecksumOffset] ^= 0xFF

	_, _, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
	require.ErrorIs(t, err, ErrChecksumMismatch)

	got, _, err := Decode[float32](bytes.NewReader(data), DecodeOptions{SkipChecksumValidation: true})
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](c, got))
}

func TestDecodeOutOfRangeCoordinate(t *testing.T) {
	c := sampleTensor(t)
	data := encode(t, c, EncodeOptions{})

	// Rewrite the first coordinate component past its axis and fix up the
	// checksum so only the bounds check can catch it.
	start := len(data) - int(payloadSize(9, 3, tensor.Float32, 0))
	binary.LittleEndian.PutUint64(data[start:], 4)
	sum := ComputeChecksum(data[start:])
	copy(data[ChecksumOffset:], sum[:])

	_, _, err := Decode[float32](bytes.NewReader(data), DecodeOptions{})
	assert.ErrorIs(t, err, sparse.ErrShapeMismatch)
}

func TestReadHeader(t *testing.T) {
	data := encode(t, sampleTensor(t), EncodeOptions{Name: "sample"})

	header, err := ReadHeader(bytes.NewReader(data), ValidationStrict)
	require.NoError(t, err)
	assert.Equal(t, "sample", header.Name)
	assert.Equal(t, 9, header.NNZ)
	assert.Equal(t, payloadSize(9, 3, tensor.Float32, 0), header.PayloadSize)
	assert.False(t, header.CreatedAt.IsZero())

	// A header alone is enough.
	_, err = ReadHeader(bytes.NewReader(data[:alignedHeaderEnd(int64(binary.LittleEndian.Uint64(data[16:24])))]), ValidationStrict)
	assert.NoError(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	c := sampleTensor(t)
	path := filepath.Join(t.TempDir(), "sample.bcoo")

	require.NoError(t, WriteFile[float32](path, c, EncodeOptions{Name: "sample"}))

	header, err := ReadFileHeader(path, ValidationStrict)
	require.NoError(t, err)
	assert.Equal(t, "sample", header.Name)

	got, _, err := ReadFile[float32](path, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](c, got))

	_, _, err = ReadFile[float32](filepath.Join(t.TempDir(), "missing.bcoo"), DecodeOptions{})
	assert.Error(t, err)
}
