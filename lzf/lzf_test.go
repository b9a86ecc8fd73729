package lzf

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, input []byte) []byte {
	t.Helper()

	dst := make([]byte, CompressBound(len(input)))
	n, err := Compress(input, dst)
	require.NoError(t, err)

	out := make([]byte, len(input))
	m, err := Decompress(dst[:n], out)
	require.NoError(t, err)
	require.Equal(t, len(input), m)
	require.True(t, bytes.Equal(input, out[:m]))

	return dst[:n]
}

func TestCompress_EmptyInput(t *testing.T) {
	n, err := Compress(nil, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestCompress_RepeatedRun(t *testing.T) {
	// Ten identical bytes compress into a single literal followed by one
	// overlapping back-reference at distance 1.
	input := bytes.Repeat([]byte{'A'}, 10)
	compressed := roundTrip(t, input)

	require.Equal(t, []byte{0x00, 'A', 0xe0, 0x00, 0x00}, compressed)
}

func TestCompress_LiteralOnly(t *testing.T) {
	// No 3-byte repetition anywhere, so the output is pure literal runs.
	input := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	compressed := roundTrip(t, input)
	require.Equal(t, len(input)+1, len(compressed))
	require.Equal(t, byte(len(input)-1), compressed[0])
}

func TestCompress_LongMatch(t *testing.T) {
	// A run far longer than the 264-byte match cap forces several
	// back-reference tokens.
	input := bytes.Repeat([]byte{'x'}, 4096)
	compressed := roundTrip(t, input)
	require.Less(t, len(compressed), 64)
}

func TestCompress_ShortDestination(t *testing.T) {
	input := []byte("incompressible-ish input 1234567890")
	_, err := Compress(input, make([]byte, 4))
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestRoundTrip_Inputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	random := make([]byte, 8192)
	rng.Read(random)

	cyclic := make([]byte, 10000)
	for i := range cyclic {
		cyclic[i] = byte(i % 251)
	}

	structured := bytes.Repeat([]byte("FIELDS x y z rgb\nSIZE 4 4 4 4\n"), 100)

	tests := []struct {
		name  string
		input []byte
	}{
		{"single byte", []byte{0x7f}},
		{"two bytes", []byte{0x01, 0x02}},
		{"short repeat", bytes.Repeat([]byte{9}, 2)},
		{"random", random},
		{"cyclic", cyclic},
		{"structured text", structured},
		{"all zero", make([]byte, 100000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, tt.input)
		})
	}
}

func TestRoundTrip_Float32Columns(t *testing.T) {
	// The shape of a binary_compressed PCD payload: columns of float32
	// values with plenty of shared byte patterns.
	input := make([]byte, 0, 12000)
	for col := 0; col < 3; col++ {
		for i := 0; i < 1000; i++ {
			input = append(input, byte(i), byte(i>>8), 0x80, 0x3f+byte(col))
		}
	}
	roundTrip(t, input)
}

func TestDecompress_TruncatedControl(t *testing.T) {
	// Literal run header promising more bytes than the stream holds.
	_, err := Decompress([]byte{0x05, 'a', 'b'}, make([]byte, 16))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompress_TruncatedExtensionByte(t *testing.T) {
	// Back-reference with len field 7 but no extension byte following.
	_, err := Decompress([]byte{0xe0}, make([]byte, 16))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompress_TruncatedOffsetByte(t *testing.T) {
	// Short back-reference missing its low offset byte.
	_, err := Decompress([]byte{0x00, 'a', 0x20}, make([]byte, 16))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompress_ReferenceBeforeStart(t *testing.T) {
	// Offset reaches before the first output byte.
	_, err := Decompress([]byte{0x00, 'a', 0x20, 0x05}, make([]byte, 16))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompress_OutputOverflow(t *testing.T) {
	input := bytes.Repeat([]byte{'A'}, 100)
	dst := make([]byte, CompressBound(len(input)))
	n, err := Compress(input, dst)
	require.NoError(t, err)

	_, err = Decompress(dst[:n], make([]byte, 10))
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecompress_LiteralOverflow(t *testing.T) {
	_, err := Decompress([]byte{0x03, 'a', 'b', 'c', 'd'}, make([]byte, 2))
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestCompressBound(t *testing.T) {
	// The documented worst case: bound always covers pure literal output.
	for _, n := range []int{0, 1, 31, 32, 33, 1000, 1 << 20} {
		literalCost := n + (n+maxLiteral-1)/maxLiteral
		require.GreaterOrEqual(t, CompressBound(n), literalCost)
	}
}

func BenchmarkCompress(b *testing.B) {
	input := make([]byte, 1<<20)
	for i := range input {
		input[i] = byte(i * i >> 7)
	}
	dst := make([]byte, CompressBound(len(input)))

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Compress(input, dst)
		require.NoError(b, err)
	}
}

func BenchmarkDecompress(b *testing.B) {
	input := make([]byte, 1<<20)
	for i := range input {
		input[i] = byte(i * i >> 7)
	}
	dst := make([]byte, CompressBound(len(input)))
	n, err := Compress(input, dst)
	require.NoError(b, err)
	out := make([]byte, len(input))

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Decompress(dst[:n], out)
		require.NoError(b, err)
	}
}
