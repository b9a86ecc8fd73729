package compress

// ZstdCodec wraps streams in the Zstandard container format (".zst").
//
// Two implementations exist behind build tags: a cgo binding to libzstd for
// maximum throughput, and a pure-Go fallback used when cgo is unavailable.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func (ZstdCodec) Name() string { return "zstd" }
