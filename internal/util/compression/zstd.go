package compression

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor shares one encoder and decoder across calls; EncodeAll and
// DecodeAll are safe for concurrent use.
type ZstdCompressor struct{}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInitErr error
)

func initZstd() {
	zstdEncoder, zstdInitErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if zstdInitErr != nil {
		return
	}
	zstdDecoder, zstdInitErr = zstd.NewReader(nil)
}

func (z ZstdCompressor) Compress(data []byte) ([]byte, error) {
	zstdOnce.Do(initZstd)
	if zstdInitErr != nil {
		return nil, zstdInitErr
	}
	return zstdEncoder.EncodeAll(data, nil), nil
}

func (z ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	zstdOnce.Do(initZstd)
	if zstdInitErr != nil {
		return nil, zstdInitErr
	}
	return zstdDecoder.DecodeAll(data, nil)
}
