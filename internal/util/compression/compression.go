// Package compression holds the codecs used for note content at rest.
package compression

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

var (
	_ Compressor = ZstdCompressor{}
	_ Compressor = GzipCompressor{}
)
