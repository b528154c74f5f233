package config

// CompressionKind selects the block codec for column data.
// Values must stay stable, the kind byte is written into the file postscript.
type CompressionKind byte

const (
	CompressionNone CompressionKind = iota
	CompressionZlib
	CompressionSnappy
	CompressionZstd
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	}
	return "unknown"
}

type ReaderOptions struct {
	// MaxFooterSize limits how large a file footer the reader will load,
	// guarding against a corrupted postscript length.
	MaxFooterSize uint64
}

type WriterOptions struct {
	Compression CompressionKind
	// CompressionLevel is passed to the codec, -1 means codec default.
	// Snappy has no levels and ignores it.
	CompressionLevel int
}

func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{MaxFooterSize: 64 * 1024 * 1024}
}

func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Compression: CompressionZlib, CompressionLevel: -1}
}
