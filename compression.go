package eurotab

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/eurotab/domain/model"
	"github.com/ulikunitz/xz"
)

// CompressionHandler wraps readers and writers of one compression type.
type CompressionHandler interface {
	// CreateReader wraps reader with a decompressor. The returned func
	// releases the decompressor, not reader.
	CreateReader(reader io.Reader) (io.Reader, func() error, error)
	// CreateWriter wraps writer with a compressor. The returned func flushes
	// and closes the compressor, not writer.
	CreateWriter(writer io.Writer) (io.Writer, func() error, error)
	// Extension returns the file extension, "" for CompressionNone
	Extension() string
}

func nopClose() error { return nil }

// codec is one entry of the codec table. A nil writer marks a read-only
// format.
type codec struct {
	magic  []byte
	reader func(io.Reader) (io.Reader, func() error, error)
	writer func(io.Writer) (io.Writer, func() error, error)
}

var codecs = map[CompressionType]codec{
	CompressionNone: {
		reader: func(r io.Reader) (io.Reader, func() error, error) { return r, nopClose, nil },
		writer: func(w io.Writer) (io.Writer, func() error, error) { return w, nopClose, nil },
	},
	CompressionGZ: {
		magic: []byte{0x1f, 0x8b},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return zr, zr.Close, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			zw := gzip.NewWriter(w)
			return zw, zw.Close, nil
		},
	},
	CompressionBZ2: {
		magic: []byte("BZh"),
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), nopClose, nil
		},
	},
	CompressionXZ: {
		magic: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return xr, nopClose, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			xw, err := xz.NewWriter(w)
			if err != nil {
				return nil, nil, err
			}
			return xw, xw.Close, nil
		},
	},
	CompressionZSTD: {
		magic: []byte{0x28, 0xb5, 0x2f, 0xfd},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return dec, func() error {
				dec.Close()
				return nil
			}, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			enc, err := zstd.NewWriter(w)
			if err != nil {
				return nil, nil, err
			}
			return enc, enc.Close, nil
		},
	},
}

// sniffLen is the longest magic number in the codec table.
const sniffLen = 6

// SniffCompression returns the compression whose magic number header starts
// with, or CompressionNone.
func SniffCompression(header []byte) CompressionType {
	for _, ct := range []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if bytes.HasPrefix(header, codecs[ct].magic) {
			return ct
		}
	}
	return CompressionNone
}

type compressionHandler struct {
	compressionType CompressionType
}

// NewCompressionHandler creates a handler for compressionType.
func NewCompressionHandler(compressionType CompressionType) CompressionHandler {
	return compressionHandler{compressionType: compressionType}
}

func (h compressionHandler) CreateReader(reader io.Reader) (io.Reader, func() error, error) {
	c, ok := codecs[h.compressionType]
	if !ok {
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, h.compressionType)
	}
	r, closeFn, err := c.reader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s reader: %w", h.compressionType, err)
	}
	return r, closeFn, nil
}

func (h compressionHandler) CreateWriter(writer io.Writer) (io.Writer, func() error, error) {
	c, ok := codecs[h.compressionType]
	if !ok {
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, h.compressionType)
	}
	if c.writer == nil {
		return nil, nil, fmt.Errorf("%w: %s compression is read-only", ErrUnsupportedFormat, h.compressionType)
	}
	w, closeFn, err := c.writer(writer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s writer: %w", h.compressionType, err)
	}
	return w, closeFn, nil
}

func (h compressionHandler) Extension() string {
	return h.compressionType.Extension()
}

// CompressionFactory picks compression handlers for files.
type CompressionFactory struct{}

// NewCompressionFactory creates a new compression factory
func NewCompressionFactory() *CompressionFactory {
	return &CompressionFactory{}
}

// DetectCompressionType detects the compression type from a file path
func (f *CompressionFactory) DetectCompressionType(path string) CompressionType {
	switch model.CompressionExtension(path) {
	case model.ExtGZ:
		return CompressionGZ
	case model.ExtBZ2:
		return CompressionBZ2
	case model.ExtXZ:
		return CompressionXZ
	case model.ExtZSTD:
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// NewReader returns a decompressing reader for r. The extension of name
// selects the codec; a name without a compression extension is sniffed, so
// a gzip download saved as "MASTER_EUROSTAT.csv" still reads as text.
func (f *CompressionFactory) NewReader(r io.Reader, name string) (io.Reader, func() error, error) {
	ct := f.DetectCompressionType(name)
	if ct == CompressionNone {
		br := bufio.NewReader(r)
		header, _ := br.Peek(sniffLen) // shorter inputs return what they have
		ct = SniffCompression(header)
		r = br
	}
	return NewCompressionHandler(ct).CreateReader(r)
}

// CreateReaderForFile opens path and returns a decompressing reader. The
// returned func closes both the decompressor and the file.
func (f *CompressionFactory) CreateReaderForFile(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, closeReader, err := f.NewReader(file, path)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return reader, func() error {
		err := closeReader()
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}, nil
}

// CreateWriterForFile creates path and returns a writer compressing with
// compressionType. The returned func flushes, syncs and closes the file.
func (f *CompressionFactory) CreateWriterForFile(path string, compressionType CompressionType) (io.Writer, func() error, error) {
	if c, ok := codecs[compressionType]; !ok || c.writer == nil {
		return nil, nil, fmt.Errorf("%w: cannot write %v", ErrUnsupportedFormat, compressionType)
	}

	file, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file: %w", err)
	}
	writer, closeWriter, err := NewCompressionHandler(compressionType).CreateWriter(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return writer, func() error {
		err := closeWriter()
		if syncErr := file.Sync(); syncErr != nil && err == nil {
			err = syncErr
		}
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}, nil
}

// ParseCompressionType converts a compression name into a CompressionType.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGZ, nil
	case "bz2", "bzip2":
		return CompressionBZ2, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("%w: unknown compression %q", ErrUnsupportedFormat, name)
	}
}
