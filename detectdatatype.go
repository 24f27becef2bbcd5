package apoe

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}

	return "invalid"
}

// Checked in this order so that the 2-byte zlib signature cannot shadow a
// longer one.
var byteCodeSigs = []struct {
	DataType
	Signature []byte
}{
	{DataTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{DataTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{DataTypeGzip, []byte{0x1f, 0x8b, 0x08}},
	{DataTypeBZip2, []byte{0x42, 0x5a, 0x68}},
	{DataTypeZ, []byte{0x1f, 0x9d}},
}

// DetectDataType attempts to detect the data type of a stream by checking its
// first bytes against a set of known signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(r io.Reader) (DataType, error) {
	buff := make([]byte, 6)
	n, err := io.ReadFull(r, buff)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			// An empty file is a valid, uncompressed, empty file.
			return DataTypeNoCompression, nil
		}
		return DataTypeInvalid, err
	}
	buff = buff[:n]

Outer:
	for _, sig := range byteCodeSigs {
		if len(buff) < len(sig.Signature) {
			continue
		}
		for position := range sig.Signature {
			if buff[position] != sig.Signature[position] {
				continue Outer
			}
		}
		return sig.DataType, nil
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompress sniffs the compression type of rs, rewinds it, and returns a
// reader that yields the decompressed bytes. Closing the returned reader closes
// rs.
func MaybeDecompress(rs ReadSeekCloser) (io.ReadCloser, error) {
	dt, err := DetectDataType(rs)
	if err != nil {
		return nil, err
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var r io.Reader
	switch dt {
	case DataTypeGzip:
		r, err = gzip.NewReader(rs)
	case DataTypeZip:
		// Only the first member of an archive is read.
		zr := zipstream.NewReader(rs)
		_, err = zr.Next()
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(rs)
	case DataTypeXZ:
		r, err = xz.NewReader(rs, 0)
	case DataTypeZ:
		r, err = zlib.NewReader(rs)
	default:
		return rs, nil
	}
	if err != nil {
		return nil, err
	}

	return &stackedReadCloser{Reader: r, underlying: rs}, nil
}

// stackedReadCloser closes the decompressor (when it is closeable) and then the
// underlying stream.
type stackedReadCloser struct {
	io.Reader
	underlying io.Closer
}

func (c *stackedReadCloser) Close() error {
	if closer, ok := c.Reader.(io.Closer); ok {
		closer.Close()
	}

	return c.underlying.Close()
}
