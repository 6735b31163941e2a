package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

var (
	// ErrNotRar means the file does not start with a rar signature.
	ErrNotRar = errors.New("not a rar archive")

	// ErrCorruptHeader means a rar block header could not be parsed.
	ErrCorruptHeader = errors.New("corrupt rar header")

	// ErrEncryptedHeaders means the rar headers, comment included, are
	// encrypted and cannot be read without the password.
	ErrEncryptedHeaders = errors.New("rar headers are encrypted")

	// ErrCompressedComment means the comment is stored compressed.
	ErrCompressedComment = errors.New("rar comment is compressed")
)

var (
	rar4Signature = []byte("Rar!\x1a\x07\x00")
	rar5Signature = []byte("Rar!\x1a\x07\x01\x00")
)

// commentName is the service block name rar uses for archive comments.
const commentName = "CMT"

// readRarComment walks the block headers of a rar archive looking for
// its comment. It never decompresses anything.
func readRarComment(r io.ReaderAt, size int64) (string, error) {
	sig := make([]byte, len(rar5Signature))
	n, err := r.ReadAt(sig, 0)
	if err != nil && err != io.EOF {
		return "", err
	}
	sig = sig[:n]

	switch {
	case bytes.Equal(sig, rar5Signature):
		return readRar5Comment(r, size, int64(len(rar5Signature)))
	case bytes.HasPrefix(sig, rar4Signature):
		return readRar4Comment(r, size, int64(len(rar4Signature)))
	}
	return "", ErrNotRar
}

// maxCommentSize bounds comment reads. WinRAR caps comments at 256 KiB.
const maxCommentSize = 256 << 10

// readSection reads exactly n bytes at off.
func readSection(r io.ReaderAt, off, n int64) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, off)
	if read == len(buf) {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		return nil, fmt.Errorf("%w: unexpected end of archive", ErrCorruptHeader)
	}
	return nil, err
}

// readComment reads comment data, refusing implausible sizes.
func readComment(r io.ReaderAt, off, n int64) (string, error) {
	if n > maxCommentSize {
		return "", fmt.Errorf("%w: comment of %d bytes", ErrCorruptHeader, n)
	}
	data, err := readSection(r, off, n)
	if err != nil {
		return "", err
	}
	return decodeComment(data), nil
}

// RAR 5 block types.
const (
	rar5BlockMain       = 1
	rar5BlockFile       = 2
	rar5BlockService    = 3
	rar5BlockEncryption = 4
	rar5BlockEnd        = 5
)

// RAR 5 header flags.
const (
	rar5FlagExtra = 0x0001
	rar5FlagData  = 0x0002
)

// RAR 5 file and service header flags.
const (
	rar5FileTime = 0x0002
	rar5FileCRC  = 0x0004
)

// rar5MaxHeaderSize is the format's upper bound on a block header.
const rar5MaxHeaderSize = 2 << 20

type rar5Block struct {
	typ      uint64
	name     string
	method   uint64
	dataOff  int64
	dataSize int64
}

func readRar5Comment(r io.ReaderAt, size, off int64) (string, error) {
	for off < size {
		b, err := readRar5Block(r, off)
		if err != nil {
			return "", err
		}

		switch b.typ {
		case rar5BlockEncryption:
			return "", ErrEncryptedHeaders
		case rar5BlockEnd:
			return "", nil
		case rar5BlockService:
			if b.name != commentName {
				break
			}
			if b.method != 0 {
				return "", ErrCompressedComment
			}
			return readComment(r, b.dataOff, b.dataSize)
		}

		off = b.dataOff + b.dataSize
	}
	return "", nil
}

// readRar5Block parses the block header at off. Layout:
//
//	crc32 uint32, size vint, type vint, flags vint,
//	[extra size vint], [data size vint], type specific fields...
func readRar5Block(r io.ReaderAt, off int64) (*rar5Block, error) {
	// CRC plus the longest possible size vint.
	head := make([]byte, 4+3)
	n, err := r.ReadAt(head, off)
	if err != nil && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	if len(head) < 5 {
		return nil, fmt.Errorf("%w: truncated block at offset %d", ErrCorruptHeader, off)
	}

	crc := binary.LittleEndian.Uint32(head)
	hsize, vlen, err := vint(head[4:])
	if err != nil {
		return nil, err
	}
	if hsize == 0 || hsize > rar5MaxHeaderSize {
		return nil, fmt.Errorf("%w: bad header size %d at offset %d", ErrCorruptHeader, hsize, off)
	}

	start := off + 4 + int64(vlen)
	data, err := readSection(r, start, int64(hsize))
	if err != nil {
		return nil, err
	}

	sum := crc32.NewIEEE()
	sum.Write(head[4 : 4+vlen])
	sum.Write(data)
	if sum.Sum32() != crc {
		return nil, fmt.Errorf("%w: header crc mismatch at offset %d", ErrCorruptHeader, off)
	}

	f := &fields{buf: data}
	b := &rar5Block{dataOff: start + int64(hsize)}
	b.typ = f.vint()
	flags := f.vint()
	if flags&rar5FlagExtra != 0 {
		f.vint()
	}
	if flags&rar5FlagData != 0 {
		b.dataSize = int64(f.vint())
	}

	if b.typ == rar5BlockFile || b.typ == rar5BlockService {
		fileFlags := f.vint()
		f.vint() // unpacked size
		f.vint() // attributes
		if fileFlags&rar5FileTime != 0 {
			f.skip(4)
		}
		if fileFlags&rar5FileCRC != 0 {
			f.skip(4)
		}
		compression := f.vint()
		f.vint() // host os
		nameLen := f.vint()
		b.name = string(f.bytes(nameLen))
		b.method = (compression >> 7) & 0x07
	}

	if f.err != nil || b.dataSize < 0 {
		return nil, fmt.Errorf("%w: malformed block at offset %d", ErrCorruptHeader, off)
	}
	return b, nil
}

// vint decodes a RAR 5 variable length integer: seven bits per byte,
// least significant group first, high bit set on all but the last byte.
func vint(buf []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(buf) && i < 10; i++ {
		v |= uint64(buf[i]&0x7f) << (7 * i)
		if buf[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: bad vint", ErrCorruptHeader)
}

// fields reads consecutive header fields, remembering the first error.
type fields struct {
	buf []byte
	pos int
	err error
}

func (f *fields) vint() uint64 {
	if f.err != nil {
		return 0
	}
	v, n, err := vint(f.buf[f.pos:])
	if err != nil {
		f.err = err
		return 0
	}
	f.pos += n
	return v
}

func (f *fields) bytes(n uint64) []byte {
	if f.err != nil {
		return nil
	}
	if n > uint64(len(f.buf)-f.pos) {
		f.err = ErrCorruptHeader
		return nil
	}
	b := f.buf[f.pos : f.pos+int(n)]
	f.pos += int(n)
	return b
}

func (f *fields) skip(n uint64) {
	f.bytes(n)
}

// RAR 1.5 to 4.x block types.
const (
	rar4BlockMain    = 0x73
	rar4BlockFile    = 0x74
	rar4BlockComment = 0x75
	rar4BlockSub     = 0x7a
	rar4BlockEnd     = 0x7b
)

// RAR 1.5 to 4.x flags.
const (
	rar4MainComment  = 0x0002
	rar4MainPassword = 0x0080
	rar4FileLarge    = 0x0100
	rar4LongBlock    = 0x8000
)

const (
	rar4BaseSize       = 7
	rar4MainSize       = 13
	rar4FileSize       = 32
	rar4CommentSubSize = 13
	rar4MethodStore    = 0x30
)

func readRar4Comment(r io.ReaderAt, size, off int64) (string, error) {
	for off+rar4BaseSize <= size {
		base, err := readSection(r, off, rar4BaseSize)
		if err != nil {
			return "", err
		}
		typ := base[2]
		flags := binary.LittleEndian.Uint16(base[3:])
		hsize := int64(binary.LittleEndian.Uint16(base[5:]))
		if hsize < rar4BaseSize {
			return "", fmt.Errorf("%w: bad header size %d at offset %d", ErrCorruptHeader, hsize, off)
		}

		hdr, err := readSection(r, off, hsize)
		if err != nil {
			return "", err
		}

		var add int64
		if flags&rar4LongBlock != 0 {
			if hsize < rar4BaseSize+4 {
				return "", fmt.Errorf("%w: short block at offset %d", ErrCorruptHeader, off)
			}
			add = int64(binary.LittleEndian.Uint32(hdr[7:]))
		}

		switch typ {
		case rar4BlockMain:
			if flags&rar4MainPassword != 0 {
				return "", ErrEncryptedHeaders
			}
			if flags&rar4MainComment != 0 && hsize > rar4MainSize {
				return embeddedRar4Comment(hdr[rar4MainSize:])
			}
		case rar4BlockFile, rar4BlockSub:
			if hsize < rar4FileSize {
				return "", fmt.Errorf("%w: short file header at offset %d", ErrCorruptHeader, off)
			}
			nameOff := int64(rar4FileSize)
			if flags&rar4FileLarge != 0 {
				if hsize < rar4FileSize+8 {
					return "", fmt.Errorf("%w: short file header at offset %d", ErrCorruptHeader, off)
				}
				add |= int64(binary.LittleEndian.Uint32(hdr[32:])) << 32
				nameOff += 8
			}
			nameLen := int64(binary.LittleEndian.Uint16(hdr[26:]))
			if nameOff+nameLen > hsize {
				return "", fmt.Errorf("%w: name overruns header at offset %d", ErrCorruptHeader, off)
			}
			if typ == rar4BlockSub && string(hdr[nameOff:nameOff+nameLen]) == commentName {
				if hdr[25] != rar4MethodStore {
					return "", ErrCompressedComment
				}
				return readComment(r, off+hsize, add)
			}
		case rar4BlockEnd:
			return "", nil
		}

		off += hsize + add
	}
	return "", nil
}

// embeddedRar4Comment reads the comment block that RAR 2.x archives
// store inside the main header:
//
//	crc uint16, type byte (0x75), flags uint16, size uint16,
//	unpacked size uint16, version byte, method byte, comment crc uint16
func embeddedRar4Comment(b []byte) (string, error) {
	if len(b) < rar4CommentSubSize || b[2] != rar4BlockComment {
		return "", fmt.Errorf("%w: malformed embedded comment", ErrCorruptHeader)
	}
	size := int(binary.LittleEndian.Uint16(b[5:]))
	if size < rar4CommentSubSize || size > len(b) {
		return "", fmt.Errorf("%w: malformed embedded comment", ErrCorruptHeader)
	}
	if b[10] != rar4MethodStore {
		return "", ErrCompressedComment
	}
	return decodeComment(b[rar4CommentSubSize:size]), nil
}
