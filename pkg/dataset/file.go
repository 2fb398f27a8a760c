package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"rankidx/pkg/common"
)

// Flat binary array layout:
// [magic 4B] [count 8B] [key 8B]*count [CRC32 4B over everything before it]

const (
	fileMagic  = 0x52494458 // "RIDX"
	headerSize = 4 + 8
)

// ErrCorruptFile reports a key file whose framing or checksum is invalid.
var ErrCorruptFile = errors.New("dataset: corrupt key file")

// WriteFile persists keys as a little-endian array with a CRC32 trailer.
func WriteFile(path string, keys []common.KeyType) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	sum := crc32.NewIEEE()
	w := io.MultiWriter(buf, sum)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], fileMagic)
	binary.LittleEndian.PutUint64(header[4:12], uint64(len(keys)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	kb := make([]byte, 8)
	for _, key := range keys {
		binary.LittleEndian.PutUint64(kb, uint64(key))
		if _, err := w.Write(kb); err != nil {
			return err
		}
	}

	trailer := make([]byte, 4)
	binary.LittleEndian.PutUint32(trailer, sum.Sum32())
	if _, err := buf.Write(trailer); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadFile loads a key array written by WriteFile, verifying the checksum.
func ReadFile(path string) ([]common.KeyType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptFile)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != fileMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptFile)
	}

	count := binary.LittleEndian.Uint64(data[4:12])
	if count > uint64(len(data))/8 || uint64(len(data)) != headerSize+8*count+4 {
		return nil, fmt.Errorf("%w: length mismatch", ErrCorruptFile)
	}

	body := data[:len(data)-4]
	stored := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != stored {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptFile)
	}

	keys := make([]common.KeyType, count)
	for i := range keys {
		keys[i] = common.KeyType(binary.LittleEndian.Uint64(data[headerSize+8*i:]))
	}
	return keys, nil
}
