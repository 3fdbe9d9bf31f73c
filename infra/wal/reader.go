package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"
)

type ReplayHandler func(*Record) error

// Replay streams every record in dir to fn in file order and returns the
// highest sequence seen. Appends from concurrent operations may land slightly
// out of sequence order across books; callers that need sequence order must
// sort. A torn tail frame (clean EOF mid-record) ends replay without error.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	paths, err := segmentPaths(dir)
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return lastSeq, err
		}

		for {
			rec, err := readRecord(f)
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				// Torn write at the tail of the newest segment.
				break
			}
			if err != nil {
				_ = f.Close()
				return lastSeq, fmt.Errorf("replay %s: %w", path, err)
			}

			if rec.Seq > lastSeq {
				lastSeq = rec.Seq
			}
			if err := fn(rec); err != nil {
				_ = f.Close()
				return lastSeq, err
			}
		}
		_ = f.Close()
	}
	return lastSeq, nil
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint32(header[17:21])
	body := make([]byte, int(payloadLen)+4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	payload := body[:payloadLen]
	sum := binary.BigEndian.Uint32(body[payloadLen:])
	if crc32.ChecksumIEEE(append(header, payload...)) != sum {
		return nil, fmt.Errorf("crc mismatch")
	}

	return &Record{
		Type: RecordType(header[0]),
		Seq:  binary.BigEndian.Uint64(header[1:9]),
		Time: int64(binary.BigEndian.Uint64(header[9:17])),
		Data: payload,
	}, nil
}
