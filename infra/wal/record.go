package wal

import "time"

// RecordType tags the committed operation a journal record describes.
type RecordType uint8

const (
	RecordRegister RecordType = iota
	RecordPlace
	RecordCancel
)

// Record is an immutable journal entry. Data carries the JSON operation
// payload produced by the service layer.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
