package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/chronotext/chronotext/corpus"
)

// Position lists are stored as a version byte followed by an
// s2-compressed payload. The payload is a uvarint count and one record
// per position: signed-varint document-id delta from the previous
// record, then sentence id, begin and end as signed varints, then the
// source tag as a uvarint length prefix and bytes.
const codecVersion byte = 0x01

// EncodePositions serializes a position list for storage.
func EncodePositions(list corpus.PositionList) []byte {
	payload := make([]byte, 0, 16*len(list)+binary.MaxVarintLen64)
	payload = binary.AppendUvarint(payload, uint64(len(list)))

	var prevDoc int64
	for _, p := range list {
		payload = binary.AppendVarint(payload, int64(p.DocumentID)-prevDoc)
		prevDoc = int64(p.DocumentID)
		payload = binary.AppendVarint(payload, int64(p.SentenceID))
		payload = binary.AppendVarint(payload, int64(p.BeginChar))
		payload = binary.AppendVarint(payload, int64(p.EndChar))
		payload = binary.AppendUvarint(payload, uint64(len(p.Source)))
		payload = append(payload, p.Source...)
	}

	compressed := s2.Encode(nil, payload)
	out := make([]byte, 1+len(compressed))
	out[0] = codecVersion
	copy(out[1:], compressed)
	return out
}

// DecodePositions deserializes a stored position-list blob. Corruption
// is reported as an error for the caller to classify.
func DecodePositions(blob []byte) (corpus.PositionList, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("position list: empty blob")
	}
	if blob[0] != codecVersion {
		return nil, fmt.Errorf("position list: unknown version 0x%02x", blob[0])
	}
	payload, err := s2.Decode(nil, blob[1:])
	if err != nil {
		return nil, fmt.Errorf("position list: decompress: %w", err)
	}

	count, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, fmt.Errorf("position list: truncated count")
	}
	payload = payload[n:]

	list := make(corpus.PositionList, 0, count)
	var prevDoc int64
	for i := uint64(0); i < count; i++ {
		var p corpus.Position

		delta, n := binary.Varint(payload)
		if n <= 0 {
			return nil, fmt.Errorf("position list: truncated record %d", i)
		}
		payload = payload[n:]
		prevDoc += delta
		p.DocumentID = int32(prevDoc)

		fields := [3]*int32{&p.SentenceID, &p.BeginChar, &p.EndChar}
		for _, f := range fields {
			v, n := binary.Varint(payload)
			if n <= 0 {
				return nil, fmt.Errorf("position list: truncated record %d", i)
			}
			payload = payload[n:]
			*f = int32(v)
		}

		srcLen, n := binary.Uvarint(payload)
		if n <= 0 || uint64(len(payload)-n) < srcLen {
			return nil, fmt.Errorf("position list: truncated source tag in record %d", i)
		}
		payload = payload[n:]
		p.Source = string(payload[:srcLen])
		payload = payload[srcLen:]

		list = append(list, p)
	}
	return list, nil
}
