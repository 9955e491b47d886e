package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderLength is the fixed size of the transfer header packet.
	HeaderLength = 14

	// DefaultChunkSize is safe for a negotiated MTU of 247 bytes (ATT write overhead is 3
	// bytes). Callers negotiating a smaller MTU must pick chunkSize <= mtu-3 themselves.
	DefaultChunkSize = 200

	opTypeImage = 0x00 // regular image upload
	sideA       = 0x00 // flooding/side selector
)

// TransferPlan is the ordered packet sequence for one upload: a header packet followed by the
// encoded payload split into chunkSize slices. Plans are single use and discarded once the
// transfer concludes.
type TransferPlan struct {
	FileLength int
	Packets    [][]byte // Packets[0] is the header; the rest are data slices in send order.
}

// DataPacketCount returns the number of data packets, excluding the header.
func (p *TransferPlan) DataPacketCount() int {
	return len(p.Packets) - 1
}

// BuildPackets splits encoded into a TransferPlan. The header is 14 bytes with big-endian
// multi-byte fields:
//
//	offset 0     operation type (0x00 regular image)
//	offset 1     flooding/side selector (0x00 side A)
//	offset 2-5   data packet count, ceil(len/chunkSize)
//	offset 6-9   file length before encryption
//	offset 10    encryption flag (always 0)
//	offset 11    compression flag (always 0)
//	offset 12    meeting room id (always 0)
//	offset 13    group id (always 0)
//
// Data packets carry no per-packet header; the panel reassembles them in arrival order.
func BuildPackets(encoded []byte, chunkSize int) (*TransferPlan, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("protocol: invalid chunk size %d", chunkSize)
	}

	count := (len(encoded) + chunkSize - 1) / chunkSize

	header := make([]byte, HeaderLength)
	header[0] = opTypeImage
	header[1] = sideA
	binary.BigEndian.PutUint32(header[2:6], uint32(count))
	binary.BigEndian.PutUint32(header[6:10], uint32(len(encoded)))
	// Offsets 10-13 (encryption, compression, meeting room, group) stay zero.

	packets := make([][]byte, 0, count+1)
	packets = append(packets, header)
	for offset := 0; offset < len(encoded); offset += chunkSize {
		end := offset + chunkSize
		if end > len(encoded) {
			end = len(encoded)
		}
		packets = append(packets, encoded[offset:end])
	}

	return &TransferPlan{FileLength: len(encoded), Packets: packets}, nil
}
