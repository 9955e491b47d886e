package protocol_test

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/epdlink/panel-command/pkg/protocol"
)

func patternBuffer(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

var _ = Describe("BuildPackets", func() {
	It("rejects a non-positive chunk size", func() {
		_, err := protocol.BuildPackets([]byte{1, 2, 3}, 0)
		Expect(err).To(HaveOccurred())
	})

	It("produces only a header for an empty buffer", func() {
		plan, err := protocol.BuildPackets(nil, 200)
		Expect(err).ToNot(HaveOccurred())
		Expect(plan.Packets).To(HaveLen(1))
		Expect(plan.DataPacketCount()).To(Equal(0))
		Expect(plan.FileLength).To(Equal(0))
	})

	It("splits a 450 byte buffer into 200+200+50", func() {
		plan, err := protocol.BuildPackets(patternBuffer(450), 200)
		Expect(err).ToNot(HaveOccurred())
		Expect(plan.DataPacketCount()).To(Equal(3))
		Expect(plan.Packets[1]).To(HaveLen(200))
		Expect(plan.Packets[2]).To(HaveLen(200))
		Expect(plan.Packets[3]).To(HaveLen(50))

		header := plan.Packets[0]
		Expect(header).To(HaveLen(protocol.HeaderLength))
		Expect(header[2:6]).To(Equal([]byte{0x00, 0x00, 0x00, 0x03}))
		Expect(header[6:10]).To(Equal([]byte{0x00, 0x00, 0x01, 0xc2}))
	})

	It("leaves the encryption, compression, room and group fields zero", func() {
		plan, err := protocol.BuildPackets(patternBuffer(10), 200)
		Expect(err).ToNot(HaveOccurred())
		Expect(plan.Packets[0][10:14]).To(Equal([]byte{0, 0, 0, 0}))
	})

	DescribeTable("header fields and round trip",
		func(fileLength, chunkSize int) {
			buf := patternBuffer(fileLength)
			plan, err := protocol.BuildPackets(buf, chunkSize)
			Expect(err).ToNot(HaveOccurred())

			wantCount := (fileLength + chunkSize - 1) / chunkSize
			Expect(plan.DataPacketCount()).To(Equal(wantCount))

			header := plan.Packets[0]
			Expect(binary.BigEndian.Uint32(header[2:6])).To(Equal(uint32(wantCount)))
			Expect(binary.BigEndian.Uint32(header[6:10])).To(Equal(uint32(fileLength)))

			var reassembled []byte
			for i, packet := range plan.Packets[1:] {
				if i != plan.DataPacketCount()-1 {
					Expect(packet).To(HaveLen(chunkSize))
				}
				reassembled = append(reassembled, packet...)
			}
			Expect(bytes.Equal(reassembled, buf)).To(BeTrue())
		},
		Entry("one byte", 1, 200),
		Entry("one short packet", 50, 200),
		Entry("exact chunk", 200, 200),
		Entry("exact multiple", 600, 200),
		Entry("tiny chunks", 450, 7),
		Entry("full panel payload", 2*((400*300)/8), 200),
		Entry("several megabytes", 3<<20, 200),
	)
})

var _ = Describe("ResultFromStatus", func() {
	It("maps the documented status bytes", func() {
		Expect(protocol.ResultFromStatus(protocol.StatusSuccess).Code).To(Equal(protocol.ResultSuccess))
		Expect(protocol.ResultFromStatus(protocol.StatusFailure).Code).To(Equal(protocol.ResultDeviceFailure))
		Expect(protocol.ResultFromStatus(protocol.StatusImageTooLarge).Code).To(Equal(protocol.ResultImageTooLarge))
	})

	It("retains the raw byte of an unknown code", func() {
		result := protocol.ResultFromStatus(0x2a)
		Expect(result.Code).To(Equal(protocol.ResultUnknownCode))
		Expect(result.Status).To(Equal(byte(0x2a)))
		Expect(result.String()).To(ContainSubstring("0x2a"))
	})
})
