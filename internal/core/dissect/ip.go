package dissect

import (
	"encoding/binary"
	"net/netip"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	ipv4HeaderMinLen = 20
	ipv4HeaderMaxLen = 60
	udpHeaderLen     = 8

	// ProtocolUDP is the IP protocol number for UDP.
	ProtocolUDP = 17
)

// Unwrap locates the UDP header behind the variable-length IP header of a
// dissected packet and returns endpoint addressing plus the payload range.
//
// The IP header length comes from the header's IHL field (32-bit words * 4)
// and must fall in [20, 60]; the packet must have room for that header plus
// the fixed 8-byte UDP header. Violations return core.ErrPacketTooShort and
// the packet is dropped, the pass continues.
func Unwrap(dp *core.DissectedPacket) (core.UnwrappedPacket, error) {
	if dp.Status != core.DissectOk {
		return core.UnwrappedPacket{}, core.ErrPacketTooShort
	}
	data := dp.IP()
	if len(data) < ipv4HeaderMinLen {
		return core.UnwrappedPacket{}, core.ErrPacketTooShort
	}

	ipHdrLen := int(data[0]&0x0F) * 4
	if ipHdrLen < ipv4HeaderMinLen || ipHdrLen > ipv4HeaderMaxLen {
		return core.UnwrappedPacket{}, core.ErrPacketTooShort
	}
	if len(data) < ipHdrLen+udpHeaderLen {
		return core.UnwrappedPacket{}, core.ErrPacketTooShort
	}

	src, _ := netip.AddrFromSlice(data[12:16])
	dst, _ := netip.AddrFromSlice(data[16:20])

	udp := data[ipHdrLen : ipHdrLen+udpHeaderLen]
	up := core.UnwrappedPacket{
		Record:     dp.Record,
		SrcIP:      src,
		DstIP:      dst,
		SrcPort:    binary.BigEndian.Uint16(udp[0:2]),
		DstPort:    binary.BigEndian.Uint16(udp[2:4]),
		Protocol:   data[9],
		PayloadOff: dp.IPOffset + ipHdrLen + udpHeaderLen,
		PayloadLen: dp.Remaining - ipHdrLen - udpHeaderLen,
	}
	return up, nil
}
