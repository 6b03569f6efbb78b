// Package dissect normalizes capture records across link-layer framings and
// unwraps the IP/UDP envelope around candidate RTP payloads.
//
// All field reads go through bounds-checked slice accessors; a malformed or
// short capture yields a Truncated status instead of an out-of-bounds read.
package dissect

import (
	"encoding/binary"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	nullHeaderLen     = 4  // DLT_NULL address-family field
	ethernetHeaderLen = 14 // DLT_EN10MB
	cookedHeaderLen   = 16 // DLT_LINUX_SLL

	cookedProtoOffset = 14 // protocol field within the cooked header
	etherTypeOffset   = 12 // ethertype field within the Ethernet header

	etherTypeIPv4 = 0x0800
	afInet        = 2 // AF_INET in the loopback family field
)

// Dissect strips the link-layer framing from one capture record and returns
// a normalized view pointing at the IP header.
//
// Per-kind behavior:
//   - NonIP records report Consumed == CapturedLen so the caller skips the
//     whole record and stays aligned on the next one.
//   - A record too short to read the discriminating field is Truncated,
//     which the caller must treat as capture corruption, not a bad record.
//   - Remaining is CapturedLen minus the link header; a negative value is
//     reclassified as Truncated before it escapes.
func Dissect(rec *core.CaptureRecord, kind core.LinkLayerKind) core.DissectedPacket {
	switch kind {
	case core.NullLoopback:
		return dissectNull(rec)
	case core.LinuxCooked:
		return dissectCooked(rec)
	default:
		return dissectEthernet(rec)
	}
}

// dissectNull handles the BSD loopback encapsulation. The address-family
// field is written in the byte order of the capturing host, so AF_INET is
// accepted in either orientation.
func dissectNull(rec *core.CaptureRecord) core.DissectedPacket {
	if len(rec.Data) < nullHeaderLen {
		return truncated(rec)
	}
	family := binary.LittleEndian.Uint32(rec.Data[0:nullHeaderLen])
	if family != afInet && binary.BigEndian.Uint32(rec.Data[0:nullHeaderLen]) != afInet {
		return nonIP(rec)
	}
	return accept(rec, nullHeaderLen)
}

// dissectCooked handles Linux cooked captures (SLL). The 2-byte protocol
// field sits at a fixed offset and carries the ethertype in network order.
func dissectCooked(rec *core.CaptureRecord) core.DissectedPacket {
	if len(rec.Data) < cookedHeaderLen {
		return truncated(rec)
	}
	proto := binary.BigEndian.Uint16(rec.Data[cookedProtoOffset : cookedProtoOffset+2])
	if proto != etherTypeIPv4 {
		return nonIP(rec)
	}
	return accept(rec, cookedHeaderLen)
}

// dissectEthernet handles plain Ethernet frames.
func dissectEthernet(rec *core.CaptureRecord) core.DissectedPacket {
	if len(rec.Data) < ethernetHeaderLen {
		return truncated(rec)
	}
	etherType := binary.BigEndian.Uint16(rec.Data[etherTypeOffset : etherTypeOffset+2])
	if etherType != etherTypeIPv4 {
		return nonIP(rec)
	}
	return accept(rec, ethernetHeaderLen)
}

func accept(rec *core.CaptureRecord, linkLen int) core.DissectedPacket {
	remaining := int(rec.CapturedLen) - linkLen
	if remaining < 0 || linkLen+remaining > len(rec.Data) {
		return truncated(rec)
	}
	return core.DissectedPacket{
		Record:    rec,
		Status:    core.DissectOk,
		IPOffset:  linkLen,
		Consumed:  linkLen,
		Remaining: remaining,
	}
}

func nonIP(rec *core.CaptureRecord) core.DissectedPacket {
	return core.DissectedPacket{
		Record:   rec,
		Status:   core.DissectNonIP,
		Consumed: int(rec.CapturedLen),
	}
}

func truncated(rec *core.CaptureRecord) core.DissectedPacket {
	return core.DissectedPacket{Record: rec, Status: core.DissectTruncated}
}
