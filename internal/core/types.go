// Package core defines core data structures with zero external dependencies.
package core

import "net/netip"

// LinkLayerKind identifies the link-layer framing of an entire capture.
// It is declared once in the capture's global header, never per record.
type LinkLayerKind uint8

const (
	// NullLoopback is the BSD loopback encapsulation (DLT_NULL, link type 0):
	// a 4-byte address-family field in the capturing host's byte order.
	NullLoopback LinkLayerKind = iota
	// Ethernet is DLT_EN10MB (link type 1): a 14-byte Ethernet header.
	Ethernet
	// LinuxCooked is DLT_LINUX_SLL (link type 113): a 16-byte cooked-capture
	// header with the protocol field at offset 14.
	LinuxCooked
)

func (k LinkLayerKind) String() string {
	switch k {
	case NullLoopback:
		return "null/loopback"
	case Ethernet:
		return "ethernet"
	case LinuxCooked:
		return "linux-cooked"
	default:
		return "unknown"
	}
}

// CaptureRecord is one entry of a capture file: the per-record header fields
// plus the captured frame bytes. The reader owns Data and every downstream
// view borrows it for the duration of one pass. Header fields never change
// after the read; the only writer of Data is the decryption step, which
// rewrites the UDP payload range in place before classification.
type CaptureRecord struct {
	TsSec       uint32 // timestamp, seconds
	TsFrac      uint32 // timestamp, fractional part (micro- or nanoseconds)
	CapturedLen uint32 // bytes stored in the capture
	OrigLen     uint32 // bytes on the wire
	Data        []byte // frame bytes, len == CapturedLen for an intact record
}

// DissectStatus is the outcome of link-layer dissection for one record.
type DissectStatus uint8

const (
	DissectOk DissectStatus = iota
	// DissectTruncated means a required sub-header did not fit. At the
	// link layer this indicates a corrupt capture, not one bad record.
	DissectTruncated
	// DissectNonIP means the record carries something other than IPv4.
	// Recoverable: the whole record is skipped.
	DissectNonIP
)

func (s DissectStatus) String() string {
	switch s {
	case DissectOk:
		return "ok"
	case DissectTruncated:
		return "truncated"
	case DissectNonIP:
		return "non-ip"
	default:
		return "unknown"
	}
}

// DissectedPacket is a normalized view into its parent CaptureRecord after
// link-layer framing has been stripped. It references a byte range of the
// record, it never copies.
//
// Invariant: Consumed + Remaining == CapturedLen of the parent record.
// Remaining is never negative; a would-be negative value is reclassified as
// DissectTruncated before it escapes the dissector.
type DissectedPacket struct {
	Record    *CaptureRecord
	Status    DissectStatus
	IPOffset  int // offset of the IP header within Record.Data
	Consumed  int // link-header bytes consumed (whole record when NonIP)
	Remaining int // bytes from the IP header to the end of the captured data
}

// IP returns the byte range from the IP header to the end of the record.
// Only meaningful when Status == DissectOk.
func (d *DissectedPacket) IP() []byte {
	return d.Record.Data[d.IPOffset : d.IPOffset+d.Remaining]
}

// UnwrappedPacket is the result of IP/UDP unwrapping: endpoint addressing in
// host byte order plus a payload byte range borrowed from the parent record.
//
// Invariant: the payload range lies entirely within the parent record.
type UnwrappedPacket struct {
	Record     *CaptureRecord
	SrcIP      netip.Addr
	DstIP      netip.Addr
	SrcPort    uint16
	DstPort    uint16
	Protocol   uint8 // IP protocol number (UDP == 17)
	PayloadOff int   // offset of the first byte after the UDP header
	PayloadLen int
}

// Payload returns the UDP payload bytes (candidate RTP data).
func (u *UnwrappedPacket) Payload() []byte {
	return u.Record.Data[u.PayloadOff : u.PayloadOff+u.PayloadLen]
}

// Channel identifies one leg of a stereo extraction.
type Channel uint8

const (
	ChannelA Channel = iota
	ChannelB
)

func (c Channel) String() string {
	if c == ChannelB {
		return "B"
	}
	return "A"
}

// SelectionMode controls the stereo channel selector.
type SelectionMode uint8

const (
	// ModeStereo extracts the two busiest streams as independent channels.
	ModeStereo SelectionMode = iota
	// ModeMixed forces single-source extraction regardless of stream count.
	ModeMixed
)

func (m SelectionMode) String() string {
	if m == ModeMixed {
		return "mixed"
	}
	return "stereo"
}

// SelectionReason records why the selector produced its assignment.
type SelectionReason uint8

const (
	// Selected means two distinct streams were chosen as channels A and B.
	Selected SelectionReason = iota
	// FallbackSingleStream means the original capture is used as a single
	// source, either by request (ModeMixed) or because only one stream exists.
	FallbackSingleStream
	// FallbackNoStreams means no RTP streams were observed. Callers must
	// treat this as a failure, not a degraded success.
	FallbackNoStreams
)

func (r SelectionReason) String() string {
	switch r {
	case Selected:
		return "selected"
	case FallbackSingleStream:
		return "fallback-single-stream"
	case FallbackNoStreams:
		return "fallback-no-streams"
	default:
		return "unknown"
	}
}

// StereoAssignment is the selector's verdict for one capture pass.
// ChannelA/ChannelB are only meaningful when Reason == Selected.
type StereoAssignment struct {
	Reason   SelectionReason
	ChannelA uint32 // SSRC assigned to channel A
	ChannelB uint32 // SSRC assigned to channel B
}
