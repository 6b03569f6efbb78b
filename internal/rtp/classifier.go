// Package rtp groups unwrapped UDP payloads into RTP streams by SSRC and
// selects which streams become the stereo channels of an extraction.
package rtp

import (
	"encoding/binary"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	// rtpHeaderLen is the fixed RTP header size (RFC 3550 §5.1).
	rtpHeaderLen = 12
	// ssrcOffset is the position of the SSRC field within the RTP header.
	ssrcOffset = 8
)

// Stream is one RTP stream: an SSRC plus the indices of its packets in the
// order they appeared in the capture. Streams are created on first sight of
// a new SSRC and only ever appended to, never merged or split.
type Stream struct {
	SSRC      uint32
	FirstSeen int   // classification order of the stream's first packet
	Packets   []int // indices into the classified packet sequence
}

// Count returns the stream's running packet count.
func (s *Stream) Count() int { return len(s.Packets) }

// StreamMap is the result of classification: SSRC partition of one capture
// pass, retaining the first-seen order of streams for deterministic
// tie-breaking in the selector.
type StreamMap struct {
	streams map[uint32]*Stream
	order   []uint32 // SSRCs in first-seen order
	dropped int      // payloads shorter than the fixed RTP header
}

// NewStreamMap returns an empty stream map.
func NewStreamMap() *StreamMap {
	return &StreamMap{streams: make(map[uint32]*Stream)}
}

// Add classifies one unwrapped packet, identified by its index in the pass's
// packet sequence. Payloads shorter than the fixed RTP header are not RTP:
// they are counted as dropped and do not join any stream.
func (m *StreamMap) Add(idx int, pkt *core.UnwrappedPacket) {
	payload := pkt.Payload()
	if len(payload) < rtpHeaderLen {
		m.dropped++
		return
	}
	ssrc := binary.BigEndian.Uint32(payload[ssrcOffset : ssrcOffset+4])
	s, ok := m.streams[ssrc]
	if !ok {
		s = &Stream{SSRC: ssrc, FirstSeen: len(m.order)}
		m.streams[ssrc] = s
		m.order = append(m.order, ssrc)
	}
	s.Packets = append(s.Packets, idx)
}

// Get returns the stream for an SSRC, or nil.
func (m *StreamMap) Get(ssrc uint32) *Stream { return m.streams[ssrc] }

// Len returns the number of distinct streams.
func (m *StreamMap) Len() int { return len(m.order) }

// Dropped returns how many payloads were too short to be RTP.
func (m *StreamMap) Dropped() int { return m.dropped }

// SSRCs returns the stream identifiers in first-seen order.
func (m *StreamMap) SSRCs() []uint32 { return m.order }

// PacketTotal returns the sum of packet counts over all streams.
func (m *StreamMap) PacketTotal() int {
	total := 0
	for _, s := range m.streams {
		total += s.Count()
	}
	return total
}

// Classify partitions a packet sequence by SSRC. It performs no reordering,
// deduplication or sequence-number validation.
func Classify(packets []core.UnwrappedPacket) *StreamMap {
	m := NewStreamMap()
	for i := range packets {
		m.Add(i, &packets[i])
	}
	return m
}
