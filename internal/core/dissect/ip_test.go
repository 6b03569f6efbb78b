package dissect

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// makeIPv4UDP builds an IPv4 header (with optional IP options) followed by a
// UDP header and payload.
func makeIPv4UDP(optionLen int, srcPort, dstPort uint16, payload []byte) []byte {
	ipHdrLen := 20 + optionLen
	pkt := make([]byte, ipHdrLen+8+len(payload))

	pkt[0] = 0x40 | uint8(ipHdrLen/4) // version 4 + IHL
	binary.BigEndian.PutUint16(pkt[2:4], uint16(len(pkt)))
	pkt[8] = 64             // TTL
	pkt[9] = ProtocolUDP    // protocol
	copy(pkt[12:16], []byte{192, 168, 1, 1})
	copy(pkt[16:20], []byte{192, 168, 1, 2})

	udp := pkt[ipHdrLen:]
	binary.BigEndian.PutUint16(udp[0:2], srcPort)
	binary.BigEndian.PutUint16(udp[2:4], dstPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(8+len(payload)))
	copy(udp[8:], payload)
	return pkt
}

// dissected wraps a raw IP packet in an Ethernet record and dissects it.
func dissected(t *testing.T, ipPkt []byte) core.DissectedPacket {
	t.Helper()
	rec := makeRecord(makeEthernetFrame(etherTypeIPv4, ipPkt))
	dp := Dissect(rec, core.Ethernet)
	if dp.Status != core.DissectOk {
		t.Fatalf("setup: dissect status = %v", dp.Status)
	}
	return dp
}

func TestUnwrapBasic(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	dp := dissected(t, makeIPv4UDP(0, 5000, 5001, payload))

	up, err := Unwrap(&dp)
	if err != nil {
		t.Fatalf("Unwrap() error: %v", err)
	}
	if up.SrcPort != 5000 || up.DstPort != 5001 {
		t.Errorf("ports = %d→%d; want 5000→5001", up.SrcPort, up.DstPort)
	}
	if got := up.SrcIP.String(); got != "192.168.1.1" {
		t.Errorf("SrcIP = %s; want 192.168.1.1", got)
	}
	if got := up.DstIP.String(); got != "192.168.1.2" {
		t.Errorf("DstIP = %s; want 192.168.1.2", got)
	}
	if up.Protocol != ProtocolUDP {
		t.Errorf("Protocol = %d; want %d", up.Protocol, ProtocolUDP)
	}
	if got := up.Payload(); len(got) != len(payload) || got[0] != 0xDE {
		t.Errorf("Payload() = % x; want % x", got, payload)
	}
}

func TestUnwrapWithIPOptions(t *testing.T) {
	// 8 bytes of IP options: IHL = 7, UDP header shifts accordingly.
	payload := []byte{0x01, 0x02}
	dp := dissected(t, makeIPv4UDP(8, 4000, 4001, payload))

	up, err := Unwrap(&dp)
	if err != nil {
		t.Fatalf("Unwrap() error: %v", err)
	}
	if up.SrcPort != 4000 || up.DstPort != 4001 {
		t.Errorf("ports = %d→%d; want 4000→4001", up.SrcPort, up.DstPort)
	}
	if got := up.Payload(); len(got) != 2 || got[0] != 0x01 {
		t.Errorf("Payload() = % x; want % x", got, payload)
	}
}

func TestUnwrapShortForUDPHeader(t *testing.T) {
	// A full IP header but only 4 bytes where the 8-byte UDP header should
	// be: payload length < header length + 8 must be rejected without
	// reading past the payload boundary.
	pkt := makeIPv4UDP(0, 1, 2, nil)
	dp := dissected(t, pkt[:20+4])

	if _, err := Unwrap(&dp); !errors.Is(err, core.ErrPacketTooShort) {
		t.Fatalf("Unwrap() error = %v; want ErrPacketTooShort", err)
	}
}

func TestUnwrapBadIHL(t *testing.T) {
	// IHL below the minimum 20 bytes.
	pkt := makeIPv4UDP(0, 1, 2, nil)
	pkt[0] = 0x44 // IHL = 4 words = 16 bytes
	dp := dissected(t, pkt)

	if _, err := Unwrap(&dp); !errors.Is(err, core.ErrPacketTooShort) {
		t.Fatalf("Unwrap() error = %v; want ErrPacketTooShort", err)
	}
}

func TestUnwrapEmptyPayload(t *testing.T) {
	dp := dissected(t, makeIPv4UDP(0, 1, 2, nil))

	up, err := Unwrap(&dp)
	if err != nil {
		t.Fatalf("Unwrap() error: %v", err)
	}
	if up.PayloadLen != 0 {
		t.Errorf("PayloadLen = %d; want 0", up.PayloadLen)
	}
}

func TestUnwrapNonOkStatus(t *testing.T) {
	dp := core.DissectedPacket{Status: core.DissectNonIP}
	if _, err := Unwrap(&dp); err == nil {
		t.Fatal("Unwrap() on non-ok status should fail")
	}
}
