package dissect

import (
	"encoding/binary"
	"testing"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// makeRecord wraps frame bytes in a CaptureRecord with a faithful header.
func makeRecord(data []byte) *core.CaptureRecord {
	return &core.CaptureRecord{
		CapturedLen: uint32(len(data)),
		OrigLen:     uint32(len(data)),
		Data:        data,
	}
}

// makeEthernetFrame builds an Ethernet header followed by payload.
func makeEthernetFrame(etherType uint16, payload []byte) []byte {
	frame := make([]byte, ethernetHeaderLen+len(payload))
	// MACs are irrelevant to dissection, leave them zero.
	binary.BigEndian.PutUint16(frame[etherTypeOffset:], etherType)
	copy(frame[ethernetHeaderLen:], payload)
	return frame
}

// makeCookedFrame builds a Linux cooked-capture header followed by payload.
func makeCookedFrame(proto uint16, payload []byte) []byte {
	frame := make([]byte, cookedHeaderLen+len(payload))
	binary.BigEndian.PutUint16(frame[cookedProtoOffset:], proto)
	copy(frame[cookedHeaderLen:], payload)
	return frame
}

// makeNullFrame builds a loopback family field followed by payload.
func makeNullFrame(family uint32, bigEndian bool, payload []byte) []byte {
	frame := make([]byte, nullHeaderLen+len(payload))
	if bigEndian {
		binary.BigEndian.PutUint32(frame[0:4], family)
	} else {
		binary.LittleEndian.PutUint32(frame[0:4], family)
	}
	copy(frame[nullHeaderLen:], payload)
	return frame
}

func TestDissectEthernetIPv4(t *testing.T) {
	payload := []byte{0x45, 0x00, 0x00, 0x14}
	rec := makeRecord(makeEthernetFrame(etherTypeIPv4, payload))

	dp := Dissect(rec, core.Ethernet)
	if dp.Status != core.DissectOk {
		t.Fatalf("Status = %v; want ok", dp.Status)
	}
	if dp.IPOffset != ethernetHeaderLen {
		t.Errorf("IPOffset = %d; want %d", dp.IPOffset, ethernetHeaderLen)
	}
	if dp.Consumed != ethernetHeaderLen {
		t.Errorf("Consumed = %d; want %d", dp.Consumed, ethernetHeaderLen)
	}
	if dp.Remaining != len(payload) {
		t.Errorf("Remaining = %d; want %d", dp.Remaining, len(payload))
	}
	if dp.Consumed+dp.Remaining != int(rec.CapturedLen) {
		t.Errorf("Consumed+Remaining = %d; want CapturedLen %d",
			dp.Consumed+dp.Remaining, rec.CapturedLen)
	}
	if got := dp.IP(); got[0] != 0x45 {
		t.Errorf("IP()[0] = 0x%02x; want 0x45", got[0])
	}
}

func TestDissectEthernetNonIP(t *testing.T) {
	// ARP ethertype: the whole record must be consumed so the caller can
	// skip it and stay aligned on the next one.
	rec := makeRecord(makeEthernetFrame(0x0806, []byte{1, 2, 3, 4}))

	dp := Dissect(rec, core.Ethernet)
	if dp.Status != core.DissectNonIP {
		t.Fatalf("Status = %v; want non-ip", dp.Status)
	}
	if dp.Consumed != int(rec.CapturedLen) {
		t.Errorf("Consumed = %d; want whole record %d", dp.Consumed, rec.CapturedLen)
	}
}

func TestDissectEthernetTooShort(t *testing.T) {
	rec := makeRecord([]byte{0x00, 0x01, 0x02})

	dp := Dissect(rec, core.Ethernet)
	if dp.Status != core.DissectTruncated {
		t.Fatalf("Status = %v; want truncated", dp.Status)
	}
}

func TestDissectCookedIPv4(t *testing.T) {
	payload := []byte{0x45, 0x00}
	rec := makeRecord(makeCookedFrame(etherTypeIPv4, payload))

	dp := Dissect(rec, core.LinuxCooked)
	if dp.Status != core.DissectOk {
		t.Fatalf("Status = %v; want ok", dp.Status)
	}
	if dp.IPOffset != cookedHeaderLen {
		t.Errorf("IPOffset = %d; want %d", dp.IPOffset, cookedHeaderLen)
	}
	if dp.Remaining != len(payload) {
		t.Errorf("Remaining = %d; want %d", dp.Remaining, len(payload))
	}
}

func TestDissectCookedNonIP(t *testing.T) {
	rec := makeRecord(makeCookedFrame(0x86DD, make([]byte, 40)))

	dp := Dissect(rec, core.LinuxCooked)
	if dp.Status != core.DissectNonIP {
		t.Fatalf("Status = %v; want non-ip", dp.Status)
	}
	if dp.Consumed != int(rec.CapturedLen) {
		t.Errorf("Consumed = %d; want whole record %d", dp.Consumed, rec.CapturedLen)
	}
}

func TestDissectCookedTooShort(t *testing.T) {
	// One byte short of the cooked header: cannot even read the protocol
	// field, so the capture is corrupt.
	rec := makeRecord(make([]byte, cookedHeaderLen-1))

	dp := Dissect(rec, core.LinuxCooked)
	if dp.Status != core.DissectTruncated {
		t.Fatalf("Status = %v; want truncated", dp.Status)
	}
}

func TestDissectNullLoopback(t *testing.T) {
	for _, bigEndian := range []bool{false, true} {
		payload := []byte{0x45, 0x00, 0x00, 0x14}
		rec := makeRecord(makeNullFrame(afInet, bigEndian, payload))

		dp := Dissect(rec, core.NullLoopback)
		if dp.Status != core.DissectOk {
			t.Fatalf("bigEndian=%v: Status = %v; want ok", bigEndian, dp.Status)
		}
		if dp.IPOffset != nullHeaderLen {
			t.Errorf("bigEndian=%v: IPOffset = %d; want %d", bigEndian, dp.IPOffset, nullHeaderLen)
		}
	}
}

func TestDissectNullNonINET(t *testing.T) {
	// AF_INET6 on most platforms.
	rec := makeRecord(makeNullFrame(10, false, make([]byte, 40)))

	dp := Dissect(rec, core.NullLoopback)
	if dp.Status != core.DissectNonIP {
		t.Fatalf("Status = %v; want non-ip", dp.Status)
	}
	if dp.Consumed != int(rec.CapturedLen) {
		t.Errorf("Consumed = %d; want whole record %d", dp.Consumed, rec.CapturedLen)
	}
}

func TestDissectNullTooShort(t *testing.T) {
	rec := makeRecord([]byte{0x02, 0x00})

	dp := Dissect(rec, core.NullLoopback)
	if dp.Status != core.DissectTruncated {
		t.Fatalf("Status = %v; want truncated", dp.Status)
	}
}

func TestDissectNegativeRemaining(t *testing.T) {
	// Declared captured length smaller than the link header that was
	// actually present: remaining would go negative, which must be
	// reclassified as truncated before the value escapes.
	frame := makeEthernetFrame(etherTypeIPv4, []byte{0x45})
	rec := &core.CaptureRecord{
		CapturedLen: ethernetHeaderLen - 2,
		OrigLen:     uint32(len(frame)),
		Data:        frame,
	}

	dp := Dissect(rec, core.Ethernet)
	if dp.Status != core.DissectTruncated {
		t.Fatalf("Status = %v; want truncated", dp.Status)
	}
	if dp.Remaining < 0 {
		t.Errorf("Remaining = %d; must never be negative", dp.Remaining)
	}
}
