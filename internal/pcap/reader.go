// Package pcap reads and writes pcap capture files.
//
// The reader is deliberately hand-rolled: extraction depends on byte-exact
// truncation and skip semantics at record boundaries (a corrupt record header
// must abort the pass, a non-IP record must advance exactly one record), so
// record framing is parsed here rather than delegated to a packet library.
package pcap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	globalHeaderLen = 24
	recordHeaderLen = 16

	// Magic numbers, microsecond and nanosecond timestamp variants.
	magicMicro = 0xa1b2c3d4
	magicNano  = 0xa1b23c4d

	// Link types from the pcap global header.
	linkTypeNull     = 0
	linkTypeEthernet = 1
	linkTypeCooked   = 113

	// maxCapturedLen bounds a single record's declared captured length.
	// A larger value means the length field is garbage, i.e. corruption.
	maxCapturedLen = 1 << 26
)

// Reader iterates the records of one pcap capture. It owns the record
// buffers it hands out; downstream views borrow them for the current pass.
type Reader struct {
	r        io.Reader
	order    binary.ByteOrder
	linkType core.LinkLayerKind
	snaplen  uint32
	nanos    bool
}

// NewReader parses the 24-byte pcap global header and prepares record
// iteration. The magic number fixes the file's byte order and timestamp
// resolution; the link type must be one of null/loopback, Ethernet or
// Linux cooked, anything else is rejected before any record is read.
func NewReader(r io.Reader) (*Reader, error) {
	var hdr [globalHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: global header: %v", core.ErrBadCaptureHeader, err)
	}

	rd := &Reader{r: r}
	magic := binary.LittleEndian.Uint32(hdr[0:4])
	switch magic {
	case magicMicro:
		rd.order = binary.LittleEndian
	case magicNano:
		rd.order = binary.LittleEndian
		rd.nanos = true
	default:
		magic = binary.BigEndian.Uint32(hdr[0:4])
		switch magic {
		case magicMicro:
			rd.order = binary.BigEndian
		case magicNano:
			rd.order = binary.BigEndian
			rd.nanos = true
		default:
			return nil, fmt.Errorf("%w: bad magic 0x%08x", core.ErrBadCaptureHeader, magic)
		}
	}

	rd.snaplen = rd.order.Uint32(hdr[16:20])
	network := rd.order.Uint32(hdr[20:24])
	switch network {
	case linkTypeNull:
		rd.linkType = core.NullLoopback
	case linkTypeEthernet:
		rd.linkType = core.Ethernet
	case linkTypeCooked:
		rd.linkType = core.LinuxCooked
	default:
		return nil, fmt.Errorf("%w: link type %d", core.ErrUnsupportedLinkType, network)
	}
	return rd, nil
}

// LinkType returns the capture-wide link-layer kind.
func (r *Reader) LinkType() core.LinkLayerKind { return r.linkType }

// Snaplen returns the capture's snapshot length.
func (r *Reader) Snaplen() uint32 { return r.snaplen }

// Next returns the next capture record, or io.EOF cleanly at a record
// boundary. A short record header or body yields core.ErrTruncatedRecord:
// the capture itself is corrupt and the pass must abort, because the next
// record's offset depends on this record's declared length.
func (r *Reader) Next() (*core.CaptureRecord, error) {
	var hdr [recordHeaderLen]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: record header: %v", core.ErrTruncatedRecord, err)
	}

	rec := &core.CaptureRecord{
		TsSec:       r.order.Uint32(hdr[0:4]),
		TsFrac:      r.order.Uint32(hdr[4:8]),
		CapturedLen: r.order.Uint32(hdr[8:12]),
		OrigLen:     r.order.Uint32(hdr[12:16]),
	}
	if rec.CapturedLen > maxCapturedLen {
		return nil, fmt.Errorf("%w: captured length %d", core.ErrTruncatedRecord, rec.CapturedLen)
	}

	rec.Data = make([]byte, rec.CapturedLen)
	if _, err := io.ReadFull(r.r, rec.Data); err != nil {
		return nil, fmt.Errorf("%w: record body: %v", core.ErrTruncatedRecord, err)
	}
	return rec, nil
}

// Time converts a record's timestamp fields using the capture's declared
// fractional resolution.
func (r *Reader) Time(rec *core.CaptureRecord) time.Time {
	if r.nanos {
		return time.Unix(int64(rec.TsSec), int64(rec.TsFrac))
	}
	return time.Unix(int64(rec.TsSec), int64(rec.TsFrac)*1000)
}

// IsFatal reports whether an error from a capture pass is one of the
// structural conditions that abort processing.
func IsFatal(err error) bool {
	return errors.Is(err, core.ErrBadCaptureHeader) ||
		errors.Is(err, core.ErrUnsupportedLinkType) ||
		errors.Is(err, core.ErrTruncatedRecord)
}
