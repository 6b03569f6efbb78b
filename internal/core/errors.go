// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors. Call sites wrap these with %w and context.
var (
	// Capture-level format errors. Fatal before any record is processed.
	ErrBadCaptureHeader    = errors.New("extractaudio: malformed capture header")
	ErrUnsupportedLinkType = errors.New("extractaudio: unsupported link-layer type")

	// ErrTruncatedRecord means a record's declared length exceeds the bytes
	// that remain, or a required sub-header does not fit. Fatal at the
	// capture-framing level: the pass aborts and partial classifications
	// are discarded.
	ErrTruncatedRecord = errors.New("extractaudio: truncated capture record")

	// Packet-level errors. Recoverable: the packet is dropped, the pass
	// continues.
	ErrPacketTooShort = errors.New("extractaudio: packet too short")

	// ErrNoStreams means zero SSRCs were observed. Fatal to the extraction
	// request: there is nothing to extract.
	ErrNoStreams = errors.New("extractaudio: no RTP streams found")
)
