package pcap

import (
	"errors"
	"fmt"
	"io"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/core/dissect"
)

// ConvertToEthernet rewrites a capture into Ethernet framing, normalizing
// whatever link layer the source declares (typically Linux cooked captures
// from containerized taps). Only IPv4/UDP records survive the conversion:
// non-IP records are skipped whole, packets without a complete IP/UDP
// envelope are dropped. Returns the number of packets written.
//
// A truncated record aborts the conversion: the remainder of a corrupt
// capture cannot be re-framed because record boundaries are unreliable.
func ConvertToEthernet(src io.Reader, dst io.Writer) (int, error) {
	r, err := NewReader(src)
	if err != nil {
		return 0, err
	}
	w, err := NewStreamWriter(dst, r.Snaplen())
	if err != nil {
		return 0, err
	}

	written := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}

		dp := dissect.Dissect(rec, r.LinkType())
		switch dp.Status {
		case core.DissectNonIP:
			continue
		case core.DissectTruncated:
			return written, fmt.Errorf("%w: link header", core.ErrTruncatedRecord)
		}

		up, err := dissect.Unwrap(&dp)
		if err != nil {
			if errors.Is(err, core.ErrPacketTooShort) {
				continue
			}
			return written, err
		}
		if up.Protocol != dissect.ProtocolUDP {
			continue
		}

		if err := w.WritePacket(r.Time(rec), &up); err != nil {
			return written, err
		}
		written++
	}
}
