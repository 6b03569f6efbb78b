// Package session orchestrates one capture pass: record reading, link-layer
// dissection, IP/UDP unwrapping, RTP classification and stereo channel
// selection, plus the handoff to the external codec and decryption
// collaborators.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/core/dissect"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
	"github.com/igorolhovskiy/rtpproxy/internal/rtp"
)

// Stats carries the conservation counts of one pass:
//
//	TotalRecords == NonIP + Dropped + ShortRTP + sum of stream packet counts
//
// A pass that aborts on truncation reports no stats at all; partial
// classifications are discarded, not surfaced as valid.
type Stats struct {
	LinkType     core.LinkLayerKind
	TotalRecords int
	NonIP        int // whole records skipped as non-IPv4
	Dropped      int // packets without a complete IP/UDP envelope, or non-UDP
	ShortRTP     int // UDP payloads shorter than the fixed RTP header
}

// passData is everything one pass accumulates. The packet and timestamp
// slices are index-aligned; stream packet indices point into them.
type passData struct {
	packets []core.UnwrappedPacket
	times   []time.Time
	streams *rtp.StreamMap
	stats   Stats
}

// checkEvery is how often the record loop polls for cancellation.
const checkEvery = 256

// runPass reads a capture start to finish and classifies its RTP packets.
// Recoverable conditions (non-IP records, malformed single packets) are
// absorbed here; structural corruption aborts with a typed error.
func runPass(ctx context.Context, path string, dec Decryptor, ch core.Channel) (*passData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	r, err := pcap.NewReader(f)
	if err != nil {
		return nil, err
	}

	pd := &passData{streams: rtp.NewStreamMap()}
	pd.stats.LinkType = r.LinkType()

	for {
		if pd.stats.TotalRecords%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		pd.stats.TotalRecords++

		dp := dissect.Dissect(rec, r.LinkType())
		switch dp.Status {
		case core.DissectNonIP:
			pd.stats.NonIP++
			continue
		case core.DissectTruncated:
			// Link-layer truncation means the capture itself is corrupt.
			return nil, fmt.Errorf("%w: record %d", core.ErrTruncatedRecord, pd.stats.TotalRecords)
		}

		up, err := dissect.Unwrap(&dp)
		if err != nil {
			if errors.Is(err, core.ErrPacketTooShort) {
				pd.stats.Dropped++
				continue
			}
			return nil, err
		}
		if up.Protocol != dissect.ProtocolUDP {
			pd.stats.Dropped++
			continue
		}

		if dec != nil {
			if err := decryptInPlace(dec, ch, &up); err != nil {
				return nil, fmt.Errorf("decrypt packet %d: %w", pd.stats.TotalRecords, err)
			}
		}

		idx := len(pd.packets)
		pd.packets = append(pd.packets, up)
		pd.times = append(pd.times, r.Time(rec))
		pd.streams.Add(idx, &pd.packets[idx])
	}

	pd.stats.ShortRTP = pd.streams.Dropped()
	return pd, nil
}

// decryptInPlace runs the decryption collaborator over one payload before it
// reaches the classifier. The plaintext can only shrink (authentication tags
// strip off the tail), so it is written back into the borrowed payload range.
func decryptInPlace(dec Decryptor, ch core.Channel, up *core.UnwrappedPacket) error {
	plain, err := dec.Decrypt(ch, up.Payload())
	if err != nil {
		return err
	}
	if len(plain) > up.PayloadLen {
		return fmt.Errorf("decrypted payload grew from %d to %d bytes", up.PayloadLen, len(plain))
	}
	copy(up.Record.Data[up.PayloadOff:], plain)
	up.PayloadLen = len(plain)
	return nil
}
