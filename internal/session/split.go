package session

import (
	"context"
	"fmt"
	"os"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// Split writes one Ethernet-framed pcap per observed SSRC, named
// prefix_0x<ssrc>.pcap, and returns the created paths in first-seen stream
// order. Partially written files are removed when the split fails midway.
func (e *Extractor) Split(ctx context.Context, capturePath, outputPrefix string) ([]string, error) {
	pd, err := runPass(ctx, capturePath, e.dec, e.leg)
	if err != nil {
		return nil, err
	}
	if pd.streams.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrNoStreams, capturePath)
	}

	var written []string
	cleanup := func() {
		for _, p := range written {
			os.Remove(p)
		}
	}

	for _, ssrc := range pd.streams.SSRCs() {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		s := pd.streams.Get(ssrc)
		path := fmt.Sprintf("%s_0x%08x.pcap", outputPrefix, ssrc)
		if err := writeStreamPcap(path, pd, s); err != nil {
			cleanup()
			return nil, err
		}
		e.log.WithFields(map[string]interface{}{
			"ssrc":    fmt.Sprintf("0x%08x", ssrc),
			"packets": s.Count(),
			"path":    path,
		}).Info("stream written")
		written = append(written, path)
	}
	return written, nil
}
