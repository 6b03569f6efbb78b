package session

import (
	"context"
	"time"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/rtp"
)

// Report describes a capture without extracting anything.
type Report struct {
	Stats   Stats
	Streams []StreamReport
	// Preview is what the selector would decide for this capture in the
	// extractor's configured mode.
	Preview core.StereoAssignment
}

// StreamReport is the per-stream slice of a Report.
type StreamReport struct {
	SSRC     uint32
	Packets  int
	First    time.Time
	Last     time.Time
	Duration time.Duration
}

// Analyze runs a classification pass and reports per-stream packet counts,
// time spans and the selection preview. Nothing is written.
func (e *Extractor) Analyze(ctx context.Context, capturePath string) (*Report, error) {
	mode, err := e.cfg.SelectionMode()
	if err != nil {
		return nil, err
	}

	pd, err := runPass(ctx, capturePath, e.dec, e.leg)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Stats:   pd.stats,
		Preview: rtp.Select(pd.streams, mode),
	}
	for _, ssrc := range pd.streams.SSRCs() {
		s := pd.streams.Get(ssrc)
		sr := StreamReport{SSRC: s.SSRC, Packets: s.Count()}
		if s.Count() > 0 {
			sr.First = pd.times[s.Packets[0]]
			sr.Last = pd.times[s.Packets[s.Count()-1]]
			sr.Duration = sr.Last.Sub(sr.First)
		}
		rep.Streams = append(rep.Streams, sr)
	}
	return rep, nil
}
