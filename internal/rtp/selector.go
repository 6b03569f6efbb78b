package rtp

import (
	"sort"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// Select applies the channel-selection policy over a classified stream map.
//
// Policy, in order:
//   - no streams: FallbackNoStreams (the caller must fail the request);
//   - ModeMixed: FallbackSingleStream regardless of stream count;
//   - exactly one stream: FallbackSingleStream;
//   - otherwise rank streams by packet count descending, ties broken by
//     first-seen order, and take the top two as channels A and B. Streams
//     beyond the top two are discarded.
//
// Select is a pure function of its inputs: identical stream maps yield
// identical assignments.
func Select(m *StreamMap, mode core.SelectionMode) core.StereoAssignment {
	if m == nil || m.Len() == 0 {
		return core.StereoAssignment{Reason: core.FallbackNoStreams}
	}
	if mode == core.ModeMixed || m.Len() == 1 {
		return core.StereoAssignment{Reason: core.FallbackSingleStream}
	}

	ranked := make([]*Stream, 0, m.Len())
	for _, ssrc := range m.order {
		ranked = append(ranked, m.streams[ssrc])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count() != ranked[j].Count() {
			return ranked[i].Count() > ranked[j].Count()
		}
		return ranked[i].FirstSeen < ranked[j].FirstSeen
	})

	return core.StereoAssignment{
		Reason:   core.Selected,
		ChannelA: ranked[0].SSRC,
		ChannelB: ranked[1].SSRC,
	}
}
