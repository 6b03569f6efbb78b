package rtp

import (
	"testing"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// mapWithCounts builds a StreamMap with the given SSRCs (in first-seen
// order) carrying the given packet counts.
func mapWithCounts(ssrcs []uint32, counts []int) *StreamMap {
	m := NewStreamMap()
	idx := 0
	for i, ssrc := range ssrcs {
		for n := 0; n < counts[i]; n++ {
			pkt := makePacket(ssrc)
			m.Add(idx, &pkt)
			idx++
		}
	}
	return m
}

func TestSelectRanking(t *testing.T) {
	m := mapWithCounts([]uint32{0xAAAA, 0xBBBB, 0xCCCC}, []int{50, 100, 10})

	sel := Select(m, core.ModeStereo)
	if sel.Reason != core.Selected {
		t.Fatalf("Reason = %v; want Selected", sel.Reason)
	}
	if sel.ChannelA != 0xBBBB {
		t.Errorf("ChannelA = 0x%x; want busiest stream 0xBBBB", sel.ChannelA)
	}
	if sel.ChannelB != 0xAAAA {
		t.Errorf("ChannelB = 0x%x; want second stream 0xAAAA", sel.ChannelB)
	}
}

func TestSelectTieBreakFirstSeen(t *testing.T) {
	// Three streams with equal counts: the two earliest win, in order.
	m := mapWithCounts([]uint32{0x3333, 0x1111, 0x2222}, []int{5, 5, 5})

	sel := Select(m, core.ModeStereo)
	if sel.Reason != core.Selected {
		t.Fatalf("Reason = %v; want Selected", sel.Reason)
	}
	if sel.ChannelA != 0x3333 || sel.ChannelB != 0x1111 {
		t.Errorf("channels = 0x%x, 0x%x; want first-seen 0x3333, 0x1111",
			sel.ChannelA, sel.ChannelB)
	}
}

func TestSelectSingleStreamFallback(t *testing.T) {
	m := mapWithCounts([]uint32{0xAAAA}, []int{42})

	sel := Select(m, core.ModeStereo)
	if sel.Reason != core.FallbackSingleStream {
		t.Fatalf("Reason = %v; want FallbackSingleStream", sel.Reason)
	}
}

func TestSelectEmptyFallback(t *testing.T) {
	sel := Select(NewStreamMap(), core.ModeStereo)
	if sel.Reason != core.FallbackNoStreams {
		t.Fatalf("Reason = %v; want FallbackNoStreams", sel.Reason)
	}
	if sel := Select(nil, core.ModeStereo); sel.Reason != core.FallbackNoStreams {
		t.Fatalf("nil map Reason = %v; want FallbackNoStreams", sel.Reason)
	}
}

func TestSelectMixedModeForcesSingle(t *testing.T) {
	// Mixed mode ignores the stream count entirely.
	m := mapWithCounts([]uint32{0xAAAA, 0xBBBB, 0xCCCC}, []int{100, 50, 10})

	sel := Select(m, core.ModeMixed)
	if sel.Reason != core.FallbackSingleStream {
		t.Fatalf("Reason = %v; want FallbackSingleStream", sel.Reason)
	}
}

func TestSelectDeterministic(t *testing.T) {
	m := mapWithCounts([]uint32{0x1111, 0x2222, 0x3333, 0x4444}, []int{7, 7, 7, 3})

	first := Select(m, core.ModeStereo)
	for i := 0; i < 10; i++ {
		if got := Select(m, core.ModeStereo); got != first {
			t.Fatalf("run %d: Select = %+v; want %+v", i, got, first)
		}
	}
}
