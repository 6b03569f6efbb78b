package pcap

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// Synthesized MAC addresses for re-framed output. Downstream consumers only
// care about the IP/UDP/RTP layers.
var (
	synthDstMAC = net.HardwareAddr{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	synthSrcMAC = net.HardwareAddr{0x00, 0x01, 0x02, 0x03, 0x04, 0x06}
)

// StreamWriter writes UDP packets into an Ethernet-framed pcap file.
// Each packet is re-framed: synthesized Ethernet header, normalized 20-byte
// IPv4 header with recomputed lengths and checksums, UDP header, payload.
// Original record timestamps are preserved.
type StreamWriter struct {
	w    *pcapgo.Writer
	buf  gopacket.SerializeBuffer
	opts gopacket.SerializeOptions
}

// NewStreamWriter writes the pcap global header (Ethernet link type) and
// returns a writer for individual packets.
func NewStreamWriter(w io.Writer, snaplen uint32) (*StreamWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snaplen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("write pcap header: %w", err)
	}
	return &StreamWriter{
		w:   pw,
		buf: gopacket.NewSerializeBuffer(),
		opts: gopacket.SerializeOptions{
			FixLengths:       true,
			ComputeChecksums: true,
		},
	}, nil
}

// WritePacket re-frames one unwrapped packet and appends it to the capture.
func (sw *StreamWriter) WritePacket(ts time.Time, pkt *core.UnwrappedPacket) error {
	eth := layers.Ethernet{
		SrcMAC:       synthSrcMAC,
		DstMAC:       synthDstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP(pkt.SrcIP.AsSlice()),
		DstIP:    net.IP(pkt.DstIP.AsSlice()),
	}
	udp := layers.UDP{
		SrcPort: layers.UDPPort(pkt.SrcPort),
		DstPort: layers.UDPPort(pkt.DstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(&ip); err != nil {
		return fmt.Errorf("udp checksum context: %w", err)
	}

	if err := gopacket.SerializeLayers(sw.buf, sw.opts,
		&eth, &ip, &udp, gopacket.Payload(pkt.Payload())); err != nil {
		return fmt.Errorf("serialize packet: %w", err)
	}

	data := sw.buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := sw.w.WritePacket(ci, data); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return nil
}
