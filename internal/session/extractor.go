package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/igorolhovskiy/rtpproxy/internal/config"
	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/log"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
	"github.com/igorolhovskiy/rtpproxy/internal/rtp"
)

// Result is the outcome of one extraction.
type Result struct {
	Assignment   core.StereoAssignment
	ChannelPaths []string // per-channel pcaps (Selected) or the input capture
	AudioPath    string   // codec output, empty when no codec stage ran
	Stats        Stats
	Streams      []StreamStat
}

// StreamStat summarizes one classified stream.
type StreamStat struct {
	SSRC    uint32
	Packets int
}

// Extractor runs extraction passes. Instances are stateless between passes;
// independent extractors may run concurrently against different captures.
type Extractor struct {
	cfg   *config.Config
	log   log.Logger
	codec CodecStage
	dec   Decryptor
	leg   core.Channel
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCodec attaches the codec stage consuming the extracted channels.
func WithCodec(c CodecStage) Option {
	return func(e *Extractor) { e.codec = c }
}

// WithDecryptor attaches a payload decryptor. The channel identity declares
// which leg this capture carries, so the decryptor can pick its key material.
func WithDecryptor(d Decryptor, leg core.Channel) Option {
	return func(e *Extractor) { e.dec = d; e.leg = leg }
}

// NewExtractor builds an extractor from configuration. When the config
// names a codec command and no codec stage was injected, an ExecCodec is
// wired in.
func NewExtractor(cfg *config.Config, logger log.Logger, opts ...Option) *Extractor {
	e := &Extractor{cfg: cfg, log: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.codec == nil && cfg.Codec.Command != "" {
		e.codec = &ExecCodec{Command: cfg.Codec.Command, Log: logger}
	}
	return e
}

// Extract runs a full pass over capturePath and materializes the selected
// channels. All intermediate artifacts live in an invocation-scoped temp
// directory that is removed on every exit path.
//
// Outcomes:
//   - Selected: two per-channel pcaps (then the codec stage, when present,
//     turns them into a stereo audio artifact at outputPath);
//   - FallbackSingleStream: the original capture is the single source;
//   - FallbackNoStreams: core.ErrNoStreams, nothing to extract.
func (e *Extractor) Extract(ctx context.Context, capturePath, outputPath string) (*Result, error) {
	mode, err := e.cfg.SelectionMode()
	if err != nil {
		return nil, err
	}

	pd, err := runPass(ctx, capturePath, e.dec, e.leg)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: pd.stats}
	for _, ssrc := range pd.streams.SSRCs() {
		s := pd.streams.Get(ssrc)
		res.Streams = append(res.Streams, StreamStat{SSRC: s.SSRC, Packets: s.Count()})
	}

	res.Assignment = rtp.Select(pd.streams, mode)
	e.log.WithFields(map[string]interface{}{
		"records": pd.stats.TotalRecords,
		"streams": pd.streams.Len(),
		"reason":  res.Assignment.Reason.String(),
	}).Info("capture pass complete")

	switch res.Assignment.Reason {
	case core.FallbackNoStreams:
		return nil, fmt.Errorf("%w: %s", core.ErrNoStreams, capturePath)

	case core.FallbackSingleStream:
		// Informational policy decision, not an error: the capture itself
		// becomes the single source.
		res.ChannelPaths = []string{capturePath}
		if e.codec != nil {
			out, err := e.codec.Encode(ctx, CodecRequest{
				ChannelPaths: res.ChannelPaths,
				Channels:     1,
				Output:       outputPath,
			})
			if err != nil {
				return nil, err
			}
			res.AudioPath = out.Output
		}
		return res, nil
	}

	// Selected: materialize channel captures in scratch space, hand off,
	// clean up regardless of how the handoff goes.
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "extractaudio-*")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	chanPaths := make([]string, 2)
	for i, ssrc := range []uint32{res.Assignment.ChannelA, res.Assignment.ChannelB} {
		p := filepath.Join(tmpDir, fmt.Sprintf("channel_%s_0x%08x.pcap", core.Channel(i), ssrc))
		if err := writeStreamPcap(p, pd, pd.streams.Get(ssrc)); err != nil {
			return nil, err
		}
		chanPaths[i] = p
	}

	if e.codec != nil {
		out, err := e.codec.Encode(ctx, CodecRequest{
			ChannelPaths: chanPaths,
			Channels:     2,
			Output:       outputPath,
		})
		if err != nil {
			return nil, err
		}
		res.AudioPath = out.Output
		res.ChannelPaths = chanPaths // gone after return; informational only
		return res, nil
	}

	// No codec stage: the channel captures are the product. Move them out
	// of scratch space next to the requested output.
	destDir := e.cfg.OutputDir
	if destDir == "" {
		destDir = filepath.Dir(outputPath)
	}
	for i, p := range chanPaths {
		dest := filepath.Join(destDir, filepath.Base(p))
		if err := moveFile(p, dest); err != nil {
			return nil, err
		}
		chanPaths[i] = dest
	}
	res.ChannelPaths = chanPaths
	return res, nil
}

// writeStreamPcap writes one stream's packets into an Ethernet-framed pcap.
func writeStreamPcap(path string, pd *passData, s *rtp.Stream) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w, err := pcap.NewStreamWriter(f, 65535)
	if err != nil {
		return err
	}
	for _, idx := range s.Packets {
		if err := w.WritePacket(pd.times[idx], &pd.packets[idx]); err != nil {
			return err
		}
	}
	return nil
}

// moveFile renames src to dest, falling back to a copy across filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
