package session

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/igorolhovskiy/rtpproxy/internal/log"
)

// CodecRequest is the handoff to the codec stage: one capture path for a
// single-source extraction, or two paths for channels A and B, plus the
// channel-count hint and the desired output location.
type CodecRequest struct {
	ChannelPaths []string
	Channels     int
	Output       string
}

// CodecResult reports the codec stage's output artifact.
type CodecResult struct {
	Output string
}

// CodecStage is the opaque consumer of extracted channel captures. Its
// internal behavior (format, sample rate, codec selection) is out of scope
// here; it only receives paths and a channel-count hint.
type CodecStage interface {
	Encode(ctx context.Context, req CodecRequest) (CodecResult, error)
}

// ExecCodec invokes an external encoder command with the channel paths,
// channel count and output path appended as arguments.
type ExecCodec struct {
	Command string
	Log     log.Logger
}

// Encode runs the configured command and surfaces its failure output.
func (c *ExecCodec) Encode(ctx context.Context, req CodecRequest) (CodecResult, error) {
	argv := strings.Fields(c.Command)
	if len(argv) == 0 {
		return CodecResult{}, fmt.Errorf("codec command is empty")
	}
	args := append(argv[1:], req.ChannelPaths...)
	args = append(args, strconv.Itoa(req.Channels), req.Output)

	cmd := exec.CommandContext(ctx, argv[0], args...)
	if c.Log != nil {
		c.Log.WithField("cmd", cmd.String()).Debug("running codec stage")
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return CodecResult{}, fmt.Errorf("codec stage: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return CodecResult{Output: req.Output}, nil
}
