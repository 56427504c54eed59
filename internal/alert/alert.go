// Package alert plays the audible chime for a new detection.
package alert

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/tosone/minimp3"
)

// DefaultPlayer is the command used to play the chime.
const DefaultPlayer = "mpg123"

// Sink plays the alert. Implementations must not block for the duration of
// the sound.
type Sink interface {
	Play() error
}

// CommandSink starts an external player for every alert and does not wait
// for it to finish.
type CommandSink struct {
	name   string
	args   []string
	logger *slog.Logger
}

// NewCommandSink creates a sink running name with args.
func NewCommandSink(logger *slog.Logger, name string, args ...string) *CommandSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandSink{name: name, args: args, logger: logger}
}

// Play starts the player and reaps it in the background.
func (s *CommandSink) Play() error {
	cmd := exec.Command(s.name, s.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.logger.Warn("alert player exited with error", slog.String("player", s.name), slog.Any("error", err))
		}
	}()
	return nil
}

// BellSink writes the terminal bell character.
type BellSink struct {
	w io.Writer
}

// NewBellSink creates a sink that rings the bell on w (stderr if nil).
func NewBellSink(w io.Writer) *BellSink {
	if w == nil {
		w = os.Stderr
	}
	return &BellSink{w: w}
}

func (s *BellSink) Play() error {
	_, err := io.WriteString(s.w, "\a")
	return err
}

// SoundInfo describes a decoded alert sound.
type SoundInfo struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// ProbeSound decodes the mp3 at path to check that it is playable.
func ProbeSound(path string) (SoundInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SoundInfo{}, err
	}
	if len(data) == 0 {
		return SoundInfo{}, fmt.Errorf("%s: empty file", path)
	}

	dec, pcm, err := minimp3.DecodeFull(data)
	if err != nil {
		return SoundInfo{}, fmt.Errorf("%s: unable to decode mp3: %w", path, err)
	}
	if dec == nil || dec.SampleRate <= 0 || dec.Channels <= 0 || len(pcm) == 0 {
		return SoundInfo{}, fmt.Errorf("%s: no audio frames", path)
	}

	// 16-bit samples, interleaved
	frames := len(pcm) / (2 * dec.Channels)
	return SoundInfo{
		SampleRate: dec.SampleRate,
		Channels:   dec.Channels,
		Duration:   time.Duration(frames) * time.Second / time.Duration(dec.SampleRate),
	}, nil
}

// New picks the sink for the configured sound file and player. When the
// file is missing or undecodable, or the player is not installed, the
// terminal bell is used instead and the reason is logged once.
func New(soundPath, player string, logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if player == "" {
		player = DefaultPlayer
	}

	if soundPath == "" {
		logger.Info("no alert sound configured, using terminal bell")
		return NewBellSink(nil)
	}

	info, err := ProbeSound(soundPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("alert sound not found, using terminal bell", slog.String("path", soundPath))
		} else {
			logger.Warn("alert sound unusable, using terminal bell", slog.String("path", soundPath), slog.Any("error", err))
		}
		return NewBellSink(nil)
	}

	if _, err := exec.LookPath(player); err != nil {
		logger.Warn("alert player not found, using terminal bell", slog.String("player", player), slog.Any("error", err))
		return NewBellSink(nil)
	}

	logger.Info("alert sound loaded",
		slog.String("path", soundPath),
		slog.String("player", player),
		slog.Int("sample_rate", info.SampleRate),
		slog.Duration("duration", info.Duration))

	return NewCommandSink(logger, player, "-q", soundPath)
}
