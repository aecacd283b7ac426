// Package media reads and writes audio and video assets. WAV files are
// handled natively; everything else goes through ffmpeg and ffprobe on
// the PATH.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Sentinel errors for the media layer.
var (
	// ErrToolMissing indicates ffmpeg or ffprobe is not installed.
	ErrToolMissing = errors.New("media: ffmpeg/ffprobe not found on PATH")

	// ErrBadMedia indicates the file could not be parsed as media.
	ErrBadMedia = errors.New("media: unrecognised or corrupt media file")
)

// Info describes a probed media asset.
type Info struct {
	Path      string
	Container string
	Duration  float64 // seconds

	Audio *AudioStream // nil when the asset has no audio
	Video *VideoStream // nil when the asset has no video
}

// AudioStream describes the first audio stream of an asset.
type AudioStream struct {
	Codec      string
	SampleRate int
	Channels   int
}

// VideoStream describes the first video stream of an asset.
type VideoStream struct {
	Codec      string
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int // estimated from duration when the container omits it
}

// Probe inspects a media file with ffprobe.
func Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrToolMissing
		}
		return nil, fmt.Errorf("%w: %s", ErrBadMedia, path)
	}

	return parseProbeOutput(out, path)
}

// ffprobe JSON shapes. ffprobe emits numbers as strings in several
// places, hence the string fields.
type probeDocument struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

func parseProbeOutput(data []byte, path string) (*Info, error) {
	var doc probeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadMedia, path)
	}
	if len(doc.Streams) == 0 {
		return nil, fmt.Errorf("%w: %s has no streams", ErrBadMedia, path)
	}

	info := &Info{
		Path:      path,
		Container: doc.Format.FormatName,
	}
	info.Duration, _ = strconv.ParseFloat(doc.Format.Duration, 64)

	for _, s := range doc.Streams {
		switch s.CodecType {
		case "audio":
			if info.Audio != nil {
				continue // first audio stream only
			}
			rate, _ := strconv.Atoi(s.SampleRate)
			info.Audio = &AudioStream{
				Codec:      s.CodecName,
				SampleRate: rate,
				Channels:   s.Channels,
			}

		case "video":
			if info.Video != nil {
				continue
			}
			vs := &VideoStream{
				Codec:     s.CodecName,
				Width:     s.Width,
				Height:    s.Height,
				FrameRate: parseFrameRate(s.AvgFrameRate),
			}
			vs.FrameCount, _ = strconv.Atoi(s.NbFrames)
			if vs.FrameCount == 0 && vs.FrameRate > 0 {
				vs.FrameCount = int(info.Duration * vs.FrameRate)
			}
			info.Video = vs
		}
	}

	if info.Audio == nil && info.Video == nil {
		return nil, fmt.Errorf("%w: %s has no audio or video streams", ErrBadMedia, path)
	}
	return info, nil
}

// parseFrameRate parses ffprobe's rational frame rates ("30000/1001").
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(rate, "/")
	if !found {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
