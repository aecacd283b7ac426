package media

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavOutputBitDepth is the PCM depth written for WAV outputs.
const wavOutputBitDepth = 24

// DecodeAudio reads the first audio stream of an asset into planar
// float64 channels in [-1, 1]. WAV files are decoded natively; other
// containers are piped through ffmpeg as raw 32-bit float PCM.
func DecodeAudio(ctx context.Context, path string) ([][]float64, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return decodeWAV(path)
	}
	return decodeViaFFmpeg(ctx, path)
}

// EncodeAudio writes planar float64 channels to path. WAV outputs are
// written natively as 24-bit PCM; other containers are encoded by
// ffmpeg from a raw float pipe.
func EncodeAudio(ctx context.Context, path string, chans [][]float64, rate int) error {
	if len(chans) == 0 || len(chans[0]) == 0 {
		return fmt.Errorf("media: no samples to encode")
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return encodeWAV(path, chans, rate)
	}
	return encodeViaFFmpeg(ctx, path, chans, rate)
}

func decodeWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrBadMedia, path)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("%w: %s is empty", ErrBadMedia, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(uint(bitDepth)-1))
	frames := len(buf.Data) / channels

	chans := make([][]float64, channels)
	for c := range chans {
		chans[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			chans[c][i] = float64(buf.Data[i*channels+c]) * scale
		}
	}
	return chans, buf.Format.SampleRate, nil
}

func encodeWAV(path string, chans [][]float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	channels := len(chans)
	frames := len(chans[0])
	max := float64(int64(1)<<(wavOutputBitDepth-1)) - 1

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			s := chans[c][i]
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			data[i*channels+c] = int(math.Round(s * max))
		}
	}

	enc := wav.NewEncoder(f, rate, wavOutputBitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: wavOutputBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func decodeViaFFmpeg(ctx context.Context, path string) ([][]float64, int, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	if info.Audio == nil {
		return nil, 0, fmt.Errorf("%w: %s has no audio stream", ErrBadMedia, path)
	}
	channels := info.Audio.Channels
	if channels < 1 {
		channels = 1
	}
	rate := info.Audio.SampleRate
	if rate <= 0 {
		return nil, 0, fmt.Errorf("%w: %s reports no sample rate", ErrBadMedia, path)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, 0, ErrToolMissing
		}
		return nil, 0, err
	}

	chans := make([][]float64, channels)
	reader := bufio.NewReaderSize(stdout, 1<<16)
	sample := make([]byte, 4)
	ch := 0
	for {
		if _, err := io.ReadFull(reader, sample); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			cmd.Wait()
			return nil, 0, err
		}
		bits := binary.LittleEndian.Uint32(sample)
		chans[ch] = append(chans[ch], float64(math.Float32frombits(bits)))
		ch = (ch + 1) % channels
	}
	if err := cmd.Wait(); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding %s: %v", ErrBadMedia, path, err)
	}
	if len(chans[0]) == 0 {
		return nil, 0, fmt.Errorf("%w: %s produced no samples", ErrBadMedia, path)
	}
	return chans, rate, nil
}

func encodeViaFFmpeg(ctx context.Context, path string, chans [][]float64, rate int) error {
	channels := len(chans)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-v", "error",
		"-f", "f32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-i", "-",
		path,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrToolMissing
		}
		return err
	}

	writer := bufio.NewWriterSize(stdin, 1<<16)
	sample := make([]byte, 4)
	frames := len(chans[0])
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint32(sample, math.Float32bits(float32(chans[c][i])))
			if _, err := writer.Write(sample); err != nil {
				stdin.Close()
				cmd.Wait()
				return err
			}
		}
	}
	if err := writer.Flush(); err != nil {
		stdin.Close()
		cmd.Wait()
		return err
	}
	if err := stdin.Close(); err != nil {
		cmd.Wait()
		return err
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("media: encoding %s: %v", path, err)
	}
	return nil
}
