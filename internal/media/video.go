package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
)

// FrameReader streams decoded RGBA frames from an asset via ffmpeg.
type FrameReader struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	width  int
	height int
	buf    []byte
}

// NewFrameReader starts decoding the first video stream of path into
// raw RGBA frames of the probed dimensions.
func NewFrameReader(ctx context.Context, path string, width, height int) (*FrameReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s has no usable dimensions", ErrBadMedia, path)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrToolMissing
		}
		return nil, err
	}

	return &FrameReader{
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		width:  width,
		height: height,
		buf:    make([]byte, width*height*4),
	}, nil
}

// Next returns the next decoded frame, or io.EOF when the stream ends.
func (r *FrameReader) Next() (*image.RGBA, error) {
	if _, err := io.ReadFull(r.stdout, r.buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.buf)
	return img, nil
}

// Close drains the decoder and reaps the ffmpeg process.
func (r *FrameReader) Close() error {
	io.Copy(io.Discard, r.stdout)
	return r.cmd.Wait()
}

// FrameWriter streams processed RGBA frames into an H.264 encode via
// ffmpeg. When srcPath is non-empty the source's audio track is copied
// across unchanged.
type FrameWriter struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Writer
	w, h  int
}

// NewFrameWriter starts an encoder writing width x height frames at
// frameRate to path.
func NewFrameWriter(ctx context.Context, path, srcPath string, width, height int, frameRate float64) (*FrameWriter, error) {
	if frameRate <= 0 {
		frameRate = 25.0
	}

	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(frameRate, 'f', -1, 64),
		"-i", "-",
	}
	if srcPath != "" {
		args = append(args, "-i", srcPath)
	}
	args = append(args,
		"-map", "0:v:0",
	)
	if srcPath != "" {
		args = append(args, "-map", "1:a:0?", "-c:a", "copy")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-shortest",
		path,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrToolMissing
		}
		return nil, err
	}

	return &FrameWriter{
		cmd:   cmd,
		stdin: stdin,
		out:   bufio.NewWriterSize(stdin, 1<<20),
		w:     width,
		h:     height,
	}, nil
}

// WriteFrame encodes one frame. The frame must match the writer's
// dimensions.
func (w *FrameWriter) WriteFrame(img *image.RGBA) error {
	if img.Rect.Dx() != w.w || img.Rect.Dy() != w.h {
		return fmt.Errorf("media: frame %dx%d does not match writer %dx%d",
			img.Rect.Dx(), img.Rect.Dy(), w.w, w.h)
	}
	if img.Stride == w.w*4 {
		_, err := w.out.Write(img.Pix)
		return err
	}
	for y := 0; y < w.h; y++ {
		if _, err := w.out.Write(img.Pix[y*img.Stride : y*img.Stride+w.w*4]); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the pipe and waits for the encode to finish.
func (w *FrameWriter) Close() error {
	if err := w.out.Flush(); err != nil {
		w.stdin.Close()
		w.cmd.Wait()
		return err
	}
	if err := w.stdin.Close(); err != nil {
		w.cmd.Wait()
		return err
	}
	return w.cmd.Wait()
}
