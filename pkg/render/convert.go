package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/treerings/pkg/errors"
)

// Output formats understood by [Convert].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// rsvgConvert ships with librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
const rsvgConvert = "rsvg-convert"

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgConvert)
	return err == nil
}

// Convert turns an SVG document into format. SVG input is returned as is;
// PNG output is scaled by scale (values <= 0 mean 1).
func Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	var args []string
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		args = []string{"-f", "pdf"}
	case FormatPNG:
		if scale <= 0 {
			scale = 1
		}
		args = []string{"-f", "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64)}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot convert SVG to %q", format)
	}
	if !Available() {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"%s export needs %s (brew install librsvg, or apt install librsvg2-bin)", format, rsvgConvert)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, rsvgConvert, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: %s", rsvgConvert, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ToPDF converts SVG bytes to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return Convert(ctx, svg, FormatPDF, 0)
}

// ToPNG converts SVG bytes to PNG. A scale of 2.0 doubles the resolution.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return Convert(ctx, svg, FormatPNG, scale)
}
