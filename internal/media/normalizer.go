package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// ErrMediaTimeout is returned when fetching the image exceeds the
	// configured deadline.
	ErrMediaTimeout = errors.New("media fetch timed out")

	// ErrMediaEncoding is returned when the normalized image fails to
	// decode back, i.e. the produced data URI would be unusable.
	ErrMediaEncoding = errors.New("normalized media failed validation")
)

// FetchError reports a non-timeout failure while retrieving the image.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch media %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch media %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

const maxMediaBytes = 20 << 20

// Normalizer downloads product images and converts them into inline PNG
// data URIs bounded to a maximum dimension.
type Normalizer struct {
	client  *http.Client
	timeout time.Duration
	maxDim  int
}

// NewNormalizer builds a normalizer with the given per-fetch timeout and
// maximum output dimension in pixels.
func NewNormalizer(timeout time.Duration, maxDim int) *Normalizer {
	if maxDim <= 0 {
		maxDim = 512
	}
	return &Normalizer{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		maxDim:  maxDim,
	}
}

// Normalize fetches url, downscales the image to fit the maximum dimension
// and returns it as a PNG data URI.
func (n *Normalizer) Normalize(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %s", ErrMediaTimeout, url)
		}
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %s", ErrMediaTimeout, url)
		}
		return "", &FetchError{URL: url, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	encoded, err := n.encode(downscale(img, n.maxDim))
	if err != nil {
		return "", err
	}
	return encoded, nil
}

func (n *Normalizer) encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaEncoding, err)
	}

	// Decode the produced bytes once so a corrupt payload never reaches
	// the completion request.
	if _, err := png.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaEncoding, err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(width)
	if height > width {
		scale = float64(maxDim) / float64(height)
	}
	outWidth := int(float64(width) * scale)
	outHeight := int(float64(height) * scale)
	if outWidth < 1 {
		outWidth = 1
	}
	if outHeight < 1 {
		outHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outWidth, outHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
