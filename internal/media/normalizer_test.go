package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servePNG(t *testing.T, width, height int) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalizeDownscalesLargeImages(t *testing.T) {
	server := servePNG(t, 1024, 768)
	normalizer := NewNormalizer(5*time.Second, 512)

	uri, err := normalizer.Normalize(context.Background(), server.URL)
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 384, img.Bounds().Dy())
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	server := servePNG(t, 100, 60)
	normalizer := NewNormalizer(5*time.Second, 512)

	uri, err := normalizer.Normalize(context.Background(), server.URL)
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestNormalizeReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	normalizer := NewNormalizer(5*time.Second, 512)
	_, err := normalizer.Normalize(context.Background(), server.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestNormalizeReportsTimeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	normalizer := NewNormalizer(20*time.Millisecond, 512)
	_, err := normalizer.Normalize(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrMediaTimeout)
}

func TestNormalizeRejectsNonImagePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	t.Cleanup(server.Close)

	normalizer := NewNormalizer(5*time.Second, 512)
	_, err := normalizer.Normalize(context.Background(), server.URL)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
