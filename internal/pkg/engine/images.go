package engine

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ImageFetcher retrieves and decodes the image at url.
type ImageFetcher func(url string) (image.Image, error)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// FetchImage loads an image over http(s), or from the local file system when
// url has no http scheme.
func FetchImage(url string) (image.Image, error) {
	var r io.ReadCloser

	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		resp, err := httpClient.Get(url)
		if err != nil {
			return nil, fmt.Errorf("could not fetch image %s: %w", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("could not fetch image %s: unexpected status %d", url, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, fmt.Errorf("could not open image %s: %w", url, err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %s: %w", url, err)
	}

	return img, nil
}
