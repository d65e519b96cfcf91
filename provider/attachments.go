package provider

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"
)

const defaultImageMIME = "image/jpeg"

// Image is an image attachment encoded for transport.
type Image struct {
	Path string
	MIME string
	Data string // Standard base64
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIME + ";base64," + i.Data
}

// LoadImages reads and encodes the images at paths, in order. Unreadable
// images are skipped and logged.
func LoadImages(paths []string, logger log.FieldLogger) []Image {
	if len(paths) == 0 {
		return nil
	}
	images := make([]Image, 0, len(paths))
	for _, p := range paths {
		img, err := LoadImage(p)
		if err != nil {
			logger.WithError(err).WithField("path", p).Warn("Skipping unreadable image")
			continue
		}
		images = append(images, img)
	}
	return images
}

// LoadImage reads one image and sniffs its MIME type from the content,
// falling back to image/jpeg for anything that is not recognised as an image.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 - caller-selected attachment
	if err != nil {
		return Image{}, err
	}

	mime := defaultImageMIME
	if detected := mimetype.Detect(data); strings.HasPrefix(detected.String(), "image/") {
		mime = detected.String()
	}

	return Image{
		Path: path,
		MIME: mime,
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}
