package valueobjects

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"

	_ "golang.org/x/image/webp"
)

type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	GIF  ImageFormat = "gif"
	WEBP ImageFormat = "webp"
)

const fallbackMimeType = "application/octet-stream"

var ErrEmptyImage = errors.New("image data cannot be empty")

// ImagePayload is a user-selected file held as bytes plus the MIME type
// used to build its data URL. Content is never rejected: bytes that do
// not decode as a known image keep the declared type.
type ImagePayload struct {
	data     []byte
	mimeType string
	format   ImageFormat
}

func NewImagePayload(data []byte, declaredMimeType string) (*ImagePayload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	format, err := detectFormat(data)
	if err == nil {
		return &ImagePayload{
			data:     data,
			mimeType: "image/" + string(format),
			format:   format,
		}, nil
	}

	return &ImagePayload{
		data:     data,
		mimeType: normalizeMimeType(declaredMimeType),
	}, nil
}

func (i *ImagePayload) Data() []byte {
	return i.data
}

func (i *ImagePayload) MimeType() string {
	return i.mimeType
}

// Format is empty when the bytes are not a recognised image.
func (i *ImagePayload) Format() ImageFormat {
	return i.format
}

func (i *ImagePayload) Size() int {
	return len(i.data)
}

// Extension returns a file extension for object names, including the dot.
func (i *ImagePayload) Extension() string {
	switch i.format {
	case JPEG:
		return ".jpg"
	case PNG, GIF, WEBP:
		return "." + string(i.format)
	}
	if exts, err := mime.ExtensionsByType(i.mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func (i *ImagePayload) Reader() io.Reader {
	return bytes.NewReader(i.data)
}

func (i *ImagePayload) ToBase64() string {
	return base64.StdEncoding.EncodeToString(i.data)
}

// DataURL renders the payload as data:<mime>;base64,<payload>.
func (i *ImagePayload) DataURL() string {
	return "data:" + i.mimeType + ";base64," + i.ToBase64()
}

func normalizeMimeType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return fallbackMimeType
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.Contains(mediaType, "/") {
		return fallbackMimeType
	}
	return mediaType
}

func detectFormat(data []byte) (ImageFormat, error) {
	reader := bytes.NewReader(data)
	_, format, err := image.DecodeConfig(reader)
	if err != nil {
		return "", err
	}

	switch format {
	case "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	case "webp":
		return WEBP, nil
	default:
		return "", errors.New("unsupported format: " + format)
	}
}
