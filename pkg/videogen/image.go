package videogen

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes bounds a reference image.
const MaxImageBytes = 20 << 20

// imageTypes are the reference image formats the providers accept.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Image is a reference image the video should start from. Only the
// primary interfaces can carry one; the HTTPS secondary's JSON contract has
// no field for it.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewImage checks data and sniffs its type. name is used for the upload
// file name; an empty name gets "reference" plus the type's extension.
func NewImage(name string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Field: "input_image", Message: "image is empty"}
	}
	if len(data) > MaxImageBytes {
		return nil, &ValidationError{Field: "input_image", Message: fmt.Sprintf("image is larger than %d bytes", MaxImageBytes)}
	}
	mimeType := http.DetectContentType(data)
	ext, ok := imageTypes[mimeType]
	if !ok {
		return nil, &ValidationError{Field: "input_image", Message: fmt.Sprintf("unsupported image type %s (want jpeg, png or webp)", mimeType)}
	}
	if name == "" {
		name = "reference" + ext
	}
	return &Image{Name: filepath.Base(name), MIMEType: mimeType, Data: data}, nil
}

// LoadImage reads a reference image from disk.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Field: "input_image", Message: err.Error()}
	}
	return NewImage(path, data)
}

// DecodeImageDataURL decodes "data:image/png;base64,...." or bare base64,
// as sent by browsers.
func DecodeImageDataURL(s string) (*Image, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		_, after, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, &ValidationError{Field: "input_image", Message: "malformed data URL"}
		}
		payload = after
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &ValidationError{Field: "input_image", Message: "invalid base64: " + err.Error()}
	}
	return NewImage("", data)
}
