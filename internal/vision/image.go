package vision

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Image is a decoded photograph ready to forward to a card reader.
type Image struct {
	Data      []byte
	MediaType string
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DecodeImage accepts a raw base64 payload or a data URL
// ("data:image/png;base64,..."). PNG data URLs keep their media type and
// everything else is treated as JPEG.
func DecodeImage(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, ErrMissingImage
	}

	mediaType := "image/jpeg"
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok {
			return Image{}, fmt.Errorf("%w: data URL has no payload", ErrInvalidImage)
		}
		if !strings.HasSuffix(header, ";base64") {
			return Image{}, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidImage)
		}
		if strings.HasPrefix(header, "data:image/png") {
			mediaType = "image/png"
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip padding.
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return Image{Data: data, MediaType: mediaType}, nil
}

var (
	// ErrMissingImage means no photograph was supplied.
	ErrMissingImage = errors.New("no image provided")
	// ErrInvalidImage means a photograph could not be decoded.
	ErrInvalidImage = errors.New("invalid image")
	// ErrRecognitionFailed means the reader could not be reached or
	// returned garbage.
	ErrRecognitionFailed = errors.New("card recognition failed")
)

// RecognitionError carries a message a user can act on. Partial holds
// whatever was recognized before the failure, if anything.
type RecognitionError struct {
	Message string
	Partial *Recognition
	Err     error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RecognitionError) Unwrap() error {
	return ErrRecognitionFailed
}
