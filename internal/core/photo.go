package core

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Accepted photo content types, sniffed from the payload.
var photoTypes = []string{"image/png", "image/jpeg"}

func validatePhoto(photo []byte, maxBytes int) error {
	if len(photo) == 0 {
		return nil
	}
	if maxBytes > 0 && len(photo) > maxBytes {
		return invalid("photo", fmt.Sprintf("photo exceeds %d bytes", maxBytes))
	}
	mt := mimetype.Detect(photo)
	for _, t := range photoTypes {
		if mt.Is(t) {
			return nil
		}
	}
	return invalid("photo", "photo must be a PNG or JPEG image")
}
