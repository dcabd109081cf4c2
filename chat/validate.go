package chat

import (
	"fmt"
	"regexp"
	"slices"
)

// AllowedMimeTypes lists the image types accepted by Validate.
var AllowedMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// Validate checks the arguments of an analyze call before anything is sent.
func (r Request) Validate() error {
	switch {
	case r.ImageData == "":
		return fmt.Errorf("imageData must be a non-empty string")
	case r.MimeType == "":
		return fmt.Errorf("mimeType must be a non-empty string")
	case r.Prompt == "":
		return fmt.Errorf("prompt must be a non-empty string")
	}
	if !slices.Contains(AllowedMimeTypes, r.MimeType) {
		return fmt.Errorf("unsupported image type %q", r.MimeType)
	}
	if len(r.ImageData)%4 != 0 || !base64Shape.MatchString(r.ImageData) {
		return fmt.Errorf("imageData is not valid base64")
	}
	return nil
}
