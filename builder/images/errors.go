package images

import (
	"errors"
	"fmt"
)

// ErrMissingAltText is returned by the image shortcodes when alt is empty.
var ErrMissingAltText = errors.New("missing alt text")

// AltTextError names the image whose alt text is missing.
type AltTextError struct {
	Src string
}

func (e *AltTextError) Error() string {
	return fmt.Sprintf("missing alt on image: %s", e.Src)
}

func (e *AltTextError) Unwrap() error {
	return ErrMissingAltText
}
