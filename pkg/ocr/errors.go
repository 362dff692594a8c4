package ocr

import "errors"

// ErrUnreadableImage is returned when the input cannot be decoded as an image.
var ErrUnreadableImage = errors.New("file not found or unreadable")

// ErrEngine wraps failures raised by the OCR engine itself.
var ErrEngine = errors.New("ocr engine failure")
