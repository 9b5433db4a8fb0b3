package utils

import (
	"mime"
	"net/http"
)

const MediaTypeJSON = "application/json"

// HasMediaType reports whether the Content-Type in h declares the expected media type. Parameters such as charset
// are ignored.
func HasMediaType(h http.Header, expected string) bool {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == expected
}

func IsJSON(h http.Header) bool {
	return HasMediaType(h, MediaTypeJSON)
}
