package validator

import (
	"io"
	"net/http"
)

var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// IsImage sniffs the first 512 bytes and reports whether the content is an
// allowed image type. The reader is rewound afterwards.
func IsImage(file io.ReadSeeker) (bool, error) {
	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}

	mimeType := http.DetectContentType(buffer)
	return allowedImageMimeTypes[mimeType], nil
}

// DetectMimeType sniffs the content type of the first 512 bytes and rewinds.
func DetectMimeType(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buffer), nil
}
