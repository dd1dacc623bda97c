package util

import (
	"bytes"
	"net/http"
)

// SniffMimeHTTP определяет MIME картинки по сигнатуре. Пусто — формат не из поддерживаемых.
func SniffMimeHTTP(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "image/jpeg"
	case len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A:
		return "image/png"
	case len(b) >= 6 && (bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a"))):
		return "image/gif"
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return "image/webp"
	case len(b) >= 2 && b[0] == 'B' && b[1] == 'M':
		return "image/bmp"
	case len(b) >= 4 && (bytes.Equal(b[0:4], []byte("II*\x00")) || bytes.Equal(b[0:4], []byte("MM\x00*"))):
		return "image/tiff"
	}
	return ""
}

// PickMIME берём сигнатуру, иначе то, что скажет net/http.
func PickMIME(data []byte) string {
	if m := SniffMimeHTTP(data); m != "" {
		return m
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}
