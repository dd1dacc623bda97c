package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffMimeHTTP(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0}, "image/png"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"bmp", []byte("BM\x00\x00"), "image/bmp"},
		{"tiff", []byte("II*\x00\x08"), "image/tiff"},
		{"text", []byte("hello"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffMimeHTTP(tt.in))
		})
	}
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/gif", PickMIME([]byte("GIF87a")))
	assert.Equal(t, "text/plain; charset=utf-8", PickMIME([]byte("plain words")))
	assert.Equal(t, "application/octet-stream", PickMIME(nil))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `["red"]`, StripCodeFences("```json\n[\"red\"]\n```"))
	assert.Equal(t, `["red"]`, StripCodeFences("```JSON [\"red\"] ```"))
	assert.Equal(t, `["red"]`, StripCodeFences("```\n[\"red\"]```"))
	assert.Equal(t, `["red"]`, StripCodeFences(`  ["red"]  `))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
