package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType_AllowlistedTypesPass(t *testing.T) {
	for _, contentType := range []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"application/pdf",
		"text/plain",
		"text/plain; charset=utf-8", // parameters do not defeat the match
		"IMAGE/PNG",                 // media types are case-insensitive
	} {
		assert.NoError(t, ContentType(contentType), contentType)
	}
}

func TestContentType_EverythingElseRejected(t *testing.T) {
	for _, contentType := range []string{
		"",
		"application/octet-stream",
		"application/x-msdownload",
		"text/html",
		"image/svg+xml",
		"not a media type",
		"text/plain; =broken",
		"text/plain" + strings.Repeat("x", maxContentTypeLen),
	} {
		assert.Error(t, ContentType(contentType), "%q must not be accepted", contentType)
	}
}

func TestFileName_RejectsTraversalAndControlChars(t *testing.T) {
	assert.NoError(t, FileName("report.pdf"))

	for _, name := range []string{
		"",
		"../../etc/passwd",
		"dir/report.pdf",
		"dir\\report.pdf",
		"bad\x01name.txt",
		strings.Repeat("a", maxFileNameLen+1),
	} {
		assert.Error(t, FileName(name), "%q must not be accepted", name)
	}
}

func TestSanitizeText_StripsMarkupAndControls(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  <b>hello</b> world\x00  "))
	assert.Equal(t, "line\nbreak", SanitizeText("line\nbreak"))
}
