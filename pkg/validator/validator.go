package validator

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLen        = 255
	maxNoteLen        = 10000
	maxTitleLen       = 255
	maxComponentLen   = 50
	maxRoleNameLen    = 50
	maxFileNameLen    = 255
	maxContentTypeLen = 255
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d characters"
	errNameMaxLengthFmt        = "name must not exceed %d characters"
	errNoteMaxLengthFmt        = "note must not exceed %d characters"
	errTitleEmptyFmt           = "title cannot be empty"
	errTitleMaxLengthFmt       = "title must not exceed %d characters"
	errComponentEmptyFmt       = "component cannot be empty"
	errComponentMaxLengthFmt   = "component must not exceed %d characters"
	errComponentCharsFmt       = "component may only contain lowercase letters, digits and underscores"
	errRoleNameEmptyFmt        = "role name cannot be empty"
	errRoleNameMaxLengthFmt    = "role name must not exceed %d characters"
	errRoleNameControlFmt      = "role name cannot contain control characters"
	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNamePathSepFmt      = "file name cannot contain path separators"
	errFileNameControlCharsFmt = "file name cannot contain control characters"
	errContentTypeMaxLengthFmt  = "content type must not exceed %d characters"
	errContentTypeInvalidFmt    = "invalid content type"
	errContentTypeMissingFmt    = "content type is required"
	errContentTypeNotAllowedFmt = "content type %s is not allowed"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	componentRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func PersonName(name string) error {
	if len(name) > maxNameLen {
		return fmt.Errorf(errNameMaxLengthFmt, maxNameLen)
	}

	return nil
}

func Note(note string) error {
	if len(note) > maxNoteLen {
		return fmt.Errorf(errNoteMaxLengthFmt, maxNoteLen)
	}

	return nil
}

func TaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf(errTitleEmptyFmt)
	}

	if len(title) > maxTitleLen {
		return fmt.Errorf(errTitleMaxLengthFmt, maxTitleLen)
	}

	return nil
}

func Component(component string) error {
	if component == "" {
		return fmt.Errorf(errComponentEmptyFmt)
	}

	if len(component) > maxComponentLen {
		return fmt.Errorf(errComponentMaxLengthFmt, maxComponentLen)
	}

	if !componentRegex.MatchString(component) {
		return fmt.Errorf(errComponentCharsFmt)
	}

	return nil
}

func RoleName(name string) error {
	if name == "" {
		return fmt.Errorf(errRoleNameEmptyFmt)
	}

	if len(name) > maxRoleNameLen {
		return fmt.Errorf(errRoleNameMaxLengthFmt, maxRoleNameLen)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errRoleNameControlFmt)
		}
	}

	return nil
}

func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf(errFileNamePathSepFmt)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errFileNameControlCharsFmt)
		}
	}

	return nil
}

// allowedContentTypes is the upload allowlist. Anything else is rejected
// outright rather than stored as an opaque blob.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"text/plain":      {},
}

// ContentType enforces the upload allowlist. Media type parameters such as
// charset are ignored; a missing content type is an error, never a default.
func ContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf(errContentTypeMissingFmt)
	}

	if len(contentType) > maxContentTypeLen {
		return fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	if _, ok := allowedContentTypes[mediaType]; !ok {
		return fmt.Errorf(errContentTypeNotAllowedFmt, mediaType)
	}

	return nil
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// SanitizeText strips HTML tags and control characters from free-text
// profile fields before storage.
func SanitizeText(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, char := range s {
		if char >= asciiControlStart && char != asciiDelete || char == '\n' || char == '\t' {
			b.WriteRune(char)
		}
	}
	return strings.TrimSpace(b.String())
}
