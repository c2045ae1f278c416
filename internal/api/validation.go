package api

import (
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSnippetBytes bounds a pasted code snippet.
	MaxSnippetBytes = 512 * 1024 // 512 KiB

	// MaxUploadBytes bounds an uploaded source file.
	MaxUploadBytes = 2 * 1024 * 1024 // 2 MiB

	// DefaultLanguage is sent when the caller does not name one.
	DefaultLanguage = "auto-detect"

	maxEmailLength = 254
)

// User-facing validation messages.
const (
	MsgEmptyCode    = "Please enter code to audit"
	MsgEmptyRepo    = "Please enter a GitHub URL or upload a file"
	MsgInvalidURL   = "Invalid GitHub URL format. Expected: https://github.com/owner/repo"
	MsgNotText      = "File must be a text file"
	MsgInvalidEmail = "Please enter a valid email address"
)

var (
	githubPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

	// UploadExtensions are the source file types accepted for upload.
	UploadExtensions = []string{".js", ".py", ".java", ".cpp", ".c", ".go", ".rb", ".php", ".ts", ".jsx", ".tsx"}
)

// Repository is the owner/name pair extracted from a GitHub URL.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ValidateSnippet checks that a code snippet is present and of sane size.
func ValidateSnippet(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New(MsgEmptyCode)
	}
	if len(code) > MaxSnippetBytes {
		return fmt.Errorf("code snippet exceeds %d bytes", MaxSnippetBytes)
	}
	return nil
}

// ParseGitHubURL extracts owner and repository from a GitHub URL. Scheme and
// trailing slashes are optional; a ".git" suffix is dropped.
func ParseGitHubURL(raw string) (Repository, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Repository{}, errors.New(MsgEmptyRepo)
	}

	m := githubPattern.FindStringSubmatch(strings.Trim(raw, "/"))
	if m == nil {
		return Repository{}, errors.New(MsgInvalidURL)
	}

	name := strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return Repository{}, errors.New(MsgInvalidURL)
	}
	return Repository{Owner: m[1], Name: name}, nil
}

// ValidateUpload checks an uploaded file's name and content before it is sent
// for audit.
func ValidateUpload(filename string, content []byte) error {
	if strings.TrimSpace(filename) == "" {
		return errors.New(MsgEmptyRepo)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range UploadExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("unsupported file type %q (accepted: %s)", ext, strings.Join(UploadExtensions, ", "))
	}

	if len(content) == 0 {
		return fmt.Errorf("file %s is empty", filepath.Base(filename))
	}
	if len(content) > MaxUploadBytes {
		return fmt.Errorf("file exceeds %d bytes", MaxUploadBytes)
	}
	if !utf8.Valid(content) {
		return errors.New(MsgNotText)
	}
	return nil
}

// ValidateEmail checks a share-summary recipient. A bare address is required;
// display names are rejected.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return errors.New(MsgInvalidEmail)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New(MsgInvalidEmail)
	}

	at := strings.LastIndex(email, "@")
	if !strings.Contains(email[at+1:], ".") {
		return errors.New(MsgInvalidEmail)
	}
	return nil
}
