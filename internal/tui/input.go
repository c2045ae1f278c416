package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/scan"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// source is what the input form submits for audit.
type source int

const (
	sourceCode source = iota
	sourceRepo
	sourceFile
)

const sourceCount = 3

func (s source) String() string {
	switch s {
	case sourceCode:
		return "Code Snippet"
	case sourceRepo:
		return "GitHub Repository"
	case sourceFile:
		return "Upload File"
	default:
		return "unknown"
	}
}

// inputForm collects the scan target.
type inputForm struct {
	source source
	code   textarea.Model
	repo   textinput.Model
	file   textinput.Model
}

func newInputForm() inputForm {
	code := textarea.New()
	code.Placeholder = "Paste code to audit..."
	code.ShowLineNumbers = true
	code.CharLimit = api.MaxSnippetBytes
	code.SetWidth(76)
	code.SetHeight(12)

	repo := textinput.New()
	repo.Placeholder = "https://github.com/owner/repo"
	repo.CharLimit = 256

	file := textinput.New()
	file.Placeholder = "path/to/file.py"
	file.CharLimit = 1024

	return inputForm{source: sourceCode, code: code, repo: repo, file: file}
}

// focus focuses the field of the active source and blurs the others.
func (f *inputForm) focus() tea.Cmd {
	f.code.Blur()
	f.repo.Blur()
	f.file.Blur()

	switch f.source {
	case sourceRepo:
		return f.repo.Focus()
	case sourceFile:
		return f.file.Focus()
	default:
		return f.code.Focus()
	}
}

func (f *inputForm) blur() {
	f.code.Blur()
	f.repo.Blur()
	f.file.Blur()
}

// next switches to the next source.
func (f *inputForm) next() tea.Cmd {
	f.source = (f.source + 1) % sourceCount
	return f.focus()
}

func (f *inputForm) setWidth(width int) {
	w := width - 4
	if w < 20 {
		w = 20
	}
	f.code.SetWidth(w)
	f.repo.Width = w - 2
	f.file.Width = w - 2
}

func (f inputForm) update(msg tea.Msg) (inputForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.source {
	case sourceRepo:
		f.repo, cmd = f.repo.Update(msg)
	case sourceFile:
		f.file, cmd = f.file.Update(msg)
	default:
		f.code, cmd = f.code.Update(msg)
	}
	return f, cmd
}

// singleLine reports whether enter submits the form.
func (f inputForm) singleLine() bool {
	return f.source != sourceCode
}

func (f inputForm) view(st styles) string {
	var b strings.Builder

	tabs := make([]string, 0, sourceCount)
	for s := source(0); s < sourceCount; s++ {
		label := " " + s.String() + " "
		if s == f.source {
			tabs = append(tabs, st.selected.Render(label))
		} else {
			tabs = append(tabs, st.muted.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	switch f.source {
	case sourceRepo:
		b.WriteString(st.prompt.Render("Repository URL: "))
		b.WriteString(f.repo.View())
	case sourceFile:
		b.WriteString(st.prompt.Render("File: "))
		b.WriteString(f.file.View())
		b.WriteString("\n")
		b.WriteString(st.muted.Render("Accepted: " + strings.Join(api.UploadExtensions, " ")))
	default:
		b.WriteString(f.code.View())
	}
	b.WriteString("\n")

	return b.String()
}

// request validates the form and returns the audit call to run. Validation
// failures never reach the audit service.
func (f inputForm) request(a Auditor, readFile func(string) ([]byte, error)) (scan.Submitter, error) {
	switch f.source {
	case sourceRepo:
		url := strings.TrimSpace(f.repo.Value())
		if url == "" {
			return nil, errors.New(api.MsgEmptyRepo)
		}
		if _, err := api.ParseGitHubURL(url); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*models.AuditResult, error) {
			return a.AuditRepo(ctx, url)
		}, nil

	case sourceFile:
		path := strings.TrimSpace(f.file.Value())
		if path == "" {
			return nil, errors.New(api.MsgEmptyRepo)
		}
		content, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		name := filepath.Base(path)
		if err := api.ValidateUpload(name, content); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*models.AuditResult, error) {
			return a.AuditFile(ctx, name, content)
		}, nil

	default:
		code := f.code.Value()
		if err := api.ValidateSnippet(code); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*models.AuditResult, error) {
			return a.AuditCode(ctx, code, api.DefaultLanguage)
		}, nil
	}
}
