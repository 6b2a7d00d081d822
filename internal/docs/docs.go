// Package docs loads the house playbooks handed to the AI planner as context.
// Local files and http(s) URLs are supported; HTML is reduced to visible text.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// DefaultTimeout bounds a single playbook URL fetch
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with playbook URL fetches
const DefaultUserAgent = "Mozilla/5.0 (compatible; LiquorMarketingAgent/1.0)"

// DefaultPlaybooks returns the playbook paths loaded when none are configured.
func DefaultPlaybooks() []string {
	return []string{
		"data/Marketing_Automation_Playbook.md",
		"data/AGENT_INTEGRATION_GUIDE.md",
		"data/AGENT_QUICK_REFERENCE.txt",
		"data/API_Integration_Guide.md",
	}
}

// Error describes a playbook that could not be loaded
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("doc %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("doc %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Loader reads playbooks. The zero value is not usable; use NewLoader.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a loader. logger may be nil.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Load reads each source in order. Missing or unreadable sources are skipped
// with a warning, so the result may be shorter than sources.
func (l *Loader) Load(ctx context.Context, sources []string) []types.ContextDoc {
	out := make([]types.ContextDoc, 0, len(sources))
	for _, src := range sources {
		doc, err := l.LoadOne(ctx, src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("playbook not found, skipping", "source", src)
			} else {
				l.logger.Warn("playbook skipped", "source", src, "error", err)
			}
			continue
		}
		out = append(out, doc)
	}
	return out
}

// LoadOne reads a single file or URL
func (l *Loader) LoadOne(ctx context.Context, src string) (types.ContextDoc, error) {
	if isURL(src) {
		return l.fetch(ctx, src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return types.ContextDoc{}, &Error{Source: src, Message: "failed to read file", Cause: err}
	}

	content := string(data)
	if isHTMLPath(src) {
		content, err = ExtractText(content)
		if err != nil {
			return types.ContextDoc{}, &Error{Source: src, Message: "failed to extract text", Cause: err}
		}
	}
	return types.ContextDoc{Name: filepath.Base(src), Content: content}, nil
}

func (l *Loader) fetch(ctx context.Context, src string) (types.ContextDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return types.ContextDoc{}, &Error{Source: src, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return types.ContextDoc{}, &Error{Source: src, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.ContextDoc{}, &Error{Source: src, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.ContextDoc{}, &Error{Source: src, Message: "failed to read response body", Cause: err}
	}

	content := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || isHTMLPath(req.URL.Path) {
		content, err = ExtractText(content)
		if err != nil {
			return types.ContextDoc{}, &Error{Source: src, Message: "failed to extract text", Cause: err}
		}
	}

	name := path.Base(req.URL.Path)
	if name == "/" || name == "." || name == "" {
		name = req.URL.Host
	}
	return types.ContextDoc{Name: name, Content: content}, nil
}

func isURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isHTMLPath(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".html" || ext == ".htm"
}
