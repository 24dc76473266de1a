package registry

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// Template is the single line written to a newly created registry file.
const Template = "#NAMEOFCLIENT:SCRIP1;SCRIP2;SCRIP3..."

// LineIssue records a registry line that was skipped.
type LineIssue struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Registry is the parsed content of a client registry file.
type Registry struct {
	Path       string
	Portfolios []domain.ClientPortfolio
	// Created is true when the file did not exist and the template was written.
	Created bool
	Skipped []LineIssue
}

// Notice returns a *errors.RegistryMissingError when the registry file had to
// be created, nil otherwise. It is informational and never a failure.
func (r *Registry) Notice() error {
	if r == nil || !r.Created {
		return nil
	}
	return &errors.RegistryMissingError{Path: r.Path}
}

// Names returns the client names in file order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Portfolios))
	for _, p := range r.Portfolios {
		names = append(names, p.Name)
	}
	return names
}

// Loader reads client registries.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a registry loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "registry"))}
}

// Load reads the registry at path. A missing file is created from Template
// and yields an empty registry with Created set.
func (l *Loader) Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, os.ErrNotExist) {
		if err := WriteTemplate(path); err != nil {
			return nil, err
		}
		l.logger.Warn("client registry not found, template created",
			slog.String("path", path))
		return &Registry{Path: path, Created: true}, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to open client registry", err).WithContext("path", path)
	}
	defer f.Close()

	reg, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reg.Path = path
	return reg, nil
}

// Parse reads registry lines from r.
func (l *Loader) Parse(r io.Reader) (*Registry, error) {
	reg := &Registry{}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		portfolio, reason := parseLine(trimmed)
		if reason != "" {
			l.logger.Warn("skipping malformed registry line",
				slog.Int("line", lineNo),
				slog.String("text", text),
				slog.String("reason", reason))
			reg.Skipped = append(reg.Skipped, LineIssue{Line: lineNo, Text: text, Reason: reason})
			continue
		}

		if _, dup := seen[portfolio.Name]; dup {
			return nil, &errors.DuplicateClientNameError{Name: portfolio.Name}
		}
		seen[portfolio.Name] = struct{}{}
		reg.Portfolios = append(reg.Portfolios, portfolio)
		l.logger.Debug("client loaded",
			slog.String("client", portfolio.Name),
			slog.Any("scrips", portfolio.ScripList()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParsingError("failed to read client registry", err)
	}

	l.logger.Debug("client registry loaded",
		slog.Int("clients", len(reg.Portfolios)),
		slog.Int("skipped", len(reg.Skipped)))
	return reg, nil
}

func parseLine(line string) (domain.ClientPortfolio, string) {
	name, list, ok := strings.Cut(line, ":")
	if !ok {
		return domain.ClientPortfolio{}, "missing ':' separator"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ClientPortfolio{}, "empty client name"
	}

	var scrips []string
	for _, tok := range strings.Split(list, ";") {
		if tok = strings.TrimSpace(tok); tok != "" {
			scrips = append(scrips, tok)
		}
	}
	if len(scrips) == 0 {
		return domain.ClientPortfolio{}, "no scrips listed"
	}
	return domain.NewClientPortfolio(name, scrips), ""
}

// WriteTemplate creates a registry file at path containing only Template.
// An existing file is left untouched.
func WriteTemplate(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewStorageError("failed to create registry directory", err).WithContext("path", dir)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return nil
		}
		return errors.NewStorageError("failed to create client registry", err).WithContext("path", path)
	}
	if _, err := f.WriteString(Template + "\n"); err != nil {
		f.Close()
		return errors.NewStorageError("failed to write client registry template", err).WithContext("path", path)
	}
	return f.Close()
}
