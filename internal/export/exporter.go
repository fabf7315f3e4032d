// Package export renders an assembled hypothesis into reviewable artifacts:
// indented JSON for tooling and markdown for design documents, optionally
// wrapped in a zstd-compressed bundle for archival.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"archscope/internal/hypothesis"
	"archscope/internal/logging"
)

// Options controls one export
type Options struct {
	// Format is "json" or "markdown"
	Format string

	// Compress wraps the written file in zstd
	Compress bool

	// Dir is the output directory
	Dir string
}

// Exporter writes hypotheses to disk
type Exporter struct {
	logger *logging.Logger
}

// NewExporter creates a new exporter
func NewExporter(logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{logger: logger.WithComponent("export")}
}

// Render serializes a hypothesis in the requested format.
func (e *Exporter) Render(h hypothesis.Hypothesis, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return json.MarshalIndent(h, "", "  ")
	case "markdown":
		return []byte(e.FormatMarkdown(h)), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// FormatMarkdown renders the hypothesis as a design-document section.
func (e *Exporter) FormatMarkdown(h hypothesis.Hypothesis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Change Hypothesis: %s\n\n", h.Request))
	sb.WriteString(fmt.Sprintf("Session: %s | State: %s\n\n", h.SessionID, h.State))

	sb.WriteString("## Impacted Domains\n\n")
	if len(h.Impacts) == 0 {
		sb.WriteString("No domains matched.\n\n")
	} else {
		sb.WriteString("| Domain | Impact | Confidence | Components |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, row := range h.Impacts {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				row.Domain, row.Impact, row.Confidence, strings.Join(row.Components, ", ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Component Changes\n\n")
	for _, c := range h.Components {
		marker := ""
		if c.Speculative {
			marker = " (speculative)"
		}
		sb.WriteString(fmt.Sprintf("### %s%s\n\n", c.Component, marker))
		sb.WriteString(fmt.Sprintf("Domain: %s | Change: %s\n\n", c.Domain, c.ChangeKind))
		for _, change := range c.ProbableChanges {
			sb.WriteString(fmt.Sprintf("- %s\n", change))
		}
		if len(c.ProbableChanges) > 0 {
			sb.WriteString("\n")
		}
	}

	if len(h.Edges) > 0 {
		sb.WriteString("## Dependencies\n\n")
		for _, edge := range h.Edges {
			sb.WriteString(fmt.Sprintf("- %s -> %s via %s (%s)\n", edge.From, edge.To, edge.Via, edge.Kind))
		}
		sb.WriteString("\n")
	}

	if len(h.OpenQuestions) > 0 {
		sb.WriteString("## Open Questions\n\n")
		for _, q := range h.OpenQuestions {
			sb.WriteString(fmt.Sprintf("- [%s] %s: %s\n", q.Priority, q.ID, q.Prompt))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Write renders the hypothesis and writes it under opts.Dir, returning the
// written path. Compressed bundles get a .zst suffix.
func (e *Exporter) Write(h hypothesis.Hypothesis, opts Options) (string, error) {
	data, err := e.Render(h, opts.Format)
	if err != nil {
		return "", err
	}

	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := h.SessionID
	if name == "" {
		name = time.Now().UTC().Format("20060102-150405")
	}
	ext := "json"
	if opts.Format == "markdown" {
		ext = "md"
	}
	path := filepath.Join(opts.Dir, fmt.Sprintf("hypothesis-%s.%s", name, ext))

	if opts.Compress {
		path += ".zst"
		data, err = compress(data)
		if err != nil {
			return "", fmt.Errorf("failed to compress export: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	e.logger.Info("hypothesis exported", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})
	return path, nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress reverses a compressed bundle, for reading archived exports.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
