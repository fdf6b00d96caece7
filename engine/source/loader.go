package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/plexify/plexify/engine/infra/cache"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

// MaxTextFileSizeBytes caps plain text and markdown sources.
const MaxTextFileSizeBytes = 8 << 20

var candidateExtensions = []string{"", ".pdf", ".txt", ".md"}

type extractFunc func(ctx context.Context, path string) (string, error)

// Loader resolves project document ids to files and extracts their text.
type Loader struct {
	root           string
	defaultProject string
	cache          cache.TextCache
	extractPDF     extractFunc
}

func NewLoader(cfg *config.SourcesConfig, textCache cache.TextCache) *Loader {
	if textCache == nil {
		textCache = cache.Nop()
	}
	return &Loader{
		root:           cfg.RootDir,
		defaultProject: cfg.DefaultProject,
		cache:          textCache,
		extractPDF:     extractPDF,
	}
}

// ProjectDir returns the directory holding projectID's documents.
func (l *Loader) ProjectDir(projectID string) (string, error) {
	if projectID == "" {
		projectID = l.defaultProject
	}
	if strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return "", fmt.Errorf("%w %q", ErrInvalidProject, projectID)
	}
	return filepath.Join(l.root, projectID), nil
}

// Load reads every requested document. Documents that fail are reported in
// Result.Missing; a *LoadError is returned only when nothing could be read.
func (l *Loader) Load(ctx context.Context, projectID string, ids []string) (*Result, error) {
	if len(ids) == 0 {
		return nil, ErrNoDocuments
	}
	if projectID == "" {
		projectID = l.defaultProject
	}
	dir, err := l.ProjectDir(projectID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("project_id", projectID)
	manifest, err := readManifest(dir)
	if err != nil {
		log.Warn("Ignoring unreadable source manifest", "error", err)
	}
	res := &Result{ProjectID: projectID}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, miss := l.loadOne(ctx, dir, manifest, id)
		if miss != nil {
			log.Warn("Source document not loaded", "source_id", id, "path", miss.Path, "reason", miss.Reason)
			res.Missing = append(res.Missing, *miss)
			continue
		}
		res.Sources = append(res.Sources, *src)
	}
	if len(res.Sources) == 0 {
		available, _ := l.AvailablePDFs(projectID)
		return nil, &LoadError{ProjectID: projectID, Dir: dir, Missing: res.Missing, Available: available}
	}
	log.Debug("Loaded source documents", "loaded", len(res.Sources), "missing", len(res.Missing))
	return res, nil
}

// AvailablePDFs lists the PDF file names in the project directory.
func (l *Loader) AvailablePDFs(projectID string) ([]string, error) {
	dir, err := l.ProjectDir(projectID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source: list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, e.Name())
	}
	slices.Sort(out)
	return out, nil
}

func (l *Loader) loadOne(ctx context.Context, dir string, m *Manifest, id string) (*Source, *Missing) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &Missing{ID: id, Reason: "empty document id"}
	}
	label := strings.TrimSuffix(id, filepath.Ext(id))
	names := make([]string, 0, len(candidateExtensions))
	if entry, ok := m.lookup(id); ok {
		names = append(names, entry.File)
		if entry.Label != "" {
			label = entry.Label
		}
	} else {
		for _, ext := range candidateExtensions {
			names = append(names, id+ext)
		}
	}
	path, err := resolve(dir, names)
	if err != nil {
		return nil, &Missing{ID: id, Path: filepath.Join(dir, names[0]), Reason: err.Error()}
	}
	text, err := l.text(ctx, path)
	if err != nil {
		return nil, &Missing{ID: id, Path: path, Reason: err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &Missing{ID: id, Path: path, Reason: "no extractable text"}
	}
	return &Source{ID: id, Label: label, Path: path, Text: text}, nil
}

func resolve(dir string, names []string) (string, error) {
	for _, name := range names {
		if name == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if !within(dir, path) {
			return "", fmt.Errorf("path escapes project directory")
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !symlinkInside(dir, path) {
			return "", fmt.Errorf("path escapes project directory")
		}
		return path, nil
	}
	return "", fmt.Errorf("file not found")
}

// within reports whether target lies under root after lexical cleaning.
func within(root, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// symlinkInside repeats the containment check on resolved paths so a link
// inside the project cannot point outside it.
func symlinkInside(root, target string) bool {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false
	}
	resolvedTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	return within(resolvedRoot, resolvedTarget)
}

// text returns the document text, consulting the cache first. Concurrent
// misses for the same file compute the same value.
func (l *Loader) text(ctx context.Context, path string) (string, error) {
	key, err := cacheKey(path)
	if err != nil {
		return "", err
	}
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.FromContext(ctx).Warn("Text cache read failed", "error", err)
	}
	text, err := l.extract(ctx, path)
	if err != nil {
		return "", err
	}
	if err := l.cache.Set(ctx, key, text); err != nil {
		logger.FromContext(ctx).Warn("Text cache write failed", "error", err)
	}
	return text, nil
}

func cacheKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("source: resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("source: stat %q: %w", path, err)
	}
	return fmt.Sprintf("%s:%d:%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}

func (l *Loader) extract(ctx context.Context, path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	switch {
	case mt.Is("application/pdf"):
		return l.extractPDF(ctx, path)
	case strings.HasPrefix(mt.String(), "text/"):
		return readTextFile(path)
	default:
		return "", fmt.Errorf("unsupported document type %s", mt.String())
	}
}

func readTextFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxTextFileSizeBytes+1))
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxTextFileSizeBytes {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", MaxTextFileSizeBytes)
	}
	return normalizeText(string(data)), nil
}

func extractPDF(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return normalizeText(buf.String()), nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
