// Package corpus loads externally supplied documents and assembles the
// file-context block injected into every participant prompt.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

const defaultMaxFileBytes = 2 << 20

var defaultExtensions = []string{
	".txt", ".md", ".markdown", ".csv", ".tsv", ".json", ".yaml", ".yml", ".log", ".xml",
}

type LoaderOption func(*Loader)

// WithExtensions replaces the text-extension allowlist used when walking
// directories. Extensions are matched case-insensitively.
func WithExtensions(exts []string) LoaderOption {
	return func(l *Loader) {
		if len(exts) == 0 {
			return
		}
		l.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			l.extensions[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
		}
	}
}

func WithMaxFileBytes(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxFileBytes = n
		}
	}
}

type Loader struct {
	extensions   map[string]struct{}
	maxFileBytes int64
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{maxFileBytes: defaultMaxFileBytes}
	WithExtensions(defaultExtensions)(l)

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load resolves each path to file records: files are read directly,
// directories are walked recursively with the extension allowlist. Unreadable
// or undecodable entries are skipped and reported as warnings; loading never
// aborts because of a single bad path.
func (l *Loader) Load(paths []string) ([]contractx.FileRecord, []contractx.Warning) {
	var (
		records  []contractx.FileRecord
		warnings []contractx.Warning
	)

	warn := func(path string, reason string) {
		log.Warn().Str("path", path).Str("reason", reason).Msg("skipping data source")
		warnings = append(warnings, contractx.Warning{
			Kind:    contractx.WarnFileLoad,
			Message: fmt.Sprintf("%s: %s", path, reason),
		})
	}

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			warn(path, err.Error())
			continue
		}

		if !info.IsDir() {
			// Explicitly named files bypass the extension allowlist.
			rec, err := l.readFile(path, info.Size())
			if err != nil {
				warn(path, err.Error())
				continue
			}
			records = append(records, rec)
			continue
		}

		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				warn(p, err.Error())
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := l.extensions[strings.ToLower(filepath.Ext(p))]; !ok {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				warn(p, err.Error())
				return nil
			}
			rec, err := l.readFile(p, fi.Size())
			if err != nil {
				warn(p, err.Error())
				return nil
			}
			records = append(records, rec)
			return nil
		})
		if walkErr != nil {
			warn(path, walkErr.Error())
		}
	}

	return records, warnings
}

func (l *Loader) readFile(path string, size int64) (contractx.FileRecord, error) {
	if size > l.maxFileBytes {
		return contractx.FileRecord{}, fmt.Errorf("file exceeds %d bytes", l.maxFileBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return contractx.FileRecord{}, err
	}
	if !utf8.Valid(raw) {
		return contractx.FileRecord{}, fmt.Errorf("content is not valid UTF-8")
	}

	content := string(raw)
	return contractx.FileRecord{
		Filename: filepath.Base(path),
		Path:     path,
		Content:  content,
		Size:     len([]rune(content)),
	}, nil
}
