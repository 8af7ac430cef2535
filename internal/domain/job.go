package domain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"gollate.dev/pkg/gollate/internal/domain/normalizers"
	"gollate.dev/pkg/gollate/internal/domain/tokenizers"
	m "gollate.dev/pkg/gollate/internal/model"
	"gollate.dev/pkg/gollate/pkg"
)

// Files with these extensions hold pre-tagged witnesses.
var taggedExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// withDefaults fills unset settings with the built-in defaults.
func withDefaults(s m.Settings) m.Settings {
	if s.Tokenizer == "" {
		s.Tokenizer = tokenizers.Default
	}

	if s.Normalizer == "" {
		s.Normalizer = normalizers.Default
	}

	if s.Engine == "" {
		s.Engine = EngineDP
	}

	return s
}

// pipeline is the set of components a job's settings select.
type pipeline struct {
	ingestor Ingestor
	collator Collator
}

func newPipeline(settings m.Settings, threads int) (pipeline, error) {
	tok, err := NewTokenizerByName(settings.Tokenizer)
	if err != nil {
		return pipeline{}, err
	}

	norm, err := NewNormalizerByName(settings.Normalizer)
	if err != nil {
		return pipeline{}, err
	}

	aligner, err := NewAlignerByName(settings.Engine)
	if err != nil {
		return pipeline{}, err
	}

	ingestor, err := NewIngestor(tok, norm, threads)
	if err != nil {
		return pipeline{}, err
	}

	return pipeline{ingestor: ingestor, collator: NewCollator(aligner)}, nil
}

// witnessArg is a command-line witness reference, either `path` or `ID=path`.
type witnessArg struct {
	id   string
	path m.Path
}

// parseWitnessArg splits `ID=path`. The prefix only counts as an id when it is
// non-empty and contains no path separator, so `dir/a=b.txt` stays a path.
func parseWitnessArg(arg string) witnessArg {
	if id, path, ok := strings.Cut(arg, "="); ok && id != "" && path != "" && !strings.ContainsAny(id, `/\`) {
		return witnessArg{id: id, path: m.Path(path)}
	}

	return witnessArg{path: m.Path(arg)}
}

// witnessID derives a siglum from a file name: `texts/A.txt` becomes `A`.
func witnessID(path m.Path) string {
	base := filepath.Base(string(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigurationError{
				Stage:   StageInput,
				Index:   -1,
				Message: fmt.Sprintf("invalid exclude pattern %q", pattern),
				Cause:   err,
			}
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func excluded(path string, excludes []*regexp.Regexp) bool {
	for _, re := range excludes {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

// loadSources resolves command-line arguments into witness sources. Directory
// arguments contribute every non-hidden file directly inside them.
func (w *workflow) loadSources(args []string, excludes []*regexp.Regexp) ([]m.WitnessSource, error) {
	var sources []m.WitnessSource

	for _, raw := range args {
		arg := parseWitnessArg(raw)

		info, err := w.FileInfo(arg.path)
		if err != nil {
			return nil, fmt.Errorf("witness %s: %w", arg.path, err)
		}

		if !info.IsDir() {
			loaded, err := w.loadFile(arg)
			if err != nil {
				return nil, err
			}

			sources = append(sources, loaded...)

			continue
		}

		if arg.id != "" {
			return nil, &ConfigurationError{
				Stage:   StageInput,
				Witness: arg.id,
				Index:   -1,
				Message: fmt.Sprintf("%s is a directory and cannot take a witness id", arg.path),
			}
		}

		loaded, err := w.loadDir(arg.path, excludes)
		if err != nil {
			return nil, err
		}

		sources = append(sources, loaded...)
	}

	return sources, nil
}

func (w *workflow) loadDir(dir m.Path, excludes []*regexp.Regexp) ([]m.WitnessSource, error) {
	var files []m.Path

	err := w.Walk(dir, false, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		if excluded(path, excludes) {
			slog.Debug("Excluded witness file", "path", path)
			return nil
		}

		files = append(files, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list witnesses in %s: %w", dir, err)
	}

	var sources []m.WitnessSource

	for _, file := range files {
		loaded, err := w.loadFile(witnessArg{path: file})
		if err != nil {
			return nil, err
		}

		sources = append(sources, loaded...)
	}

	return sources, nil
}

func (w *workflow) loadFile(arg witnessArg) ([]m.WitnessSource, error) {
	if taggedExtensions[strings.ToLower(filepath.Ext(string(arg.path)))] {
		sources, err := w.ReadTagged(arg.path)
		if err != nil {
			return nil, err
		}

		if arg.id != "" {
			if len(sources) != 1 {
				return nil, &ConfigurationError{
					Stage:   StageInput,
					Witness: arg.id,
					Index:   -1,
					Message: fmt.Sprintf("%s holds %d witnesses, an id can only rename a single one", arg.path, len(sources)),
				}
			}

			sources[0].ID = arg.id
		}

		return sources, nil
	}

	text, err := w.ReadText(arg.path)
	if err != nil {
		return nil, fmt.Errorf("read witness: %w", err)
	}

	digest, err := w.HashFile(arg.path)
	if err != nil {
		return nil, fmt.Errorf("hash witness %s: %w", arg.path, err)
	}

	id := arg.id
	if id == "" {
		id = witnessID(arg.path)
	}

	return []m.WitnessSource{{
		ID:     id,
		Kind:   m.SourcePlain,
		Origin: arg.path,
		Digest: digest,
		Text:   text,
	}}, nil
}

// fingerprintInput is hashed to identify a job: same settings and same witness
// contents under the same ids in the same order give the same fingerprint.
type fingerprintInput struct {
	Settings  m.Settings        `yaml:"settings"`
	Witnesses []fingerprintItem `yaml:"witnesses"`
}

type fingerprintItem struct {
	ID     string `yaml:"id"`
	Digest string `yaml:"digest"`
}

// jobFingerprint returns the content identifier of a job.
func jobFingerprint(settings m.Settings, sources []m.WitnessSource) (string, error) {
	input := fingerprintInput{Settings: settings, Witnesses: make([]fingerprintItem, len(sources))}
	for i, s := range sources {
		input.Witnesses[i] = fingerprintItem{ID: s.ID, Digest: s.Digest}
	}

	data, err := yaml.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode job fingerprint: %w", err)
	}

	return pkg.ContentID(data), nil
}

// digests pairs every source with the content id of its ingested text. Ingest
// keeps sources and witnesses in the same order.
func digests(sources []m.WitnessSource, witnesses []m.Witness) []m.WitnessDigest {
	out := make([]m.WitnessDigest, len(sources))
	for i, s := range sources {
		out[i] = m.WitnessDigest{ID: s.ID, Origin: s.Origin, Digest: s.Digest}
		if i < len(witnesses) {
			out[i].Text = pkg.ContentID([]byte(witnesses[i].Text()))
		}
	}

	return out
}
