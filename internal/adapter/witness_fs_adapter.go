// Package adapter contains infrastructure adapters for the gollate CLI.
package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	m "gollate.dev/pkg/gollate/internal/model"
	"gollate.dev/pkg/gollate/pkg"
)

// ErrInvalidEncoding is returned for witness files that are not valid UTF-8
// (or UTF-16 with a byte order mark).
var ErrInvalidEncoding = errors.New("witness file is not valid UTF-8")

// WitnessFSAdapter hides filesystem access from the workflow so witness loading
// can be tested without touching the disk.
type WitnessFSAdapter interface {
	// Walk traverses root. When recursive is false only the root directory
	// itself is listed.
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ReadText loads a plain witness. A leading byte order mark is consumed and
	// UTF-16 input is decoded; nothing else about the text is changed.
	ReadText(path m.Path) (string, error)

	// ReadTagged loads a file of pre-tagged witnesses (YAML or JSON).
	ReadTagged(path m.Path) ([]m.WitnessSource, error)

	// HashFile returns the content identifier of the file at path.
	HashFile(path m.Path) (string, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalWitnessFSAdapter implements WitnessFSAdapter on the local disk.
type LocalWitnessFSAdapter struct{}

// NewLocalWitnessFSAdapter constructs a LocalWitnessFSAdapter.
func NewLocalWitnessFSAdapter() *LocalWitnessFSAdapter {
	return &LocalWitnessFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalWitnessFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalWitnessFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ReadText reads a plain witness file.
func (a *LocalWitnessFSAdapter) ReadText(path m.Path) (string, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return "", err
	}

	text, err := decodeText(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return string(text), nil
}

// taggedDocument is the on-disk shape of a pre-tagged witness file:
//
//	witnesses:
//	  - id: A
//	    tokens:
//	      - {t: "The ", n: "the"}
//	      - {t: "cat"}
type taggedDocument struct {
	Witnesses []taggedWitness `yaml:"witnesses"`
}

type taggedWitness struct {
	ID     string          `yaml:"id"`
	Tokens []m.TaggedToken `yaml:"tokens"`
}

// ReadTagged parses a pre-tagged witness file. JSON input is accepted because
// it is valid YAML.
func (a *LocalWitnessFSAdapter) ReadTagged(path m.Path) ([]m.WitnessSource, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(text))
	decoder.KnownFields(true)

	var doc taggedDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: no witnesses", path)
		}

		return nil, fmt.Errorf("%s: parse tagged witnesses: %w", path, err)
	}

	if len(doc.Witnesses) == 0 {
		return nil, fmt.Errorf("%s: no witnesses", path)
	}

	sources := make([]m.WitnessSource, 0, len(doc.Witnesses))

	for _, w := range doc.Witnesses {
		canonical, err := yaml.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("%s: witness %q: %w", path, w.ID, err)
		}

		sources = append(sources, m.WitnessSource{
			ID:     w.ID,
			Kind:   m.SourceTagged,
			Origin: path,
			Digest: pkg.ContentID(canonical),
			Tokens: w.Tokens,
		})
	}

	return sources, nil
}

// HashFile returns the CIDv1 of the file at the provided path.
func (a *LocalWitnessFSAdapter) HashFile(path m.Path) (string, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return "", err
	}

	return pkg.ContentID(raw), nil
}

// decodeText strips a byte order mark and decodes UTF-16 when the mark says so.
// Input without a mark must already be UTF-8.
func decodeText(raw []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(encoding.Nop.NewDecoder())

	text, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if !utf8.Valid(text) {
		return nil, ErrInvalidEncoding
	}

	return text, nil
}
