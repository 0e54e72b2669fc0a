package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ontolens/internal/model"
)

// FileSource loads concept edge lists from local files. Supported formats are
// SPARQL results JSON (as saved from an endpoint) and native concept
// documents in JSON, YAML or TOML:
//
//	view: class
//	concepts:
//	  - {id: ex:Animal}
//	  - {id: ex:Dog, parent: ex:Animal, label: Dog, instances: 12}
//	properties:
//	  - {id: ex:Dog, count: 3}
type FileSource struct{}

// NewFileSource creates a file source
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Name returns the source name
func (f *FileSource) Name() string { return "file" }

// CanHandle accepts anything that is not an http(s) URL
func (f *FileSource) CanHandle(location string) bool {
	return !IsRemote(location)
}

// Load reads and decodes a concept file. A view requested by the caller wins
// over the one stored in a native document.
func (f *FileSource) Load(ctx context.Context, path string, view model.View) (*model.ConceptData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read concept file: %w", err)
	}

	data, err := Decode(raw, filepath.Ext(path), view)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Decode parses concept data by file extension (".json", ".srj", ".yaml",
// ".yml" or ".toml")
func Decode(raw []byte, ext string, view model.View) (*model.ConceptData, error) {
	var doc model.ConceptData

	switch strings.ToLower(ext) {
	case ".json", ".srj":
		if looksLikeResults(raw) {
			res, err := DecodeResults(raw)
			if err != nil {
				return nil, err
			}
			if view == "" {
				view = model.ViewClass
			}
			return BindingsToData(view, res)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if view != "" {
		doc.View = view
	}
	if doc.View == "" {
		doc.View = model.ViewClass
	}
	if !doc.View.Valid() {
		return nil, fmt.Errorf("%w: unknown view %q", ErrMalformedResults, doc.View)
	}
	return &doc, nil
}
