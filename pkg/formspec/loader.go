package formspec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tutordash/pkg/model"
)

//go:embed schema/form.schema.json
var documentSchema []byte

var (
	// ErrInvalidDocument is returned when a file fails schema validation.
	ErrInvalidDocument = errors.New("formspec: invalid form document")
	// ErrDuplicateForm is returned when two files define the same form id.
	ErrDuplicateForm = errors.New("formspec: duplicate form id")
)

// Schema returns the JSON Schema form documents are validated against.
func Schema() []byte {
	return append([]byte(nil), documentSchema...)
}

type document struct {
	Forms []model.FormSpec `json:"forms"`
}

// LoadOption configures LoadFS.
type LoadOption func(*loadConfig)

type loadConfig struct {
	validators Validators
}

// WithValidators resolves validation.custom names against validators instead
// of DefaultValidators.
func WithValidators(validators Validators) LoadOption {
	return func(cfg *loadConfig) {
		if validators != nil {
			cfg.validators = validators
		}
	}
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("formspec: compile schema: %w", err)
	}
	return schema, nil
})

func newLoadConfig(opts []LoadOption) loadConfig {
	cfg := loadConfig{validators: DefaultValidators()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// LoadFS walks fsys and parses every .json, .yaml and .yml file as a form
// document. Each document is checked against Schema, its custom validators are
// attached and the resulting forms must satisfy the descriptor invariants.
// A nil fsys yields an empty store.
func LoadFS(fsys fs.FS, opts ...LoadOption) (*Store, error) {
	cfg := newLoadConfig(opts)
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	err = fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formspec: read %s: %w", path, err)
		}
		forms, err := cfg.prepare(schema, data, path)
		if err != nil {
			return err
		}
		for _, spec := range forms {
			if err := store.Add(spec); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ParseDocument parses a single form document named source, applying the
// same checks as LoadFS.
func ParseDocument(data []byte, source string, opts ...LoadOption) ([]model.FormSpec, error) {
	cfg := newLoadConfig(opts)
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	return cfg.prepare(schema, data, source)
}

func (cfg loadConfig) prepare(schema *gojsonschema.Schema, data []byte, source string) ([]model.FormSpec, error) {
	forms, err := parseDocument(schema, data, source)
	if err != nil {
		return nil, err
	}
	for idx := range forms {
		spec := &forms[idx]
		if err := cfg.validators.Attach(spec); err != nil {
			return nil, fmt.Errorf("formspec: form %q (file %s): %w", spec.ID, source, err)
		}
		if err := Check(*spec); err != nil {
			return nil, fmt.Errorf("formspec: form %q (file %s): %w", spec.ID, source, err)
		}
	}
	return forms, nil
}

func parseDocument(schema *gojsonschema.Schema, data []byte, source string) ([]model.FormSpec, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("formspec: file %s is empty", source)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("formspec: parse %s: %w", source, err)
	}
	normalizeScalars(raw)

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("formspec: validate %s: %w", source, err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return nil, fmt.Errorf("%w %s: %s", ErrInvalidDocument, source, strings.Join(messages, "; "))
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("formspec: re-encode %s: %w", source, err)
	}
	var doc document
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("formspec: decode %s: %w", source, err)
	}
	return doc.Forms, nil
}

// normalizeScalars turns numeric min/max/step attributes into strings so YAML
// authors can write `min: 1`.
func normalizeScalars(raw any) {
	root, ok := raw.(map[string]any)
	if !ok {
		return
	}
	forms, _ := root["forms"].([]any)
	for _, item := range forms {
		formMap, _ := item.(map[string]any)
		fields, _ := formMap["fields"].([]any)
		for _, rawField := range fields {
			field, ok := rawField.(map[string]any)
			if !ok {
				continue
			}
			for _, key := range []string{"min", "max", "step"} {
				switch value := field[key].(type) {
				case int, int64, float64, uint64:
					field[key] = fmt.Sprint(value)
				}
			}
		}
	}
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
