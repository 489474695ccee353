package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/openInula/inula-sub000/pkg/engine/directive"
)

//go:embed tags.schema.json
var tagsSchema []byte

// ErrInvalidTags indicates a tag map that does not match the tag schema.
var ErrInvalidTags = errors.New("tag map does not match schema")

// TagsSchema returns the embedded JSON schema for tag maps.
func TagsSchema() []byte {
	return tagsSchema
}

// LoadTagsFile reads a JSON or YAML tag map and validates it.
func LoadTagsFile(path string) (map[string]directive.TagRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tags file: %w", err)
	}

	tags, err := ParseTags(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tags, nil
}

// ParseTags decodes a JSON or YAML tag map, validates it against the tag
// schema and returns the rules keyed by source tag.
func ParseTags(data []byte) (map[string]directive.TagRule, error) {
	var doc any

	decodeErr := yaml.Unmarshal(data, &doc)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode tags: %w", decodeErr)
	}

	if doc == nil {
		return map[string]directive.TagRule{}, nil
	}

	validateErr := ValidateTags(doc)
	if validateErr != nil {
		return nil, validateErr
	}

	// The document is schema-checked, so a JSON round trip maps it onto the rule type.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	var tags map[string]directive.TagRule

	unmarshalErr := json.Unmarshal(raw, &tags)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode tags: %w", unmarshalErr)
	}

	return tags, nil
}

// ValidateTags checks a decoded tag map against the embedded schema.
func ValidateTags(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(tagsSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate tags: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidTags, strings.Join(details, "; "))
}
