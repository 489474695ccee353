package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/engine"
)

// Tool name constants.
const (
	ToolNameConvert      = "vue2inula_convert"
	ToolNameValidateTags = "vue2inula_validate_tags"
)

// MaxSourceInputBytes is the maximum allowed size for inline input (1 MB).
const MaxSourceInputBytes = 1 << 20

const defaultFileName = "Component.vue"

// Sentinel errors for tool input validation.
var (
	// ErrEmptySource indicates the source parameter is empty.
	ErrEmptySource = errors.New("source parameter is required and must not be empty")
	// ErrSourceTooLarge indicates the input exceeds the size limit.
	ErrSourceTooLarge = errors.New("source input exceeds maximum size")
	// ErrInvalidFileName indicates a file name that is not a .vue base name.
	ErrInvalidFileName = errors.New("file_name must be a .vue file name")
)

// ConvertInput is the input schema for the vue2inula_convert tool.
type ConvertInput struct {
	Source           string   `json:"source"                      jsonschema:"the complete .vue single-file component"`
	FileName         string   `json:"file_name,omitempty"         jsonschema:"file name used for the component name (default Component.vue)"`
	AdapterSource    string   `json:"adapter_source,omitempty"    jsonschema:"module providing the Vue compatibility hooks"`
	TargetExtension  string   `json:"target_extension,omitempty"  jsonschema:"extension of the generated module (e.g. .jsx or .tsx)"`
	GlobalProperties []string `json:"global_properties,omitempty" jsonschema:"extra $-prefixed instance properties provided globally"`
}

func (in ConvertInput) sourceSize() int { return len(in.Source) }

// ValidateTagsInput is the input schema for the vue2inula_validate_tags tool.
type ValidateTagsInput struct {
	Document string `json:"document" jsonschema:"tag map as JSON or YAML"`
}

func (in ValidateTagsInput) sourceSize() int { return len(in.Document) }

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateSource(source string) error {
	if source == "" {
		return ErrEmptySource
	}

	if len(source) > MaxSourceInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, len(source), MaxSourceInputBytes)
	}

	return nil
}

func (s *Server) handleConvert(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ConvertInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSource(input.Source)
	if err != nil {
		return errorResult(err)
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = defaultFileName
	}

	if filepath.Ext(fileName) != ".vue" || filepath.Base(fileName) != fileName {
		return errorResult(fmt.Errorf("%w: %q", ErrInvalidFileName, fileName))
	}

	opts := s.opts
	if input.AdapterSource != "" {
		opts.AdapterSource = input.AdapterSource
	}

	if input.TargetExtension != "" {
		opts.TargetExtension = input.TargetExtension
	}

	if len(input.GlobalProperties) > 0 {
		opts.ExtraGlobalProperties = append(slices.Clone(opts.ExtraGlobalProperties), input.GlobalProperties...)
	}

	out, err := engine.ConvertSFC(ctx, fileName, []byte(input.Source), opts)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(out)
}

func handleValidateTags(
	_ context.Context, _ *mcpsdk.CallToolRequest, input ValidateTagsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	tags, err := config.ParseTags([]byte(input.Document))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(tags)
}
