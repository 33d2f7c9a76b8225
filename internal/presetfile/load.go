package presetfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/yacobolo/utilcss"
)

// Format is a preset file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported preset format")

// ParseError reports a decoding or validation failure for one file
type ParseError struct {
	Path string
	Line int // 0 if unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("preset %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("preset %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// FormatFromPath picks the decoder by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads, validates and compiles a preset file.
func Load(path string) (*utilcss.Preset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, &ParseError{Path: path, Line: extractLine(err), Err: err}
	}
	p, err := f.Preset()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return p, nil
}

// LoadAll loads every path in order.
func LoadAll(paths []string) ([]*utilcss.Preset, error) {
	presets := make([]*utilcss.Preset, 0, len(paths))
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// Decode parses and validates a preset file. Unknown keys are errors.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			var de *toml.DecodeError
			if errors.As(err, &de) {
				row, _ := de.Position()
				return nil, fmt.Errorf("line %d: %w", row, err)
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func extractLine(err error) int {
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	line, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0
	}
	return line
}
