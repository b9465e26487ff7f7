package cfgutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ParseTOML parses a TOML config from an io.Reader.
func ParseTOML(r io.Reader, dst any) error {
	return toml.NewDecoder(r).Decode(dst)
}

// ParseJSON parses a JSON config from an io.Reader.
func ParseJSON(r io.Reader, dst any) error {
	return json.NewDecoder(r).Decode(dst)
}

// Parse parses a reader.
func Parse(f io.Reader, configType string, dst any) error {
	switch configType {
	case "toml":
		return ParseTOML(f, dst)
	case "json":
		return ParseJSON(f, dst)
	default:
		return fmt.Errorf("unsupported config type %s", configType)
	}
}

// ParseFile parses a config file from a path. The file extension is used to
// determine the config format.
func ParseFile[T any](path string) (*T, error) {
	ext := filepath.Ext(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	var v T
	err = Parse(f, strings.TrimPrefix(ext, "."), &v)
	return &v, err
}
