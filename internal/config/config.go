package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// Config is a parsed YAML document with every ${VAR} reference in string
// values replaced from the environment. Values are read with
// dot-separated key paths and passed explicitly to constructors; there
// is no process-wide config state.
type Config struct {
	doc interface{}
}

// Load parses the YAML file at path. A .env file sitting next to it is
// loaded into the environment first so ${VAR} references resolve.
func Load(path string) (*Config, error) {
	if envPath := filepath.Join(filepath.Dir(path), ".env"); fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load '%s': %v", envPath, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config '%s': %v", path, err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %v", path, err)
	}

	return &Config{doc: expandEnv(doc)}, nil
}

// Value navigates a dot-separated key path and returns the value there.
func (c *Config) Value(keyPath string) (interface{}, error) {
	current := c.doc
	if keyPath == "" {
		return current, nil
	}
	for _, key := range strings.Split(keyPath, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("key '%s' not found in config", keyPath)
		}
		current, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("key '%s' not found in config", keyPath)
		}
	}
	return current, nil
}

// String returns the string value at a dot-separated key path.
func (c *Config) String(keyPath string) (string, error) {
	v, err := c.Value(keyPath)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key '%s' is not a string", keyPath)
	}
	return s, nil
}

// expandEnv replaces ${VAR} references in every string reachable from
// the document. Unset variables are left verbatim.
func expandEnv(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = expandEnv(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = expandEnv(item)
		}
		return out
	case string:
		return envPattern.ReplaceAllStringFunc(val, func(ref string) string {
			name := envPattern.FindStringSubmatch(ref)[1]
			if env, ok := os.LookupEnv(name); ok {
				return env
			}
			return ref
		})
	default:
		return v
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
