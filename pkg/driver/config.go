package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file searched for when no explicit config is given.
const ConfigFileName = "calc.yml"

const DefaultPrompt = "calc> "

// Config represents the parsed contents of calc.yml.
type Config struct {
	Path        string
	Prompt      string
	History     string
	Definitions []string
	Scripts     map[string]*ScriptSpec
}

// ScriptSpec describes a named statement script, either a local file or a
// file inside a git repository.
type ScriptSpec struct {
	Name   string
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// IsGit reports whether the script is fetched from a git repository.
func (s *ScriptSpec) IsGit() bool {
	return s != nil && s.Git != ""
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig returns the configuration used when no calc.yml exists.
func DefaultConfig() *Config {
	return &Config{
		Prompt:  DefaultPrompt,
		Scripts: map[string]*ScriptSpec{},
	}
}

// LoadConfig parses calc.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg, err := DecodeConfig(file)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	cfg.Path = absPath
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig reads a config document without validating it. Unknown keys
// are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	return raw.toConfig(), nil
}

// Validate checks the config, aggregating every issue found.
func (c *Config) Validate() error {
	return c.validate()
}

func (c *Config) validate() error {
	var errs ValidationError
	for i, def := range c.Definitions {
		if def == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("definitions[%d] must be a non-empty statement", i))
		}
	}
	names := make([]string, 0, len(c.Scripts))
	for name := range c.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := c.Scripts[name]
		if spec == nil {
			continue
		}
		for _, issue := range spec.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("scripts.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *ScriptSpec) validate() []string {
	var errs []string
	if s.Path == "" {
		errs = append(errs, "path must be provided")
	}
	refs := 0
	for _, ref := range []string{s.Rev, s.Tag, s.Branch} {
		if ref != "" {
			refs++
		}
	}
	if s.Git == "" && refs > 0 {
		errs = append(errs, "rev, tag and branch apply only to git scripts")
	}
	if s.Git != "" && refs != 1 {
		errs = append(errs, "git scripts require exactly one of rev, tag, or branch")
	}
	return errs
}

// FindScript looks up a configured script by name.
func (c *Config) FindScript(name string) (*ScriptSpec, bool) {
	if c == nil {
		return nil, false
	}
	spec, ok := c.Scripts[strings.TrimSpace(name)]
	if !ok || spec == nil {
		return nil, false
	}
	return spec, true
}

// Dir returns the directory holding the config file, or "" for defaults.
func (c *Config) Dir() string {
	if c == nil || c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

type configFile struct {
	Prompt      *string    `yaml:"prompt"`
	History     string     `yaml:"history"`
	Definitions stringList `yaml:"definitions"`
	Scripts     scriptMap  `yaml:"scripts"`
}

type scriptYAML struct {
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

var scriptKeys = map[string]bool{"path": true, "git": true, "rev": true, "tag": true, "branch": true}

type scriptMap map[string]*ScriptSpec

func (sm *scriptMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*sm = make(scriptMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: scripts must be a mapping")
	}
	result := make(scriptMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("config: script names must be non-empty")
		}
		spec, err := decodeScriptSpec(valNode)
		if err != nil {
			return fmt.Errorf("config: script %q: %w", key, err)
		}
		spec.Name = key
		result[key] = spec
	}
	*sm = result
	return nil
}

// decodeScriptSpec accepts either a bare path or a mapping.
func decodeScriptSpec(value *yaml.Node) (*ScriptSpec, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		return &ScriptSpec{Path: strings.TrimSpace(value.Value)}, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !scriptKeys[key.Value] {
				return nil, fmt.Errorf("line %d: field %s not found in script", key.Line, key.Value)
			}
		}
		var raw scriptYAML
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		return &ScriptSpec{
			Path:   strings.TrimSpace(raw.Path),
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
		}, nil
	case yaml.AliasNode:
		return decodeScriptSpec(value.Alias)
	default:
		return nil, fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("config: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (cf configFile) toConfig() *Config {
	cfg := DefaultConfig()
	if cf.Prompt != nil {
		cfg.Prompt = *cf.Prompt
	}
	cfg.History = strings.TrimSpace(cf.History)
	if len(cf.Definitions) > 0 {
		cfg.Definitions = append([]string{}, cf.Definitions...)
	}
	for name, spec := range cf.Scripts {
		if spec == nil {
			continue
		}
		copy := *spec
		cfg.Scripts[name] = &copy
	}
	return cfg
}
