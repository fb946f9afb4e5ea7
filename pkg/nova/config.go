package nova

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes what the host seeds into a program's global frame.
//
//	globals:
//	  screen: {width: 80, height: 24}
//	disable: [time]
type Config struct {
	Path    string    `yaml:"-"`
	Globals yaml.Node `yaml:"globals"`
	Disable []string  `yaml:"disable"`
}

// LoadConfig parses a host configuration file from disk.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config, err := ParseConfig(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	config.Path = abs
	return config, nil
}

// ParseConfig decodes a configuration document. Unknown fields are errors.
func ParseConfig(r io.Reader) (*Config, error) {
	config := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, err
	}
	return config, nil
}

// Bindings converts the globals mapping into runtime values, keeping the
// order of mapping keys.
func (config *Config) Bindings() (Bindings, error) {
	bindings := Bindings{}
	if config.Globals.Kind == 0 {
		return bindings, nil
	}
	value, err := nodeToValue(&config.Globals)
	if err != nil {
		return nil, err
	}
	object, ok := value.(*ObjectValue)
	if !ok {
		return nil, fmt.Errorf("config: line %d: globals should be a mapping, got: %v",
			config.Globals.Line, TypeOf(value))
	}
	for _, key := range object.keys {
		bindings[key] = object.entries[key]
	}
	return bindings, nil
}

// Host builds the host surface described by the configuration, printing to out.
func (config *Config) Host(out io.Writer) (Host, error) {
	bindings, err := config.Bindings()
	if err != nil {
		return Host{}, err
	}
	return Host{Out: out, Bindings: bindings, Disable: config.Disable}, nil
}

func nodeToValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return UndefinedValue{}, nil
		}
		return nodeToValue(node.Content[0])
	case yaml.AliasNode:
		return nodeToValue(node.Alias)
	case yaml.MappingNode:
		object := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := nodeToValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			object.Set(node.Content[i].Value, value)
		}
		return object, nil
	case yaml.SequenceNode:
		array := NewArray()
		for _, item := range node.Content {
			value, err := nodeToValue(item)
			if err != nil {
				return nil, err
			}
			array.Append(value)
		}
		return array, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int", "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil, fmt.Errorf("config: line %d: %w", node.Line, err)
			}
			return NumberValue{Val: f}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, fmt.Errorf("config: line %d: %w", node.Line, err)
			}
			return BoolValue{Val: b}, nil
		case "!!null":
			return UndefinedValue{}, nil
		}
		return StringValue{Val: node.Value}, nil
	}
	return nil, fmt.Errorf("config: line %d: unsupported yaml node", node.Line)
}
