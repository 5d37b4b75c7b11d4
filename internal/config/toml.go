package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// tomlParser lets koanf read and write TOML through BurntSushi/toml.
type tomlParser struct{}

func (tomlParser) Unmarshal(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if _, err := toml.Decode(string(data), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
