package channel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk channel seed format.
type File struct {
	Channels []Options `yaml:"channels"`
}

// ParseFile decodes a YAML channel seed.
//
// Postcondition: every returned option has a name starting with "#".
func ParseFile(data []byte) ([]Options, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing channel file: %w", err)
	}
	for i, o := range f.Channels {
		if len(o.Name) < 2 || o.Name[0] != '#' {
			return nil, fmt.Errorf("channel %d: name %q must start with '#'", i, o.Name)
		}
	}
	return f.Channels, nil
}

// LoadFile reads and decodes a YAML channel seed from path.
func LoadFile(path string) ([]Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading channel file: %w", err)
	}
	return ParseFile(data)
}

// Seed adds every option to r, skipping names that already exist.
//
// Postcondition: Returns the number of channels added.
func (r *Registry) Seed(opts []Options) int {
	added := 0
	for _, o := range opts {
		if err := r.Add(New(o)); err != nil {
			continue
		}
		added++
	}
	return added
}
