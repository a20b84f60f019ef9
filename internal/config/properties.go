package config

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"
)

// readProperties parses a key=value parameter file. A key without a value
// is rejected, since every parameter is numeric or boolean.
func readProperties(r io.Reader) (map[string]any, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p, err := properties.Load(buf, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	values := make(map[string]any, p.Len())
	for _, key := range p.Keys() {
		value := p.MustGetString(key)
		if value == "" {
			return nil, fmt.Errorf("%w: %s: missing value", ErrInvalidConfig, key)
		}
		values[key] = value
	}
	return values, nil
}
