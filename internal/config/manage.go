package config

import (
	"fmt"
	"strconv"
)

// KeyValue is one configuration entry for display.
type KeyValue struct {
	Key   string
	Value string
}

// ShowAll returns every configuration key with its effective value, in
// declaration order. Secret values are masked.
func ShowAll(cfg Config) []KeyValue {
	out := make([]KeyValue, 0, len(specs))
	for _, s := range specs {
		v := s.show(&cfg)
		if s.secret && v != "" {
			v = "********"
		}
		out = append(out, KeyValue{Key: s.key, Value: v})
	}
	return out
}

// SetKey validates and persists one configuration value to the file
// backend. Unknown keys and unparsable integers are errors.
func SetKey(key, value string) error {
	return setKey(newFileBackend(), key, value)
}

func setKey(b ConfigBackend, key, value string) error {
	for _, s := range specs {
		if s.key != key {
			continue
		}
		switch s.typ {
		case kInt:
			i, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s expects an integer: %w", key, err)
			}
			return b.SetInt(key, i)
		default:
			return b.SetString(key, value)
		}
	}
	return fmt.Errorf("unknown configuration key %q", key)
}
