package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, detectUnknownFields(data), nil
}

// nestedSections maps object-valued root keys to their struct types.
var nestedSections = map[string]reflect.Type{
	"store":   reflect.TypeOf(StoreConfig{}),
	"parse":   reflect.TypeOf(ParseConfig{}),
	"output":  reflect.TypeOf(OutputConfig{}),
	"metrics": reflect.TypeOf(MetricsConfig{}),
}

// detectUnknownFields compares raw JSON with known struct fields.
// Warnings are sorted so output is stable.
func detectUnknownFields(data []byte) []string {
	var warnings []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// The data already parsed into Config, so this is an internal inconsistency.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	knownTopLevel := getJSONFields(reflect.TypeOf(Config{}))
	for key, value := range raw {
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
			continue
		}
		if section, ok := nestedSections[key]; ok {
			warnings = append(warnings, checkSectionUnknownFields(key, value, section)...)
		}
	}

	sort.Strings(warnings)
	return warnings
}

func checkSectionUnknownFields(name string, data json.RawMessage, t reflect.Type) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil // null or a type error the schema reports
	}

	var warnings []string
	known := getJSONFields(t)
	for key := range fields {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, name))
		}
	}
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			fields[name] = true
		}
	}
	return fields
}
