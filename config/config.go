// Package config reads extractor defaults from the environment.
//
// Keys are read with a prefix, e.g. with prefix "VALIDATION_":
//
//	VALIDATION_JSON_LIMIT=65536
//	VALIDATION_FORM_LIMIT=16384
//	VALIDATION_DISALLOW_UNKNOWN_FIELDS=true
//	VALIDATION_DISALLOW_UNKNOWN_KEYS=false
//	VALIDATION_QUERY_DELIMITER=.
package config

import (
	"fmt"
	"strings"

	"github.com/Roshick/go-autumn-validation/extract"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const DefaultPrefix = "VALIDATION_"

type Settings struct {
	JSONLimit             int64  `koanf:"json_limit" validate:"gte=1"`
	FormLimit             int64  `koanf:"form_limit" validate:"gte=1"`
	DisallowUnknownFields bool   `koanf:"disallow_unknown_fields"`
	DisallowUnknownKeys   bool   `koanf:"disallow_unknown_keys"`
	QueryDelimiter        string `koanf:"query_delimiter" validate:"len=1,excludesall=&=[]"`
}

func DefaultSettings() *Settings {
	return &Settings{
		JSONLimit:      extract.DefaultJSONLimit,
		FormLimit:      extract.DefaultFormLimit,
		QueryDelimiter: string(extract.DefaultQueryDelimiter),
	}
}

// Load reads settings from environment variables starting with prefix. The given dotenv
// files are loaded first; variables already present in the environment take precedence.
func Load(prefix string, dotenvFiles ...string) (*Settings, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if len(dotenvFiles) > 0 {
		if err := godotenv.Load(dotenvFiles...); err != nil {
			return nil, fmt.Errorf("failed to load dotenv files: %w", err)
		}
	}

	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	settings := DefaultSettings()
	if err = k.Unmarshal("", settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err = validator.New().Struct(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func (s *Settings) delimiter() rune {
	return []rune(s.QueryDelimiter)[0]
}

func (s *Settings) JSONOptions() *extract.JSONOptions {
	return extract.DefaultJSONOptions().
		WithLimit(s.JSONLimit).
		WithDisallowUnknownFields(s.DisallowUnknownFields)
}

func (s *Settings) FormOptions() *extract.FormOptions {
	return extract.DefaultFormOptions().
		WithLimit(s.FormLimit).
		WithDelimiter(s.delimiter()).
		WithDisallowUnknownKeys(s.DisallowUnknownKeys)
}

func (s *Settings) QueryOptions() *extract.QueryOptions {
	return extract.DefaultQueryOptions().
		WithDelimiter(s.delimiter()).
		WithDisallowUnknownKeys(s.DisallowUnknownKeys)
}
