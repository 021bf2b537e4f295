// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed on rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("structural validation errors:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("structural validation error: %w", err)
	}

	// 2. Validação Semântica
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("semantic validation error: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	// hash e sort precisam formar uma chave válida
	if _, err := cfg.Table.PrimaryKey(); err != nil {
		return err
	}

	if cfg.Server.Timeout != "" {
		d, err := time.ParseDuration(cfg.Server.Timeout)
		if err != nil {
			return fmt.Errorf("invalid server timeout %q: %w", cfg.Server.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("server timeout must be positive, got %s", d)
		}
	}

	for _, tag := range cfg.Metrics.Datadog.Tags {
		if !strings.Contains(tag, ":") {
			return fmt.Errorf("metric tag %q must use the key:value format", tag)
		}
	}

	return nil
}
