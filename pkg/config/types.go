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
	"time"

	"github.com/raywall/dyntable/dyndb"
)

// Config representa a estrutura raiz do arquivo YAML do serviço.
type Config struct {
	Version string            `yaml:"version" validate:"required"`
	Table   dyndb.TableConfig `yaml:"table" validate:"required"`
	AWS     AWSConf           `yaml:"aws"`
	Server  ServerConf        `yaml:"server"`
	Read    ReadConf          `yaml:"read"`
	Logging LoggingConf       `yaml:"logging"`
	Metrics MetricsConf       `yaml:"metrics"`
}

// AWSConf contém região e, para ambiente local, o endpoint alternativo
// (ex: DynamoDB Local ou LocalStack).
type AWSConf struct {
	Region   string `yaml:"region" env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	Profile  string `yaml:"profile" env:"AWS_PROFILE"`
}

// ServerConf define como a API de leitura é exposta.
type ServerConf struct {
	Runtime string `yaml:"runtime" env:"SERVER_RUNTIME" envDefault:"local" validate:"oneof=local lambda"`
	Port    int    `yaml:"port" env:"PORT" envDefault:"8080" validate:"required_if=Runtime local,lte=65535"`
	Route   string `yaml:"route" validate:"omitempty,startswith=/"`
	Timeout string `yaml:"timeout" env:"SERVER_TIMEOUT" envDefault:"10s"` // Ex: "500ms", "2s"
}

// ReadConf contém os defaults aplicados às leituras expostas pela API.
type ReadConf struct {
	PageLimit  int32 `yaml:"page_limit" env:"PAGE_LIMIT" envDefault:"100" validate:"gte=1,lte=1000"`
	Consistent bool  `yaml:"consistent" env:"CONSISTENT_READ"`
}

// LoggingConf: logs ficam ligados a menos que disabled seja true.
type LoggingConf struct {
	Disabled bool   `yaml:"disabled" env:"LOG_DISABLED"`
	Level    string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace" env:"DD_NAMESPACE"`
	Prefix    string   `yaml:"prefix"`
	Tags      []string `yaml:"tags" env:"DD_TAGS"`
}

// RoutePrefix retorna a rota base da API (default "/items").
func (s ServerConf) RoutePrefix() string {
	if s.Route == "" {
		return "/items"
	}
	return s.Route
}

// GetTimeout converte o timeout do servidor; valores inválidos caem em 30s.
func (s ServerConf) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
