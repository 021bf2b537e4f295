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
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/raywall/dyntable/dyndb"
	"github.com/raywall/dyntable/envloader"
	"github.com/raywall/dyntable/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// S3Downloader abstrai o GetObject do S3 (Permite Mocking).
type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Load é o atalho usado pela CLI.
func Load(ctx context.Context, source string) (*Config, error) {
	return NewUniversalLoader().Load(ctx, source)
}

// UniversalLoader suporta múltiplas fontes de configuração:
//
//	config.yaml | file://config.yaml
//	s3://bucket/path/config.yaml
//	dynamodb://tabela/chave?col=config&pk=id
//
// Uma fonte vazia monta a configuração só com variáveis de ambiente.
type UniversalLoader struct {
	validator *ConfigValidator
	injector  *injector.Injector
	s3        S3Downloader
	dynamo    dyndb.DynamoDBClient
	envOpts   []envloader.Option
	lookup    func(string) (string, bool)
	dotenv    []string
}

type LoaderOption func(*UniversalLoader)

func WithS3Client(c S3Downloader) LoaderOption {
	return func(ul *UniversalLoader) { ul.s3 = c }
}

func WithDynamoClient(c dyndb.DynamoDBClient) LoaderOption {
	return func(ul *UniversalLoader) { ul.dynamo = c }
}

func WithInjector(inj *injector.Injector) LoaderOption {
	return func(ul *UniversalLoader) { ul.injector = inj }
}

// WithLookup troca a fonte das variáveis de ambiente (default: os.LookupEnv).
func WithLookup(fn func(string) (string, bool)) LoaderOption {
	return func(ul *UniversalLoader) { ul.lookup = fn }
}

// WithDotEnv lê arquivos .env como fallback das variáveis de ambiente.
// Variáveis já definidas no processo têm precedência.
func WithDotEnv(files ...string) LoaderOption {
	return func(ul *UniversalLoader) { ul.dotenv = append(ul.dotenv, files...) }
}

// WithEnvOptions repassa opções (prefixo, lookup) ao envloader.
func WithEnvOptions(opts ...envloader.Option) LoaderOption {
	return func(ul *UniversalLoader) { ul.envOpts = append(ul.envOpts, opts...) }
}

// NewUniversalLoader cria uma nova instância.
func NewUniversalLoader(opts ...LoaderOption) *UniversalLoader {
	ul := &UniversalLoader{validator: NewValidator(), lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(ul)
	}
	return ul
}

// envLookup combina a fonte de variáveis com os arquivos .env configurados.
func (ul *UniversalLoader) envLookup() (func(string) (string, bool), error) {
	if len(ul.dotenv) == 0 {
		return ul.lookup, nil
	}
	values, err := godotenv.Read(ul.dotenv...)
	if err != nil {
		return nil, fmt.Errorf("config: read dotenv: %w", err)
	}
	base := ul.lookup
	return func(key string) (string, bool) {
		if v, ok := base(key); ok && v != "" {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// Load detecta o esquema da fonte e carrega a configuração.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*Config, error) {
	var rawData []byte
	var err error

	switch {
	case source == "":
	case strings.HasPrefix(source, "s3://"):
		rawData, err = ul.loadFromS3(ctx, source)
	case strings.HasPrefix(source, "dynamodb://"):
		rawData, err = ul.loadFromDynamoDB(ctx, source)
	default:
		rawData, err = ul.loadFromFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", source, err)
	}

	return ul.parseAndValidate(ctx, rawData)
}

// --- Estratégias de carregamento ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (ul *UniversalLoader) loadFromS3(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 url: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 url %q: bucket and key are required", uri)
	}

	if ul.s3 == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		ul.s3 = s3.NewFromConfig(cfg)
	}

	out, err := ul.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDB lê o YAML guardado como string em um item.
// Query Params opcionais: dynamodb://tabela/chave?col=dado&pk=ServiceName
func (ul *UniversalLoader) loadFromDynamoDB(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid dynamodb url: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")
	if tableName == "" || pkValue == "" {
		return nil, fmt.Errorf("invalid dynamodb url %q: table and key are required", uri)
	}

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	if ul.dynamo == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		ul.dynamo = dynamodb.NewFromConfig(cfg)
	}

	table, err := dyndb.Open(tableName, pkName, dyndb.NewClientProvider(ul.dynamo))
	if err != nil {
		return nil, err
	}

	item, err := table.GetItem(ctx, pkValue)
	if err != nil {
		if errors.Is(err, dyndb.ErrNotFound) {
			return nil, fmt.Errorf("config item %q not found in table %q", pkValue, tableName)
		}
		return nil, err
	}

	content, ok := item[colName].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("column %q is missing or not a string", colName)
	}
	return []byte(content), nil
}

// parseAndValidate: YAML, injeção (${env}/${ssm}/${secret}), env e validação.
func (ul *UniversalLoader) parseAndValidate(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config

	lookup, err := ul.envLookup()
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: malformed yaml: %w", err)
		}
	}

	inj := ul.injector
	if inj == nil {
		region, _ := lookup("AWS_REGION")
		inj = injector.New(injector.WithRegion(region), injector.WithLookup(lookup))
	}
	if err := inj.Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: injection failed: %w", err)
	}

	envOpts := append([]envloader.Option{envloader.WithLookup(lookup)}, ul.envOpts...)
	if err := envloader.Load(&cfg, envOpts...); err != nil {
		return nil, fmt.Errorf("config: env override failed: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = "1.0"
	}

	if err := ul.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
