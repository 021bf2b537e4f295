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
package dyndb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dyntable/envloader"
	"github.com/raywall/dyntable/pkg/metrics"
	"github.com/rs/zerolog"
)

// Table é o acesso a uma tabela DynamoDB. Itens lidos saem como T: Record
// quando a tabela não tem modelo, ou o tipo construído pelo Model informado.
//
// Uma Table pode ser usada por várias goroutines ao mesmo tempo.
type Table[T any] struct {
	name    string
	key     PrimaryKey
	cache   *resourceCache
	model   Model[T]
	logger  zerolog.Logger
	metrics *metrics.Recorder
}

// Option configura uma Table.
type Option func(*tableOptions)

type tableOptions struct {
	logger         zerolog.Logger
	provider       metrics.Provider
	prefix         string
	resolveTimeout time.Duration
}

// DefaultResolveTimeout limita a resolução compartilhada do handle da tabela.
const DefaultResolveTimeout = 30 * time.Second

// WithLogger define o logger (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(o *tableOptions) { o.logger = l }
}

// WithMetrics publica as métricas operacionais no provider, com o prefixo
// "dyndb" e a tag table:<nome>.
func WithMetrics(p metrics.Provider) Option {
	return func(o *tableOptions) { o.provider = p }
}

// WithMetricsPrefix troca o prefixo das métricas.
func WithMetricsPrefix(prefix string) Option {
	return func(o *tableOptions) { o.prefix = prefix }
}

// WithResolveTimeout troca o limite da resolução do handle. Valores <= 0
// mantêm DefaultResolveTimeout.
func WithResolveTimeout(d time.Duration) Option {
	return func(o *tableOptions) {
		if d > 0 {
			o.resolveTimeout = d
		}
	}
}

// Open cria o acesso a uma tabela sem esquema. keySpec segue
// NormalizePrimaryKey ("pk" ou [2]string{"pk", "sk"}).
//
// Nenhuma chamada ao backend acontece aqui; o handle é resolvido na primeira operação.
func Open(name string, keySpec any, provider ResourceProvider, opts ...Option) (*Table[Record], error) {
	return OpenModel(name, keySpec, provider, RecordModel, opts...)
}

// OpenModel cria o acesso a uma tabela cujos itens são construídos por model.
// Com model nil é usado Validated[T](nil).
func OpenModel[T any](name string, keySpec any, provider ResourceProvider, model Model[T], opts ...Option) (*Table[T], error) {
	if name == "" {
		return nil, errors.New("dyndb: table name is required")
	}
	if provider == nil {
		return nil, errors.New("dyndb: resource provider is required")
	}
	key, err := NormalizePrimaryKey(keySpec)
	if err != nil {
		return nil, err
	}
	if model == nil {
		model = Validated[T](nil)
	}

	o := tableOptions{logger: zerolog.Nop(), prefix: "dyndb", resolveTimeout: DefaultResolveTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table[T]{
		name:   name,
		key:    key,
		model:  model,
		logger: o.logger.With().Str("table", name).Logger(),
	}
	if o.provider != nil {
		t.metrics = metrics.NewRecorder(o.provider, o.prefix, "table:"+name)
	}
	t.cache = newResourceCache(provider, name, o.resolveTimeout, t.resolved)
	return t, nil
}

// OpenConfig é Open a partir de TableConfig. Com TableName vazio, a
// configuração é lida das variáveis de ambiente (DYNAMODB_TABLE_NAME, ...).
func OpenConfig(cfg TableConfig, provider ResourceProvider, opts ...Option) (*Table[Record], error) {
	if cfg.TableName == "" {
		if err := envloader.Load(&cfg); err != nil {
			return nil, fmt.Errorf("dyndb: load table config: %w", err)
		}
	}
	key, err := cfg.PrimaryKey()
	if err != nil {
		return nil, err
	}
	return Open(cfg.TableName, key, provider, opts...)
}

func (t *Table[T]) resolved(res *TableResource) {
	ev := t.logger.Debug()
	if d := res.Description(); d != nil {
		ev = ev.Str("status", string(d.TableStatus))
	}
	ev.Msg("table resource resolved")
	_ = t.metrics.Emit(metrics.MetricResolve, 1)
}

func (t *Table[T]) Name() string { return t.name }

// PrimaryKey retorna a chave normalizada da tabela.
func (t *Table[T]) PrimaryKey() PrimaryKey { return t.key }

// KeyFromValues associa os valores aos atributos da chave primária.
func (t *Table[T]) KeyFromValues(values ...any) (map[string]any, error) {
	return t.key.KeyFromValues(values...)
}

// Resource retorna o handle da tabela, resolvendo-o na primeira chamada.
// Chamadas concorrentes compartilham a mesma resolução; uma falha não fica
// em cache e a próxima chamada tenta de novo.
func (t *Table[T]) Resource(ctx context.Context) (*TableResource, error) {
	return t.cache.get(ctx)
}

// CoerceItem normaliza os numerais do registro e aplica o modelo da tabela.
func (t *Table[T]) CoerceItem(rec Record) (T, error) {
	coerced, err := CoerceRecord(rec)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.model(coerced)
}

// CoerceRaw é CoerceItem para um item ainda no formato do SDK.
func (t *Table[T]) CoerceRaw(raw map[string]types.AttributeValue) (T, error) {
	rec, err := DecodeItem(raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.model(rec)
}

func (t *Table[T]) convertAll(raw []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		v, err := t.CoerceRaw(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
