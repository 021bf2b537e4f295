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
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ReadOption ajusta uma requisição Query ou Scan.
type ReadOption func(*readOptions)

type readOptions struct {
	limit      *int32
	startKey   map[string]types.AttributeValue
	startToken string
	index      *string
	indexHash  string
	sortCond   *expression.KeyConditionBuilder
	filter     *expression.ConditionBuilder
	projection *expression.ProjectionBuilder
	consistent *bool
	forward    *bool
}

// WithLimit limita a quantidade de itens avaliados por página.
func WithLimit(n int32) ReadOption {
	return func(o *readOptions) { o.limit = aws.Int32(n) }
}

// WithStartKey continua a leitura a partir de Page.LastEvaluatedKey.
// Chave nil ou vazia começa do início.
func WithStartKey(key map[string]types.AttributeValue) ReadOption {
	return func(o *readOptions) {
		o.startKey = key
		o.startToken = ""
	}
}

// WithStartToken é WithStartKey a partir do token de Page.Token.
func WithStartToken(token string) ReadOption {
	return func(o *readOptions) {
		o.startToken = token
		o.startKey = nil
	}
}

// WithIndex consulta um índice secundário. Sem hashKey, o atributo de
// partição do índice é lido da descrição da tabela.
func WithIndex(name string, hashKey ...string) ReadOption {
	return func(o *readOptions) {
		o.index = aws.String(name)
		o.indexHash = ""
		if len(hashKey) > 0 {
			o.indexHash = hashKey[0]
		}
	}
}

// WithSortKey acrescenta uma condição sobre a chave de ordenação à Query,
// ex: expression.Key("sk").BeginsWith("order#"). Scan rejeita esta opção
// com ErrQueryOnlyOption.
func WithSortKey(cond expression.KeyConditionBuilder) ReadOption {
	return func(o *readOptions) { o.sortCond = &cond }
}

// WithFilter aplica um filtro após a leitura. Vários filtros são combinados com AND.
func WithFilter(cond expression.ConditionBuilder) ReadOption {
	return func(o *readOptions) {
		if o.filter == nil {
			o.filter = &cond
			return
		}
		tmp := o.filter.And(cond)
		o.filter = &tmp
	}
}

// WithProjection restringe os atributos retornados.
func WithProjection(names ...string) ReadOption {
	return func(o *readOptions) {
		if len(names) == 0 {
			return
		}
		proj := expression.NamesList(expression.Name(names[0]))
		for _, n := range names[1:] {
			proj = proj.AddNames(expression.Name(n))
		}
		o.projection = &proj
	}
}

func WithConsistentRead(consistent bool) ReadOption {
	return func(o *readOptions) { o.consistent = aws.Bool(consistent) }
}

// WithScanForward define a ordem da Query pela chave de ordenação (default: crescente).
// Só vale para Query.
func WithScanForward(forward bool) ReadOption {
	return func(o *readOptions) { o.forward = aws.Bool(forward) }
}

func newReadOptions(opts []ReadOption) (*readOptions, error) {
	o := &readOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.startToken != "" {
		key, err := DecodeToken(o.startToken)
		if err != nil {
			return nil, err
		}
		o.startKey = key
	}
	if len(o.startKey) == 0 {
		o.startKey = nil
	}
	return o, nil
}

// Query executa uma única requisição com condição de igualdade sobre a chave
// de partição. Para percorrer todas as páginas use QueryAll.
func (t *Table[T]) Query(ctx context.Context, hashValue any, opts ...ReadOption) (Page[T], error) {
	ro, err := newReadOptions(opts)
	if err != nil {
		return Page[T]{}, err
	}
	res, err := t.Resource(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	in, err := t.queryInput(res, hashValue, ro)
	if err != nil {
		return Page[T]{}, err
	}

	start := time.Now()
	out, err := res.Query(ctx, in)
	if err != nil {
		t.metrics.Observe("query", start, 0, err)
		return Page[T]{}, fmt.Errorf("dyndb: query failed: %w", err)
	}
	t.metrics.Observe("query", start, len(out.Items), nil)

	return t.page("query", out.Items, out.LastEvaluatedKey)
}

// Scan executa uma única requisição de varredura. Para percorrer todas as
// páginas use ScanAll.
func (t *Table[T]) Scan(ctx context.Context, opts ...ReadOption) (Page[T], error) {
	ro, err := newReadOptions(opts)
	if err != nil {
		return Page[T]{}, err
	}
	in, err := t.scanInput(ro)
	if err != nil {
		return Page[T]{}, err
	}
	res, err := t.Resource(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	start := time.Now()
	out, err := res.Scan(ctx, in)
	if err != nil {
		t.metrics.Observe("scan", start, 0, err)
		return Page[T]{}, fmt.Errorf("dyndb: scan failed: %w", err)
	}
	t.metrics.Observe("scan", start, len(out.Items), nil)

	return t.page("scan", out.Items, out.LastEvaluatedKey)
}

func (t *Table[T]) page(op string, items []map[string]types.AttributeValue, last map[string]types.AttributeValue) (Page[T], error) {
	converted, err := t.convertAll(items)
	if err != nil {
		return Page[T]{}, err
	}
	if len(last) == 0 {
		last = nil
	}

	t.logger.Debug().
		Str("op", op).
		Int("items", len(converted)).
		Bool("has_more", last != nil).
		Msg("page fetched")

	return Page[T]{Items: converted, LastEvaluatedKey: last}, nil
}

func (t *Table[T]) queryInput(res *TableResource, hashValue any, ro *readOptions) (*dynamodb.QueryInput, error) {
	hashName := t.key.HashKey()
	if ro.index != nil {
		hashName = ro.indexHash
		if hashName == "" {
			name, ok := res.IndexHashKey(*ro.index)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, *ro.index)
			}
			hashName = name
		}
	}

	keyCond := expression.Key(hashName).Equal(expression.Value(hashValue))
	if ro.sortCond != nil {
		keyCond = keyCond.And(*ro.sortCond)
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if ro.filter != nil {
		builder = builder.WithFilter(*ro.filter)
	}
	if ro.projection != nil {
		builder = builder.WithProjection(*ro.projection)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("dyndb: build query expression: %w", err)
	}

	return &dynamodb.QueryInput{
		IndexName:                 ro.index,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     ro.limit,
		ConsistentRead:            ro.consistent,
		ScanIndexForward:          ro.forward,
		ExclusiveStartKey:         ro.startKey,
	}, nil
}

func (t *Table[T]) scanInput(ro *readOptions) (*dynamodb.ScanInput, error) {
	if ro.sortCond != nil {
		return nil, fmt.Errorf("%w: WithSortKey", ErrQueryOnlyOption)
	}
	if ro.forward != nil {
		return nil, fmt.Errorf("%w: WithScanForward", ErrQueryOnlyOption)
	}
	in := &dynamodb.ScanInput{
		IndexName:         ro.index,
		Limit:             ro.limit,
		ConsistentRead:    ro.consistent,
		ExclusiveStartKey: ro.startKey,
	}
	if ro.filter == nil && ro.projection == nil {
		return in, nil
	}

	builder := expression.NewBuilder()
	if ro.filter != nil {
		builder = builder.WithFilter(*ro.filter)
	}
	if ro.projection != nil {
		builder = builder.WithProjection(*ro.projection)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("dyndb: build scan expression: %w", err)
	}

	in.FilterExpression = expr.Filter()
	in.ProjectionExpression = expr.Projection()
	in.ExpressionAttributeNames = expr.Names()
	in.ExpressionAttributeValues = expr.Values()
	return in, nil
}
