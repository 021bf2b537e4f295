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
package easyrepo

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/raywall/dyntable/dyndb"
)

var (
	ErrItemNotFound      = dyndb.ErrNotFound
	ErrInvalidInput      = errors.New("easyrepo: invalid input")
	ErrItemAlreadyExists = errors.New("easyrepo: item already exists")
)

// EasyRepository faz a comunicação direta com a tabela (dyndb).
// Os métodos são internos ao pacote, o uso previsto é através do EasyService.
type EasyRepository[T any] struct {
	table *dyndb.Table[T]
}

func NewRepository[T any](table *dyndb.Table[T]) *EasyRepository[T] {
	return &EasyRepository[T]{table: table}
}

// keyOf extrai os valores da chave primária de um item, na ordem da chave.
func (r *EasyRepository[T]) keyOf(item *T) ([]any, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := r.table.PrimaryKey()
	values := make([]any, len(key))
	for i, name := range key {
		raw, ok := av[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing key attribute %q", ErrInvalidInput, name)
		}
		var v any
		if err := attributevalue.UnmarshalWithOptions(raw, &v, func(o *attributevalue.DecoderOptions) {
			o.UseNumber = true
		}); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// list lê uma página via Scan; token vazio começa do início.
func (r *EasyRepository[T]) list(ctx context.Context, token string, limit int32) ([]T, string, error) {
	opts := []dyndb.ReadOption{dyndb.WithStartToken(token)}
	if limit > 0 {
		opts = append(opts, dyndb.WithLimit(limit))
	}
	page, err := r.table.Scan(ctx, opts...)
	if err != nil {
		return nil, "", err
	}
	next, err := page.Token()
	return page.Items, next, err
}

func (r *EasyRepository[T]) listByHash(ctx context.Context, hash any, token string, limit int32) ([]T, string, error) {
	opts := []dyndb.ReadOption{dyndb.WithStartToken(token)}
	if limit > 0 {
		opts = append(opts, dyndb.WithLimit(limit))
	}
	page, err := r.table.Query(ctx, hash, opts...)
	if err != nil {
		return nil, "", err
	}
	next, err := page.Token()
	return page.Items, next, err
}

func (r *EasyRepository[T]) all(ctx context.Context) iter.Seq2[T, error] {
	return r.table.ScanAll(ctx)
}

func (r *EasyRepository[T]) get(ctx context.Context, keyValues ...any) (T, error) {
	return r.table.GetItem(ctx, keyValues...)
}

func (r *EasyRepository[T]) put(ctx context.Context, item *T) error {
	return r.table.PutItem(ctx, item)
}

func (r *EasyRepository[T]) delete(ctx context.Context, keyValues ...any) error {
	return r.table.DeleteItem(ctx, keyValues...)
}
