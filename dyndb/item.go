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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// GetItem lê um item pela chave primária (valores na ordem da chave).
// Retorna ErrNotFound quando o item não existe.
func (t *Table[T]) GetItem(ctx context.Context, keyValues ...any) (T, error) {
	var zero T
	key, err := t.key.AttributeKey(keyValues...)
	if err != nil {
		return zero, err
	}
	res, err := t.Resource(ctx)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	out, err := res.GetItem(ctx, &dynamodb.GetItemInput{
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		t.metrics.Observe("get", start, 0, err)
		return zero, fmt.Errorf("dyndb: get failed: %w", err)
	}
	if out.Item == nil {
		t.metrics.Observe("get", start, 0, nil)
		return zero, ErrNotFound
	}
	t.metrics.Observe("get", start, 1, nil)

	return t.CoerceRaw(out.Item)
}

// PutItem grava (upsert) um item. item pode ser um Record, um map ou uma
// struct com tags `dynamodbav`; os atributos da chave primária são obrigatórios.
func (t *Table[T]) PutItem(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dyndb: marshal failed: %w", err)
	}
	for _, name := range t.key {
		if _, ok := av[name]; !ok {
			return fmt.Errorf("%w: item is missing key attribute %q", ErrKeyArity, name)
		}
	}
	res, err := t.Resource(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = res.PutItem(ctx, &dynamodb.PutItemInput{Item: av})
	t.metrics.Observe("put", start, 1, err)
	if err != nil {
		return fmt.Errorf("dyndb: put failed: %w", err)
	}
	return nil
}

// DeleteItem remove um item pela chave primária. Remover um item inexistente não é erro.
func (t *Table[T]) DeleteItem(ctx context.Context, keyValues ...any) error {
	key, err := t.key.AttributeKey(keyValues...)
	if err != nil {
		return err
	}
	res, err := t.Resource(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = res.DeleteItem(ctx, &dynamodb.DeleteItemInput{Key: key})
	t.metrics.Observe("delete", start, 1, err)
	if err != nil {
		return fmt.Errorf("dyndb: delete failed: %w", err)
	}
	return nil
}
