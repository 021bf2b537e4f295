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
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/sync/singleflight"
)

// TableResource é o handle já resolvido de uma tabela: o cliente mais a
// descrição obtida do backend. Todas as chamadas saem com TableName preenchido.
type TableResource struct {
	client DynamoDBClient
	name   string
	desc   *types.TableDescription
}

// NewTableResource monta um handle sem consultar o backend. desc pode ser nil.
func NewTableResource(client DynamoDBClient, name string, desc *types.TableDescription) *TableResource {
	return &TableResource{client: client, name: name, desc: desc}
}

func (r *TableResource) Name() string { return r.name }

// Description retorna a descrição resolvida (pode ser nil).
func (r *TableResource) Description() *types.TableDescription { return r.desc }

// IndexHashKey procura o atributo de partição de um GSI/LSI na descrição da tabela.
func (r *TableResource) IndexHashKey(index string) (string, bool) {
	if r.desc == nil {
		return "", false
	}
	for _, gsi := range r.desc.GlobalSecondaryIndexes {
		if aws.ToString(gsi.IndexName) == index {
			return hashKeyOf(gsi.KeySchema)
		}
	}
	for _, lsi := range r.desc.LocalSecondaryIndexes {
		if aws.ToString(lsi.IndexName) == index {
			return hashKeyOf(lsi.KeySchema)
		}
	}
	return "", false
}

func hashKeyOf(schema []types.KeySchemaElement) (string, bool) {
	for _, el := range schema {
		if el.KeyType == types.KeyTypeHash {
			return aws.ToString(el.AttributeName), true
		}
	}
	return "", false
}

func (r *TableResource) Query(ctx context.Context, in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	in.TableName = aws.String(r.name)
	return r.client.Query(ctx, in)
}

func (r *TableResource) Scan(ctx context.Context, in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	in.TableName = aws.String(r.name)
	return r.client.Scan(ctx, in)
}

func (r *TableResource) GetItem(ctx context.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	in.TableName = aws.String(r.name)
	return r.client.GetItem(ctx, in)
}

func (r *TableResource) PutItem(ctx context.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	in.TableName = aws.String(r.name)
	return r.client.PutItem(ctx, in)
}

func (r *TableResource) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	in.TableName = aws.String(r.name)
	return r.client.DeleteItem(ctx, in)
}

// ResourceProvider resolve o handle de uma tabela pelo nome.
type ResourceProvider interface {
	Table(ctx context.Context, name string) (*TableResource, error)
}

// ProviderFunc adapta uma função para ResourceProvider.
type ProviderFunc func(ctx context.Context, name string) (*TableResource, error)

func (f ProviderFunc) Table(ctx context.Context, name string) (*TableResource, error) {
	return f(ctx, name)
}

// ClientProvider resolve tabelas com DescribeTable, o que também confirma
// que a tabela existe antes da primeira leitura.
type ClientProvider struct {
	client DynamoDBClient
}

func NewClientProvider(client DynamoDBClient) *ClientProvider {
	return &ClientProvider{client: client}
}

func (p *ClientProvider) Table(ctx context.Context, name string) (*TableResource, error) {
	out, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	if out.Table != nil && out.Table.TableStatus == types.TableStatusDeleting {
		return nil, fmt.Errorf("dyndb: table %q is being deleted", name)
	}
	return NewTableResource(p.client, name, out.Table), nil
}

// resourceCache guarda o handle resolvido. Chamadas concorrentes durante a
// primeira resolução aguardam a mesma chamada ao provider; falhas não ficam
// em cache.
type resourceCache struct {
	provider  ResourceProvider
	name      string
	timeout   time.Duration
	group     singleflight.Group
	onResolve func(*TableResource)

	mu  sync.RWMutex
	res *TableResource
}

func newResourceCache(provider ResourceProvider, name string, timeout time.Duration, onResolve func(*TableResource)) *resourceCache {
	return &resourceCache{provider: provider, name: name, timeout: timeout, onResolve: onResolve}
}

func (c *resourceCache) cached() *TableResource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.res
}

func (c *resourceCache) get(ctx context.Context) (*TableResource, error) {
	if res := c.cached(); res != nil {
		return res, nil
	}

	// a resolução é compartilhada: o cancelamento de um chamador não derruba
	// os demais, mas ela nunca passa de c.timeout
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.name, func() (any, error) {
		if res := c.cached(); res != nil {
			return res, nil
		}
		rctx, cancel := context.WithTimeout(shared, c.timeout)
		defer cancel()
		res, err := c.provider.Table(rctx, c.name)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, errors.New("provider returned no resource")
		}
		c.mu.Lock()
		c.res = res
		c.mu.Unlock()
		if c.onResolve != nil {
			c.onResolve(res)
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, fmt.Errorf("dyndb: resolve table %q: %w", c.name, r.Err)
		}
		return r.Val.(*TableResource), nil
	}
}
