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

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient abstrai o subconjunto do cliente DynamoDB usado pela tabela.
// *dynamodb.Client satisfaz esta interface.
type DynamoDBClient interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TableConfig define a identidade da tabela.
//
// Campos vazios podem ser preenchidos pelas variáveis de ambiente via envloader.
type TableConfig struct {
	TableName string `yaml:"name" env:"DYNAMODB_TABLE_NAME" validate:"required"`
	HashKey   string `yaml:"hash_key" env:"DYNAMODB_HASH_KEY" validate:"required"`
	SortKey   string `yaml:"sort_key" env:"DYNAMODB_SORT_KEY"` // opcional
}

// PrimaryKey monta a chave primária normalizada a partir da configuração.
func (c TableConfig) PrimaryKey() (PrimaryKey, error) {
	if c.SortKey == "" {
		return NormalizePrimaryKey(c.HashKey)
	}
	return NormalizePrimaryKey([2]string{c.HashKey, c.SortKey})
}

// Record é um item já normalizado: números chegam como int64, *big.Int ou
// float64, nunca como o numeral textual do wire.
type Record map[string]any

// Page é o resultado de uma única requisição Query ou Scan.
type Page[T any] struct {
	Items []T
	// LastEvaluatedKey vazio indica que não há mais páginas.
	LastEvaluatedKey map[string]types.AttributeValue
}

// HasMore informa se existe uma próxima página.
func (p Page[T]) HasMore() bool {
	return len(p.LastEvaluatedKey) > 0
}

// Token serializa LastEvaluatedKey em um token opaco. Retorna "" na última página.
func (p Page[T]) Token() (string, error) {
	return EncodeToken(p.LastEvaluatedKey)
}
