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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PrimaryKey é a tupla ordenada de nomes de atributos que compõem a chave:
// (hash) ou (hash, sort).
type PrimaryKey []string

// NormalizePrimaryKey aceita string, []string, [1]string, [2]string ou
// PrimaryKey e devolve a forma canônica.
func NormalizePrimaryKey(keySpec any) (PrimaryKey, error) {
	var names []string
	switch v := keySpec.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	case [1]string:
		names = v[:]
	case [2]string:
		names = v[:]
	case PrimaryKey:
		names = v
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrInvalidPrimaryKey, keySpec)
	}

	if len(names) < 1 || len(names) > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPrimaryKey, len(names))
	}
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: empty attribute name", ErrInvalidPrimaryKey)
		}
	}
	if len(names) == 2 && names[0] == names[1] {
		return nil, fmt.Errorf("%w: duplicated attribute %q", ErrInvalidPrimaryKey, names[0])
	}

	key := make(PrimaryKey, len(names))
	copy(key, names)
	return key, nil
}

// HashKey retorna o nome do atributo de partição.
func (k PrimaryKey) HashKey() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// SortKey retorna o nome do atributo de ordenação ou "" quando a chave é simples.
func (k PrimaryKey) SortKey() string {
	if len(k) < 2 {
		return ""
	}
	return k[1]
}

func (k PrimaryKey) IsComposite() bool { return len(k) == 2 }

// KeyFromValues associa cada valor ao atributo de mesma posição.
// Quantidade de valores diferente da aridade da chave é rejeitada.
func (k PrimaryKey) KeyFromValues(values ...any) (map[string]any, error) {
	if len(values) != len(k) {
		return nil, fmt.Errorf("%w: want %d values for %v, got %d", ErrKeyArity, len(k), []string(k), len(values))
	}
	out := make(map[string]any, len(k))
	for i, name := range k {
		out[name] = values[i]
	}
	return out, nil
}

// AttributeKey é KeyFromValues já serializado para GetItem/DeleteItem.
func (k PrimaryKey) AttributeKey(values ...any) (map[string]types.AttributeValue, error) {
	key, err := k.KeyFromValues(values...)
	if err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, fmt.Errorf("dyndb: marshal key failed: %w", err)
	}
	return av, nil
}
