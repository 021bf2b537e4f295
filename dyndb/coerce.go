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
	"math/big"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DecodeItem converte um item bruto do SDK em Record, preservando os
// numerais como attributevalue.Number até a coerção.
func DecodeItem(raw map[string]types.AttributeValue) (Record, error) {
	m := make(map[string]any, len(raw))
	err := attributevalue.UnmarshalMapWithOptions(raw, &m, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("dyndb: unmarshal failed: %w", err)
	}
	return CoerceRecord(Record(m))
}

// CoerceRecord aplica CoerceValue em cada atributo. O registro original não é alterado.
func CoerceRecord(rec Record) (Record, error) {
	if rec == nil {
		return nil, nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		cv, err := CoerceValue(v)
		if err != nil {
			return nil, fmt.Errorf("dyndb: attribute %q: %w", k, err)
		}
		out[k] = cv
	}
	return out, nil
}

// CoerceValue troca numerais do wire por tipos nativos:
//   - inteiro que cabe em int64 → int64
//   - inteiro maior que int64 → *big.Int
//   - qualquer outro → float64
//
// Mapas e listas aninhados são percorridos. Demais valores passam intactos.
func CoerceValue(v any) (any, error) {
	switch tv := v.(type) {
	case attributevalue.Number:
		return coerceNumeral(string(tv))
	case []attributevalue.Number:
		out := make([]any, len(tv))
		for i, n := range tv {
			cv, err := coerceNumeral(string(n))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			cv, err := CoerceValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	case Record:
		return CoerceRecord(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			cv, err := CoerceValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	default:
		return v, nil
	}
}

func coerceNumeral(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("dyndb: invalid numeral %q", s)
	}
	if r.IsInt() {
		// "2.0" e "1e3" também são inteiros
		if r.Num().IsInt64() {
			return r.Num().Int64(), nil
		}
		return new(big.Int).Set(r.Num()), nil
	}
	f, _ := r.Float64()
	return f, nil
}
