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
	"math"
	"math/big"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Model constrói e valida um T a partir de um registro já normalizado.
// Erros de validação devem ser *SchemaError.
type Model[T any] func(Record) (T, error)

// RecordModel devolve o próprio registro. É o modelo das tabelas sem esquema.
func RecordModel(rec Record) (Record, error) {
	return rec, nil
}

// Validated decodifica o registro em T usando as tags `dynamodbav` e aplica as
// tags `validate` de T. Com v nil é usado um validador padrão.
func Validated[T any](v *validator.Validate) Model[T] {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return func(rec Record) (T, error) {
		var out T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:    "dynamodbav",
			Result:     &out,
			DecodeHook: exactIntegerHook,
		})
		if err != nil {
			return out, newSchemaError(err)
		}
		if err := dec.Decode(map[string]any(rec)); err != nil {
			return out, newSchemaError(err)
		}
		if err := v.Struct(out); err != nil {
			return out, newSchemaError(err)
		}
		return out, nil
	}
}

// exactIntegerHook impede que números sejam truncados ou estourem campos
// inteiros: frações, valores não finitos e overflow viram erro de esquema.
func exactIntegerHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	target := reflect.New(to).Elem()
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := wholeNumber(data)
		if err != nil || n == nil {
			return data, err
		}
		if !n.IsInt64() || target.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("value %s overflows %s", n, to)
		}
		return n.Int64(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := wholeNumber(data)
		if err != nil || n == nil {
			return data, err
		}
		if !n.IsUint64() || target.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("value %s overflows %s", n, to)
		}
		return n.Uint64(), nil
	}
	return data, nil
}

// wholeNumber devolve nil quando data não é numérico.
func wholeNumber(data any) (*big.Int, error) {
	switch v := data.(type) {
	case int64:
		return big.NewInt(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("value %v is not a whole number", v)
		}
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	}
	return nil, nil
}
