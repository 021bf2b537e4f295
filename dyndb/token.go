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
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mr-tron/base58"
)

// tokenAttr é a forma serializável de um atributo de chave (S, N ou B).
type tokenAttr struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
	B []byte  `json:"B,omitempty"`
}

// EncodeToken comprime a chave de continuação em um token opaco
// (JSON → gzip → base58). Chave vazia gera "".
func EncodeToken(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	wire := make(map[string]tokenAttr, len(key))
	for name, av := range key {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			s := v.Value
			wire[name] = tokenAttr{S: &s}
		case *types.AttributeValueMemberN:
			n := v.Value
			wire[name] = tokenAttr{N: &n}
		case *types.AttributeValueMemberB:
			wire[name] = tokenAttr{B: v.Value}
		default:
			return "", fmt.Errorf("dyndb: key attribute %q has unsupported type %T", name, av)
		}
	}

	buf := new(bytes.Buffer)
	wr := gzip.NewWriter(buf)
	if err := json.NewEncoder(wr).Encode(wire); err != nil {
		return "", err
	}
	if err := wr.Close(); err != nil {
		return "", err
	}
	return base58.Encode(buf.Bytes()), nil
}

// DecodeToken é o inverso de EncodeToken. Token vazio gera chave nil.
func DecodeToken(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	defer r.Close()

	var wire map[string]tokenAttr
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	key := make(map[string]types.AttributeValue, len(wire))
	for name, a := range wire {
		switch {
		case a.S != nil:
			key[name] = &types.AttributeValueMemberS{Value: *a.S}
		case a.N != nil:
			key[name] = &types.AttributeValueMemberN{Value: *a.N}
		case a.B != nil:
			key[name] = &types.AttributeValueMemberB{Value: a.B}
		default:
			return nil, fmt.Errorf("%w: attribute %q is empty", ErrInvalidToken, name)
		}
	}
	return key, nil
}
