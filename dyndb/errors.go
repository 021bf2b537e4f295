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
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound – erro padrão quando o item não existe
	ErrNotFound = errors.New("dyndb: item not found")

	ErrInvalidPrimaryKey = errors.New("dyndb: primary key must have one or two attribute names")
	ErrKeyArity          = errors.New("dyndb: key values do not match primary key")
	ErrInvalidToken      = errors.New("dyndb: invalid continuation token")
	ErrUnknownIndex      = errors.New("dyndb: unknown index")
	ErrQueryOnlyOption   = errors.New("dyndb: option is only valid for query")

	// ErrSequenceConsumed é entregue quando uma sequência de QueryAll/ScanAll
	// é percorrida uma segunda vez.
	ErrSequenceConsumed = errors.New("dyndb: sequence already consumed")

	// ErrSchemaValidation é a causa de todo *SchemaError.
	ErrSchemaValidation = errors.New("dyndb: schema validation failed")
)

// SchemaError é retornado quando um registro não satisfaz o modelo declarado.
// Nunca representa uma falha do backend.
type SchemaError struct {
	// Fields lista os campos reprovados pelo validador, quando conhecidos.
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: fields [%s]: %v", ErrSchemaValidation, strings.Join(e.Fields, ", "), e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrSchemaValidation, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrSchemaValidation).
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaValidation
}

func newSchemaError(err error) *SchemaError {
	se := &SchemaError{Err: err}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			se.Fields = append(se.Fields, fe.Namespace())
		}
	}
	return se
}

// IsResourceNotFound indica que a tabela (ou índice) não existe no backend.
func IsResourceNotFound(err error) bool {
	var rnf *types.ResourceNotFoundException
	return errors.As(err, &rnf)
}

// IsConditionalCheckFailed indica que a condição de uma escrita não foi satisfeita.
func IsConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// IsThrottled indica que o backend recusou a requisição por limite de capacidade.
// O pacote não faz retry; a decisão fica com o chamador.
func IsThrottled(err error) bool {
	var pte *types.ProvisionedThroughputExceededException
	if errors.As(err, &pte) {
		return true
	}
	var rle *types.RequestLimitExceeded
	if errors.As(err, &rle) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			return true
		}
	}
	return false
}
