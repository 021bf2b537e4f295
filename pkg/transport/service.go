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
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator/v10"
	"github.com/raywall/dyntable/dyndb"
	"github.com/raywall/dyntable/pkg/config"
	"github.com/rs/zerolog"
)

// MaxPageLimit é o maior limit aceito por página.
const MaxPageLimit = 1000

// keyValidator aceita apenas números decimais (sem NaN, Inf ou hexadecimal).
var keyValidator = validator.New()

// ItemReader é o subconjunto de *dyndb.Table[dyndb.Record] exposto pela API.
type ItemReader interface {
	Query(ctx context.Context, hashValue any, opts ...dyndb.ReadOption) (dyndb.Page[dyndb.Record], error)
	Scan(ctx context.Context, opts ...dyndb.ReadOption) (dyndb.Page[dyndb.Record], error)
	GetItem(ctx context.Context, keyValues ...any) (dyndb.Record, error)
	PrimaryKey() dyndb.PrimaryKey
	Resource(ctx context.Context) (*dyndb.TableResource, error)
}

// Service agrupa o que os adaptadores HTTP e Lambda precisam.
type Service struct {
	Table  ItemReader
	Config *config.Config
	Logger zerolog.Logger
}

// PageResponse é o corpo JSON de Query e Scan.
type PageResponse struct {
	Items     []dyndb.Record `json:"items"`
	Count     int            `json:"count"`
	NextToken string         `json:"next_token,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor traduz erros da tabela para códigos HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dyndb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dyndb.ErrInvalidToken),
		errors.Is(err, dyndb.ErrKeyArity),
		errors.Is(err, dyndb.ErrInvalidPrimaryKey),
		errors.Is(err, dyndb.ErrUnknownIndex),
		errors.Is(err, dyndb.ErrQueryOnlyOption),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case dyndb.IsThrottled(err):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Service) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := StatusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zerolog.Ctx(ctx).Error().Err(err).Msg("read failed")
		msg = "internal server error"
	}
	s.writeJSON(w, code, errorResponse{Error: msg})
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config == nil {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Config.Server.GetTimeout())
}

// readOptions monta as opções comuns a Query e Scan a partir da query string:
// limit, token, index, fields e consistent.
func (s *Service) readOptions(q url.Values) ([]dyndb.ReadOption, error) {
	var opts []dyndb.ReadOption

	limit := int32(0)
	if s.Config != nil {
		limit = s.Config.Read.PageLimit
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 || n > MaxPageLimit {
			return nil, badRequest("limit must be between 1 and %d", MaxPageLimit)
		}
		limit = int32(n)
	}
	if limit > 0 {
		opts = append(opts, dyndb.WithLimit(limit))
	}

	if token := q.Get("token"); token != "" {
		opts = append(opts, dyndb.WithStartToken(token))
	}
	if index := q.Get("index"); index != "" {
		opts = append(opts, dyndb.WithIndex(index))
	}
	if fields := q.Get("fields"); fields != "" {
		var names []string
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				names = append(names, f)
			}
		}
		opts = append(opts, dyndb.WithProjection(names...))
	}

	consistent := s.Config != nil && s.Config.Read.Consistent
	if raw := q.Get("consistent"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, badRequest("consistent must be a boolean")
		}
		consistent = b
	}
	if consistent {
		opts = append(opts, dyndb.WithConsistentRead(true))
	}

	return opts, nil
}

// KeyValue converte o valor textual (URL ou CLI) para o tipo declarado do
// atributo (N vira número, o resto fica string).
func (s *Service) KeyValue(ctx context.Context, attr, raw string) (any, error) {
	res, err := s.Table.Resource(ctx)
	if err != nil {
		return nil, err
	}
	desc := res.Description()
	if desc == nil {
		return raw, nil
	}
	for _, def := range desc.AttributeDefinitions {
		if aws.ToString(def.AttributeName) != attr {
			continue
		}
		if def.AttributeType == types.ScalarAttributeTypeN {
			if err := keyValidator.Var(raw, "required,numeric"); err != nil {
				return nil, badRequest("key attribute %q must be numeric", attr)
			}
			return attributevalue.Number(raw), nil
		}
	}
	return raw, nil
}

// Query lê uma página de itens com a chave de partição hash.
// Parâmetros extras: desc (ordem decrescente) e begins_with (prefixo da sort key).
func (s *Service) Query(ctx context.Context, hash string, q url.Values) (PageResponse, error) {
	opts, err := s.readOptions(q)
	if err != nil {
		return PageResponse{}, err
	}

	hashAttr := s.Table.PrimaryKey().HashKey()
	if index := q.Get("index"); index != "" {
		res, err := s.Table.Resource(ctx)
		if err != nil {
			return PageResponse{}, err
		}
		name, ok := res.IndexHashKey(index)
		if !ok {
			return PageResponse{}, fmt.Errorf("%w: %s", dyndb.ErrUnknownIndex, index)
		}
		hashAttr = name
	}
	hashValue, err := s.KeyValue(ctx, hashAttr, hash)
	if err != nil {
		return PageResponse{}, err
	}

	if raw := q.Get("desc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return PageResponse{}, badRequest("desc must be a boolean")
		}
		opts = append(opts, dyndb.WithScanForward(!desc))
	}
	if prefix := q.Get("begins_with"); prefix != "" {
		sortKey := s.Table.PrimaryKey().SortKey()
		if sortKey == "" || q.Get("index") != "" {
			return PageResponse{}, badRequest("begins_with requires the table sort key")
		}
		opts = append(opts, dyndb.WithSortKey(expression.Key(sortKey).BeginsWith(prefix)))
	}

	page, err := s.Table.Query(ctx, hashValue, opts...)
	if err != nil {
		return PageResponse{}, err
	}
	return newPageResponse(page)
}

// Scan lê uma página da tabela (ou índice) inteira.
func (s *Service) Scan(ctx context.Context, q url.Values) (PageResponse, error) {
	opts, err := s.readOptions(q)
	if err != nil {
		return PageResponse{}, err
	}
	page, err := s.Table.Scan(ctx, opts...)
	if err != nil {
		return PageResponse{}, err
	}
	return newPageResponse(page)
}

// Get lê um item pela chave primária completa.
func (s *Service) Get(ctx context.Context, values ...string) (dyndb.Record, error) {
	key := s.Table.PrimaryKey()
	if len(values) != len(key) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", dyndb.ErrKeyArity, len(key), len(values))
	}

	typed := make([]any, len(values))
	for i, raw := range values {
		v, err := s.KeyValue(ctx, key[i], raw)
		if err != nil {
			return nil, err
		}
		typed[i] = v
	}
	return s.Table.GetItem(ctx, typed...)
}

func newPageResponse(page dyndb.Page[dyndb.Record]) (PageResponse, error) {
	token, err := page.Token()
	if err != nil {
		return PageResponse{}, err
	}
	items := page.Items
	if items == nil {
		items = []dyndb.Record{}
	}
	return PageResponse{Items: items, Count: len(items), NextToken: token}, nil
}
