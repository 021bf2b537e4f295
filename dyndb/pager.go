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
	"iter"
	"sync/atomic"

	"github.com/google/uuid"
)

// QueryAll percorre todas as páginas de uma Query sob demanda. A página
// seguinte só é buscada depois que todos os itens da atual foram entregues;
// interromper o range não gera novas requisições.
//
// Um erro é entregue uma única vez e encerra a sequência. A sequência só pode
// ser percorrida uma vez; a segunda tentativa recebe ErrSequenceConsumed.
//
//	for item, err := range table.QueryAll(ctx, "user#1") {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (t *Table[T]) QueryAll(ctx context.Context, hashValue any, opts ...ReadOption) iter.Seq2[T, error] {
	return t.paginate(ctx, "query", func(ctx context.Context, next []ReadOption) (Page[T], error) {
		return t.Query(ctx, hashValue, append(opts[:len(opts):len(opts)], next...)...)
	})
}

// ScanAll é QueryAll para Scan.
func (t *Table[T]) ScanAll(ctx context.Context, opts ...ReadOption) iter.Seq2[T, error] {
	return t.paginate(ctx, "scan", func(ctx context.Context, next []ReadOption) (Page[T], error) {
		return t.Scan(ctx, append(opts[:len(opts):len(opts)], next...)...)
	})
}

type pageFetcher[T any] func(ctx context.Context, next []ReadOption) (Page[T], error)

func (t *Table[T]) paginate(ctx context.Context, op string, fetch pageFetcher[T]) iter.Seq2[T, error] {
	var consumed atomic.Bool

	return func(yield func(T, error) bool) {
		var zero T
		if !consumed.CompareAndSwap(false, true) {
			yield(zero, ErrSequenceConsumed)
			return
		}

		logger := t.logger.With().Str("op", op).Str("sequence_id", uuid.NewString()).Logger()

		var next []ReadOption
		for pageNum := 1; ; pageNum++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, err := fetch(ctx, next)
			if err != nil {
				logger.Debug().Err(err).Int("page", pageNum).Msg("sequence aborted")
				yield(zero, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			if !page.HasMore() {
				logger.Debug().Int("pages", pageNum).Msg("sequence exhausted")
				return
			}
			next = []ReadOption{WithStartKey(page.LastEvaluatedKey)}
		}
	}
}
