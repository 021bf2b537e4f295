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
package easyrepo

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dyntable/dyndb"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

// EasyService centraliza a lógica de negócio e a validação dos dados.
// Encapsula o repositório e usa o validator para garantir a integridade.
type EasyService[T any] struct {
	valid *validator.Validate
	repo  *EasyRepository[T]
	hooks Hooks[T]
}

// Hooks guarda as validações e regras registradas para execução antes de
// creates e updates.
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook permite validar ou transformar o item antes da gravação.
// existing é nil em creates.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// NewService cria um EasyService sobre uma tabela tipada.
func NewService[T any](table *dyndb.Table[T]) *EasyService[T] {
	return &EasyService[T]{
		valid: validator.New(validator.WithRequiredStructEnabled()),
		repo:  NewRepository(table),
	}
}

// RegisterHook permite a injeção de lógica customizada antes da gravação.
func (s *EasyService[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	}
}

// RegisterValidation adiciona regras customizadas ao validator.
func (s *EasyService[T]) RegisterValidation(name string, fn validator.Func) error {
	return s.valid.RegisterValidation(name, fn)
}

func checkKey(keyValues []any) error {
	if len(keyValues) == 0 {
		return ErrInvalidInput
	}
	for _, v := range keyValues {
		if v == nil {
			return ErrInvalidInput
		}
	}
	return nil
}

// Get busca um item pela chave primária.
// Retorna ErrInvalidInput se algum valor da chave for nil.
func (s *EasyService[T]) Get(ctx context.Context, keyValues ...any) (*T, error) {
	if err := checkKey(keyValues); err != nil {
		return nil, err
	}
	item, err := s.repo.get(ctx, keyValues...)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List devolve uma página da tabela e o cursor da próxima ("" no fim).
func (s *EasyService[T]) List(ctx context.Context, token string, limit int32) ([]T, string, error) {
	return s.repo.list(ctx, token, limit)
}

// ListByHash devolve uma página dos itens de uma partição.
func (s *EasyService[T]) ListByHash(ctx context.Context, hash any, token string, limit int32) ([]T, string, error) {
	if hash == nil {
		return nil, "", ErrInvalidInput
	}
	return s.repo.listByHash(ctx, hash, token, limit)
}

// All percorre a tabela inteira sob demanda.
func (s *EasyService[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return s.repo.all(ctx)
}

// Create valida o item pelas tags `validate`, executa os hooks e grava.
// Falha com ErrItemAlreadyExists se a chave já existir.
func (s *EasyService[T]) Create(ctx context.Context, item *T) error {
	if err := s.valid.StructCtx(ctx, item); err != nil {
		return err
	}
	key, err := s.repo.keyOf(item)
	if err != nil {
		return err
	}

	_, err = s.repo.get(ctx, key...)
	switch {
	case err == nil:
		return ErrItemAlreadyExists
	case !errors.Is(err, ErrItemNotFound):
		return err
	}

	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return err
		}
	}
	return s.repo.put(ctx, item)
}

// Update valida o item, carrega a versão atual pela chave e grava por cima.
// Falha com ErrItemNotFound se o item não existir.
func (s *EasyService[T]) Update(ctx context.Context, item *T) error {
	if err := s.valid.StructCtx(ctx, item); err != nil {
		return err
	}
	key, err := s.repo.keyOf(item)
	if err != nil {
		return err
	}

	existing, err := s.repo.get(ctx, key...)
	if err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, &existing); err != nil {
			return fmt.Errorf("easyrepo: before update: %w", err)
		}
	}
	return s.repo.put(ctx, item)
}

// Delete remove um item pela chave primária.
func (s *EasyService[T]) Delete(ctx context.Context, keyValues ...any) error {
	if err := checkKey(keyValues); err != nil {
		return err
	}
	return s.repo.delete(ctx, keyValues...)
}
