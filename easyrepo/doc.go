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
/*
Package easyrepo fornece o padrão Service-Repository sobre uma dyndb.Table tipada.

Entrega:
  - Validação de entrada automática via struct tags (validator/v10).
  - Hooks antes de create e update.
  - CRUD e listagem paginada por token.

Exemplo de uso:

	type User struct {
		ID    string `dynamodbav:"id" validate:"required"`
		Email string `dynamodbav:"email" validate:"required,email"`
	}

	table, _ := dyndb.OpenModel[User]("users", "id", provider, nil)
	service := easyrepo.NewService(table)
	err := service.Create(ctx, &User{ID: "1", Email: "test@example.com"})
*/
package easyrepo
