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

// Package dyndb fornece o acesso a uma tabela do AWS DynamoDB (SDK v2) com
// modelagem de chave primária, resolução preguiçosa do handle da tabela,
// paginação automática e normalização dos números do wire.
//
// Visão Geral:
// O tipo central é `Table[T]`. Uma tabela sem esquema entrega `Record`
// (map[string]any); com um `Model[T]` cada item é construído e validado como T.
//
// Funcionalidades Principais:
//   - Chave primária: `NormalizePrimaryKey` aceita "pk" ou [2]string{"pk", "sk"};
//     `KeyFromValues` monta a chave a partir dos valores na mesma ordem.
//   - Handle em cache: `Resource` resolve a tabela uma única vez, mesmo com
//     chamadas concorrentes. Falhas não ficam em cache.
//   - Coerção: numerais inteiros viram int64 (ou *big.Int), os demais float64,
//     inclusive dentro de mapas e listas.
//   - Query/Scan: `Query` e `Scan` fazem uma requisição; `QueryAll` e `ScanAll`
//     devolvem um iter.Seq2 que busca a próxima página só quando necessário.
//   - Tokens: `Page.Token` e `WithStartToken` transportam a chave de continuação
//     como texto opaco (gzip + base58).
//
// Exemplo Básico:
//
//	client := dynamodb.NewFromConfig(awsCfg)
//	users, err := dyndb.Open("users", [2]string{"pk", "sk"}, dyndb.NewClientProvider(client))
//	if err != nil { /* ... */ }
//
//	page, err := users.Query(ctx, "tenant#1", dyndb.WithLimit(50))
//	token, _ := page.Token() // devolva ao cliente HTTP
//
//	for rec, err := range users.ScanAll(ctx) {
//		if err != nil { /* ... */ }
//		fmt.Println(rec["count"].(int64))
//	}
//
// Exemplo com Modelo:
//
//	type User struct {
//		ID    string `dynamodbav:"pk" validate:"required"`
//		Count int64  `dynamodbav:"count" validate:"gte=0"`
//	}
//
//	typed, err := dyndb.OpenModel("users", "pk", provider, dyndb.Validated[User](nil))
//	u, err := typed.GetItem(ctx, "u1")
//	if errors.Is(err, dyndb.ErrSchemaValidation) { /* ... */ }
package dyndb
