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
//
// Package dyntable é um acessor de tabelas DynamoDB: chave primária
// normalizada, recurso da tabela resolvido uma única vez, itens com números
// já convertidos e leituras paginadas (uma página ou todas, sob demanda).
//
// Visão Geral:
// O módulo é organizado em camadas pequenas que podem ser usadas isoladamente:
//
// 1. dyndb:
//   - Table[T]: Query/Scan de uma página, QueryAll/ScanAll como iter.Seq2,
//     GetItem/PutItem/DeleteItem.
//   - Cache do recurso com single-flight (golang.org/x/sync/singleflight).
//   - Coerção de números (int64, *big.Int ou float64) e modelo opcional
//     validado com validator/v10.
//   - Token de continuação opaco (gzip + base58).
//
// 2. easyrepo:
//   - Service-Repository tipado sobre dyndb.Table com validação e hooks.
//
// 3. envloader:
//   - Variáveis de ambiente para structs via tags "env" e "envDefault".
//
// 4. pkg/config, pkg/awsclient, pkg/logger, pkg/observability:
//   - Configuração YAML (arquivo, s3:// ou dynamodb://) com injeção de
//     ${env.}, ${ssm.} e ${secret.}, cliente AWS, zerolog e Datadog.
//
// 5. pkg/transport e cmd/dyntable:
//   - API de leitura HTTP (gorilla/mux) ou Lambda (API Gateway) e CLI.
//
// Exemplo de Início Rápido:
//
//	client := dynamodb.NewFromConfig(awsCfg)
//	table, err := dyndb.Open("orders", [2]string{"tenant", "order"}, dyndb.NewClientProvider(client))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for item, err := range table.QueryAll(ctx, "tenant-1", dyndb.WithLimit(100)) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(item["order"], item["total"])
//	}
package dyntable
