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
// Package envloader carrega variáveis de ambiente para campos de uma struct
// usando as tags `env` e `envDefault`.
//
// Visão Geral:
// É usado para sobrepor a configuração da tabela (DYNAMODB_TABLE_NAME,
// DYNAMODB_HASH_KEY, ...) e da AWS depois da leitura do arquivo YAML.
//
// Funcionalidades Principais:
//   - Variável definida sempre sobrescreve o campo.
//   - `envDefault` só preenche campos ainda com valor zero.
//   - Tipos: string, int*, uint*, bool, float*, time.Duration e []string
//     (separado por vírgula). Structs aninhadas e ponteiros para struct são percorridos.
//   - Opções: WithPrefix para namespacing e WithLookup para testes.
//
// Exemplo:
//
//	type TableConfig struct {
//		Name    string `env:"DYNAMODB_TABLE_NAME"`
//		HashKey string `env:"DYNAMODB_HASH_KEY" envDefault:"pk"`
//	}
//
//	var cfg TableConfig
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package envloader
