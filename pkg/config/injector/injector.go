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
package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.TABLE}, ${ssm./app/table}, ${secret.dyntable#endpoint}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Injector resolve referências ${env.X}, ${ssm./path} e ${secret.id}
// em todas as strings de uma struct (inclusive mapas e slices).
type Injector struct {
	lookup  func(string) (string, bool)
	region  string
	ssm     SSMClient
	secrets SecretsClient

	awsOnce sync.Once
	awsCfg  aws.Config
	awsErr  error
}

type Option func(*Injector)

// WithSSMClient fixa o cliente do Parameter Store.
func WithSSMClient(c SSMClient) Option {
	return func(i *Injector) { i.ssm = c }
}

// WithSecretsClient fixa o cliente do Secrets Manager.
func WithSecretsClient(c SecretsClient) Option {
	return func(i *Injector) { i.secrets = c }
}

// WithRegion define a região usada quando os clientes são criados sob demanda.
func WithRegion(region string) Option {
	return func(i *Injector) { i.region = region }
}

func WithLookup(fn func(string) (string, bool)) Option {
	return func(i *Injector) { i.lookup = fn }
}

func New(opts ...Option) *Injector {
	i := &Injector{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("injector: target must be a non-nil pointer")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			value := v.Field(k)
			if !value.CanSet() {
				continue
			}
			if err := i.injectRecursive(ctx, value); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.interpolateString(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		sub := pattern.FindStringSubmatch(match)

		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas dinâmicos (map[string]interface{} do YAML)
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	updates := make(map[string]reflect.Value)

	iter := v.MapRange()
	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(newVal)
		case reflect.Map:
			if elem.Type().Key().Kind() == reflect.String && !elem.IsNil() {
				if err := i.injectMap(ctx, elem); err != nil {
					return err
				}
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val.Convert(v.Type().Elem()))
	}
	return nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		val, _ := i.lookup(key)
		return val, nil

	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		return getParameter(ctx, client, key, true)

	case "secret":
		client, err := i.secretsClient(ctx)
		if err != nil {
			return "", err
		}
		id, field, _ := strings.Cut(key, "#")
		return getSecret(ctx, client, id, field)
	}

	return "", fmt.Errorf("injector: unknown source %q", sourceType)
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	if i.ssm != nil {
		return i.ssm, nil
	}
	cfg, err := i.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	i.ssm = ssm.NewFromConfig(cfg)
	return i.ssm, nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	if i.secrets != nil {
		return i.secrets, nil
	}
	cfg, err := i.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	i.secrets = secretsmanager.NewFromConfig(cfg)
	return i.secrets, nil
}

// awsConfig carrega a configuração da AWS (env vars, profile, IAM role) uma única vez.
func (i *Injector) awsConfig(ctx context.Context) (aws.Config, error) {
	i.awsOnce.Do(func() {
		var opts []func(*awsconfig.LoadOptions) error
		if i.region != "" {
			opts = append(opts, awsconfig.WithRegion(i.region))
		}
		i.awsCfg, i.awsErr = awsconfig.LoadDefaultConfig(ctx, opts...)
		if i.awsErr != nil {
			i.awsErr = fmt.Errorf("injector: load aws config: %w", i.awsErr)
		}
	})
	return i.awsCfg, i.awsErr
}

func getParameter(ctx context.Context, client SSMClient, path string, decrypt bool) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		return "", fmt.Errorf("injector: ssm get parameter %q: %w", path, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("injector: ssm parameter %q has no value", path)
	}
	return *out.Parameter.Value, nil
}

// getSecret devolve o segredo inteiro ou, com field, um campo do JSON.
func getSecret(ctx context.Context, client SecretsClient, secretID, field string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("injector: secrets manager %q: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("injector: secret %q has no string value", secretID)
	}

	val := *out.SecretString
	if field == "" {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("injector: secret %q is not a JSON object: %w", secretID, err)
	}
	v, ok := data[field]
	if !ok {
		return "", fmt.Errorf("injector: secret %q has no field %q", secretID, field)
	}
	return fmt.Sprintf("%v", v), nil
}
