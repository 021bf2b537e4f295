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
package injector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/raywall/dyntable/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

type TestConfig struct {
	Table       string            `yaml:"table"`
	Description string            `yaml:"description"`
	Meta        map[string]interface{}
	Labels      map[string]string
	Tags        []string
	Nested      *NestedConfig
	hidden      string
}

type NestedConfig struct {
	Endpoint string
}

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestInjector_Inject_Environment(t *testing.T) {
	inj := injector.New(injector.WithLookup(envLookup(map[string]string{
		"TABLE":  "orders",
		"REGION": "us-east-1",
		"STAGE":  "prod",
	})))

	target := &TestConfig{
		Table:       "${env.TABLE}",
		Description: "table running in ${env.REGION}",
		Meta: map[string]interface{}{
			"stage":   "${env.STAGE}",
			"timeout": 5000,
			"inner":   map[string]interface{}{"region": "${env.REGION}"},
		},
		Labels: map[string]string{"env": "${env.STAGE}"},
		Tags:   []string{"stage:${env.STAGE}"},
		Nested: &NestedConfig{Endpoint: "https://dynamodb.${env.REGION}.amazonaws.com"},
		hidden: "${env.TABLE}",
	}

	require.NoError(t, inj.Inject(context.Background(), target))

	assert.Equal(t, "orders", target.Table)
	assert.Equal(t, "table running in us-east-1", target.Description)
	assert.Equal(t, "prod", target.Meta["stage"])
	assert.Equal(t, 5000, target.Meta["timeout"], "inteiro não deve ser tocado")
	assert.Equal(t, "us-east-1", target.Meta["inner"].(map[string]interface{})["region"])
	assert.Equal(t, "prod", target.Labels["env"])
	assert.Equal(t, []string{"stage:prod"}, target.Tags)
	assert.Equal(t, "https://dynamodb.us-east-1.amazonaws.com", target.Nested.Endpoint)
	assert.Equal(t, "${env.TABLE}", target.hidden)
}

func TestInjector_Inject_SSM(t *testing.T) {
	client := &MockSSM{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			assert.Equal(t, "/dyntable/table", aws.ToString(params.Name))
			assert.True(t, aws.ToBool(params.WithDecryption))
			return &ssm.GetParameterOutput{
				Parameter: &ssmtypes.Parameter{Value: aws.String("events")},
			}, nil
		},
	}

	target := &TestConfig{Table: "${ssm./dyntable/table}"}
	require.NoError(t, injector.New(injector.WithSSMClient(client)).Inject(context.Background(), target))
	assert.Equal(t, "events", target.Table)
}

func TestInjector_Inject_SSMError(t *testing.T) {
	client := &MockSSM{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return nil, errors.New("AWS down")
		},
	}

	target := &TestConfig{Meta: map[string]interface{}{"table": "${ssm./dyntable/table}"}}
	err := injector.New(injector.WithSSMClient(client)).Inject(context.Background(), target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS down")
}

func TestInjector_Inject_Secrets(t *testing.T) {
	client := &MockSecrets{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			switch aws.ToString(params.SecretId) {
			case "dyntable":
				return &secretsmanager.GetSecretValueOutput{
					SecretString: aws.String(`{"endpoint": "http://localhost:8000", "port": 8000}`),
				}, nil
			case "plain":
				return &secretsmanager.GetSecretValueOutput{SecretString: aws.String("just-a-value")}, nil
			}
			return nil, errors.New("secret not found")
		},
	}
	inj := injector.New(injector.WithSecretsClient(client))

	target := &TestConfig{
		Table:       "${secret.plain}",
		Description: "${secret.dyntable#port}",
		Nested:      &NestedConfig{Endpoint: "${secret.dyntable#endpoint}"},
	}
	require.NoError(t, inj.Inject(context.Background(), target))

	assert.Equal(t, "just-a-value", target.Table)
	assert.Equal(t, "8000", target.Description)
	assert.Equal(t, "http://localhost:8000", target.Nested.Endpoint)

	err := inj.Inject(context.Background(), &TestConfig{Table: "${secret.dyntable#missing}"})
	assert.ErrorContains(t, err, `no field "missing"`)

	err = inj.Inject(context.Background(), &TestConfig{Table: "${secret.plain#field}"})
	assert.ErrorContains(t, err, "not a JSON object")
}

func TestInjector_Inject_InvalidTarget(t *testing.T) {
	inj := injector.New()

	assert.Error(t, inj.Inject(context.Background(), TestConfig{}))
	assert.Error(t, inj.Inject(context.Background(), (*TestConfig)(nil)))
}
