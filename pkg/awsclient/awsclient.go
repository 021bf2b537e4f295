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
// Package awsclient monta a configuração da AWS e o cliente DynamoDB a partir
// da seção `aws` do YAML.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dyntable/pkg/config"
)

// Load carrega a configuração da AWS (env vars, profile, IAM role).
func Load(ctx context.Context, conf config.AWSConf) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if conf.Region != "" {
		opts = append(opts, awsconfig.WithRegion(conf.Region))
	}
	if conf.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(conf.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("awsclient: load config: %w", err)
	}
	return cfg, nil
}

// NewDynamoDB cria o cliente; endpoint não vazio aponta para DynamoDB Local/LocalStack.
func NewDynamoDB(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// DynamoDB é o atalho Load + NewDynamoDB.
func DynamoDB(ctx context.Context, conf config.AWSConf) (*dynamodb.Client, error) {
	cfg, err := Load(ctx, conf)
	if err != nil {
		return nil, err
	}
	return NewDynamoDB(cfg, conf.Endpoint), nil
}
