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
package awsclient

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/raywall/dyntable/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate evita que arquivos ~/.aws da máquina influenciem o teste.
func isolate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
}

func TestLoad_Region(t *testing.T) {
	isolate(t)

	cfg, err := Load(context.Background(), config.AWSConf{Region: "sa-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "sa-east-1", cfg.Region)
}

func TestLoad_MissingProfile(t *testing.T) {
	isolate(t)

	_, err := Load(context.Background(), config.AWSConf{Region: "us-east-1", Profile: "does-not-exist"})
	assert.ErrorContains(t, err, "awsclient: load config")
}

func TestNewDynamoDB_Endpoint(t *testing.T) {
	cfg := aws.Config{Region: "us-east-1"}

	client := NewDynamoDB(cfg, "http://localhost:8000")
	assert.Equal(t, "http://localhost:8000", aws.ToString(client.Options().BaseEndpoint))

	client = NewDynamoDB(cfg, "")
	assert.Nil(t, client.Options().BaseEndpoint)
}

func TestDynamoDB(t *testing.T) {
	isolate(t)

	client, err := DynamoDB(context.Background(), config.AWSConf{Region: "us-west-2", Endpoint: "http://localhost:4566"})
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", client.Options().Region)
}
