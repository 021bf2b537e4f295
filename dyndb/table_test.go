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
package dyndb_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dyntable/dyndb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	kind, name string
	value      float64
	tags       []string
}

type recordingProvider struct {
	mu   sync.Mutex
	seen []recordedMetric
}

func (p *recordingProvider) add(kind, name string, value float64, tags []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, recordedMetric{kind, name, value, tags})
	return nil
}

func (p *recordingProvider) Count(name string, value float64, tags []string) error {
	return p.add("count", name, value, tags)
}

func (p *recordingProvider) Gauge(name string, value float64, tags []string) error {
	return p.add("gauge", name, value, tags)
}

func (p *recordingProvider) Histogram(name string, value float64, tags []string) error {
	return p.add("histogram", name, value, tags)
}

func (p *recordingProvider) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.seen {
		out = append(out, m.name)
	}
	return out
}

func TestTable_EmitsMetrics(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	provider := &recordingProvider{}
	table, err := dyndb.Open("test-table", "pk", staticProvider(client), dyndb.WithMetrics(provider))
	require.NoError(t, err)

	client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"pk": s("a")}},
	}, nil).Once()
	client.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err = table.Query(context.Background(), "a")
	require.NoError(t, err)
	_, err = table.Scan(context.Background())
	require.Error(t, err)

	names := provider.names()
	assert.Contains(t, names, "dyndb.resolve")
	assert.Contains(t, names, "dyndb.requests")
	assert.Contains(t, names, "dyndb.items")
	assert.Contains(t, names, "dyndb.errors")

	for _, m := range provider.seen {
		assert.Contains(t, m.tags, "table:test-table")
	}
}

func TestTable_LogsPages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	client := &MockDynamoClient{}
	table, err := dyndb.Open("test-table", "pk", staticProvider(client), dyndb.WithLogger(logger))
	require.NoError(t, err)

	client.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{}, nil).Once()

	for _, err := range table.ScanAll(context.Background()) {
		require.NoError(t, err)
	}

	out := buf.String()
	assert.Contains(t, out, `"table":"test-table"`)
	assert.Contains(t, out, "page fetched")
	assert.Contains(t, out, "sequence_id")
}
