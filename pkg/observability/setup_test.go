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
package observability

import (
	"testing"

	"github.com/raywall/dyntable/pkg/config"
	"github.com/raywall/dyntable/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsd struct {
	counts     map[string]int64
	histograms map[string]float64
	tags       []string
	closed     bool
}

func (f *fakeStatsd) Count(name string, value int64, tags []string, rate float64) error {
	f.counts[name] += value
	f.tags = tags
	return nil
}

func (f *fakeStatsd) Gauge(name string, value float64, tags []string, rate float64) error {
	return nil
}

func (f *fakeStatsd) Histogram(name string, value float64, tags []string, rate float64) error {
	f.histograms[name] = value
	return nil
}

func (f *fakeStatsd) Close() error {
	f.closed = true
	return nil
}

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{})
		require.NoError(t, err)
		assert.IsType(t, &NoopProvider{}, provider)
		assert.NoError(t, provider.Close())
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		cfg := config.MetricsConf{
			Datadog: config.DatadogConf{
				Enabled:   true,
				Addr:      "localhost:8125",
				Namespace: "dyntable.",
				Tags:      []string{"env:test"},
			},
		}

		provider, err := SetupMetrics(cfg)
		require.NoError(t, err)
		assert.IsType(t, &DatadogProvider{}, provider)
		assert.NoError(t, provider.Close())
	})
}

func TestDatadogProvider_ThroughRecorder(t *testing.T) {
	fake := &fakeStatsd{counts: map[string]int64{}, histograms: map[string]float64{}}
	provider := &DatadogProvider{client: fake}

	rec := metrics.NewRecorder(provider, "dyndb", "table:orders")
	require.NoError(t, rec.Emit(metrics.MetricRequests, 2))
	require.NoError(t, rec.Emit(metrics.MetricItems, 25))

	assert.Equal(t, int64(2), fake.counts["dyndb.requests"])
	assert.Equal(t, float64(25), fake.histograms["dyndb.items"])
	assert.Equal(t, []string{"table:orders"}, fake.tags)

	require.NoError(t, provider.Close())
	assert.True(t, fake.closed)
}
