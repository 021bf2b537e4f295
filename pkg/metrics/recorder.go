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
package metrics

import (
	"fmt"
	"time"
)

// IDs das métricas operacionais emitidas pelo acesso à tabela.
const (
	MetricRequests = "requests"
	MetricErrors   = "errors"
	MetricItems    = "items"
	MetricLatency  = "latency_ms"
	MetricResolve  = "resolve"
)

// Recorder publica as métricas operacionais de uma tabela.
// Um Recorder nil (ou sem provider) não emite nada.
type Recorder struct {
	provider    Provider
	tags        []string
	definitions map[string]MetricDefinition
}

// NewRecorder liga os IDs operacionais aos nomes reais, prefixados por prefix
// (ex: "dyndb" → "dyndb.requests").
func NewRecorder(provider Provider, prefix string, tags ...string) *Recorder {
	name := func(id string) string {
		if prefix == "" {
			return id
		}
		return prefix + "." + id
	}

	return &Recorder{
		provider: provider,
		tags:     tags,
		definitions: map[string]MetricDefinition{
			MetricRequests: {Name: name(MetricRequests), Type: TypeCount},
			MetricErrors:   {Name: name(MetricErrors), Type: TypeCount},
			MetricItems:    {Name: name(MetricItems), Type: TypeHistogram},
			MetricLatency:  {Name: name(MetricLatency), Type: TypeHistogram},
			MetricResolve:  {Name: name(MetricResolve), Type: TypeCount},
		},
	}
}

// Emit envia um valor para a métrica identificada por id.
func (r *Recorder) Emit(id string, value float64, tags ...string) error {
	if r == nil || r.provider == nil {
		return nil
	}
	def, ok := r.definitions[id]
	if !ok {
		return fmt.Errorf("metrics: undefined metric %q", id)
	}

	all := make([]string, 0, len(r.tags)+len(tags))
	all = append(all, r.tags...)
	all = append(all, tags...)

	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, all)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, all)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, all)
	default:
		return fmt.Errorf("metrics: unknown metric type %q", def.Type)
	}
}

// Observe registra uma chamada ao backend: contagem, latência, itens lidos e erro.
// Falhas de envio são ignoradas.
func (r *Recorder) Observe(op string, start time.Time, items int, err error, tags ...string) {
	if r == nil || r.provider == nil {
		return
	}
	tags = append([]string{"op:" + op}, tags...)

	_ = r.Emit(MetricRequests, 1, tags...)
	_ = r.Emit(MetricLatency, float64(time.Since(start).Milliseconds()), tags...)
	if err != nil {
		_ = r.Emit(MetricErrors, 1, tags...)
		return
	}
	_ = r.Emit(MetricItems, float64(items), tags...)
}
