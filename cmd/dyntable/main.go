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
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/dyntable/dyndb"
	"github.com/raywall/dyntable/pkg/awsclient"
	"github.com/raywall/dyntable/pkg/config"
	"github.com/raywall/dyntable/pkg/logger"
	"github.com/raywall/dyntable/pkg/observability"
	"github.com/raywall/dyntable/pkg/transport"
)

const usage = `uso: dyntable <comando> [flags] [args]

comandos:
  serve                 expõe a API de leitura (HTTP ou Lambda, conforme server.runtime)
  query <hash>          lê itens de uma partição
  scan                  lê a tabela inteira
  get <hash> [sort]     lê um item pela chave primária
  validate              valida a configuração
`

// Variáveis injetáveis para mocking
var (
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
	setupMetrics  = observability.SetupMetrics
	newClient     = func(ctx context.Context, conf config.AWSConf) (dyndb.DynamoDBClient, error) {
		return awsclient.DynamoDB(ctx, conf)
	}
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
		}
		fmt.Fprintf(stderr, "dyntable: %v\n", err)
		os.Exit(1)
	}
}

type readFlags struct {
	config  string
	envFile string
	limit   int
	index   string
	token   string
	all     bool
	desc    bool
}

// run contém a lógica principal testável
func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd := args[0]

	var rf readFlags
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&rf.config, "config", os.Getenv("CONFIG_FILE_PATH"), "arquivo YAML ou URI s3:// / dynamodb://")
	fs.StringVar(&rf.envFile, "env-file", "", "arquivo .env com variáveis de fallback")
	fs.IntVar(&rf.limit, "limit", 0, "itens por página")
	fs.StringVar(&rf.index, "index", "", "índice secundário")
	fs.StringVar(&rf.token, "token", "", "token de continuação")
	fs.BoolVar(&rf.all, "all", false, "percorre todas as páginas")
	fs.BoolVar(&rf.desc, "desc", false, "ordem decrescente da sort key (query)")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if rf.limit < 0 || rf.limit > transport.MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", errUsage, transport.MaxPageLimit)
	}

	switch cmd {
	case "serve", "query", "scan", "get", "validate":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	// 1. Carrega Configuração (Loader)
	var loaderOpts []config.LoaderOption
	if rf.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithDotEnv(rf.envFile))
	}
	cfg, err := config.NewUniversalLoader(loaderOpts...).Load(ctx, rf.config)
	if err != nil {
		return err
	}
	if cmd == "validate" {
		fmt.Fprintf(stdout, "configuration is valid (table %s)\n", cfg.Table.TableName)
		return nil
	}

	// 2. Inicializa tabela, logger e métricas
	app, err := bootstrap(ctx, cfg, cmd == "serve")
	if err != nil {
		return err
	}
	defer app.close()

	switch cmd {
	case "serve":
		return serve(ctx, app)
	case "query":
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: query expects exactly one hash value", errUsage)
		}
		return runQuery(ctx, app, fs.Arg(0), rf)
	case "scan":
		return runScan(ctx, app, rf)
	default:
		return runGet(ctx, app, fs.Args())
	}
}

type application struct {
	svc     *transport.Service
	table   *dyndb.Table[dyndb.Record]
	metrics observability.Provider
}

func (a *application) close() {
	if err := a.metrics.Close(); err != nil {
		a.svc.Logger.Warn().Err(err).Msg("failed to flush metrics")
	}
}

func bootstrap(ctx context.Context, cfg *config.Config, server bool) (*application, error) {
	// na CLI os logs vão para stderr e stdout fica só com os itens
	out := stderr
	if server {
		out = stdout
	}
	log := logger.ConfigureWriter(cfg.Logging, "dyntable", out)

	provider, err := setupMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	closeMetrics := func() {
		if cerr := provider.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to flush metrics")
		}
	}

	client, err := newClient(ctx, cfg.AWS)
	if err != nil {
		closeMetrics()
		return nil, err
	}

	opts := []dyndb.Option{
		dyndb.WithLogger(log),
		dyndb.WithMetrics(provider),
	}
	if cfg.Metrics.Datadog.Prefix != "" {
		opts = append(opts, dyndb.WithMetricsPrefix(cfg.Metrics.Datadog.Prefix))
	}

	table, err := dyndb.OpenConfig(cfg.Table, dyndb.NewClientProvider(client), opts...)
	if err != nil {
		closeMetrics()
		return nil, err
	}

	return &application{
		svc:     &transport.Service{Table: table, Config: cfg, Logger: log},
		table:   table,
		metrics: provider,
	}, nil
}

// 3. Seleciona Runtime Strategy
func serve(ctx context.Context, app *application) error {
	switch app.svc.Config.Server.Runtime {
	case "lambda":
		handler := transport.NewLambdaHandler(app.svc)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return serverStarter(ctx, app.svc)
	}
}

func (rf readFlags) options() []dyndb.ReadOption {
	var opts []dyndb.ReadOption
	if rf.limit > 0 {
		opts = append(opts, dyndb.WithLimit(int32(rf.limit)))
	}
	if rf.index != "" {
		opts = append(opts, dyndb.WithIndex(rf.index))
	}
	if rf.token != "" {
		opts = append(opts, dyndb.WithStartToken(rf.token))
	}
	return opts
}

func runQuery(ctx context.Context, app *application, hash string, rf readFlags) error {
	attr := app.table.PrimaryKey().HashKey()
	if rf.index != "" {
		res, err := app.table.Resource(ctx)
		if err != nil {
			return err
		}
		name, ok := res.IndexHashKey(rf.index)
		if !ok {
			return fmt.Errorf("%w: %s", dyndb.ErrUnknownIndex, rf.index)
		}
		attr = name
	}
	hashValue, err := app.svc.KeyValue(ctx, attr, hash)
	if err != nil {
		return err
	}

	opts := rf.options()
	if rf.desc {
		opts = append(opts, dyndb.WithScanForward(false))
	}

	if rf.all {
		return writeSeq(app.table.QueryAll(ctx, hashValue, opts...))
	}
	page, err := app.table.Query(ctx, hashValue, opts...)
	if err != nil {
		return err
	}
	return writePage(page)
}

func runScan(ctx context.Context, app *application, rf readFlags) error {
	if rf.all {
		return writeSeq(app.table.ScanAll(ctx, rf.options()...))
	}
	page, err := app.table.Scan(ctx, rf.options()...)
	if err != nil {
		return err
	}
	return writePage(page)
}

func runGet(ctx context.Context, app *application, values []string) error {
	item, err := app.svc.Get(ctx, values...)
	if err != nil {
		return err
	}
	return json.NewEncoder(stdout).Encode(item)
}

// writeSeq grava um item por linha (JSON lines).
func writeSeq(seq iter.Seq2[dyndb.Record, error]) error {
	enc := json.NewEncoder(stdout)
	for item, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// writePage grava os itens em stdout e o token da próxima página em stderr.
func writePage(page dyndb.Page[dyndb.Record]) error {
	enc := json.NewEncoder(stdout)
	for _, item := range page.Items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	token, err := page.Token()
	if err != nil {
		return err
	}
	if token != "" {
		fmt.Fprintf(stderr, "next_token: %s\n", token)
	}
	return nil
}
