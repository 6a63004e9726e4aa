package app

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/oauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mbolis/poll-creator/config"
	"github.com/mbolis/poll-creator/database"
	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/leanix"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/metrics"
	"github.com/mbolis/poll-creator/service"
	"github.com/mbolis/poll-creator/survey"
	"github.com/mbolis/poll-creator/translate"
)

// App holds the process-wide dependencies handed to every controller.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Service     *service.Service
	Submissions *database.Submissions
	Metrics     *metrics.Metrics
	HTTPClient  *http.Client
}

// Open builds the application from its configuration. Close releases what
// Open acquired.
func Open(cfg config.Config) (app App, err error) {
	app.Config = cfg

	app.DB, err = database.Open(cfg)
	if err != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics, err = metrics.New(reg)
	if err != nil {
		app.DB.Close()
		return
	}

	app.BearerServer = httpx.NewBearerServer(app.DB, cfg)
	app.Submissions = database.NewSubmissions(app.DB)
	app.HTTPClient = NewHTTPClient(cfg)
	app.Service = NewService(cfg, leanix.NewClient(
		app.HTTPClient,
		leanix.WithObserver(app.Metrics),
		leanix.WithMaxBodySize(cfg.MaxBodySize),
	), app.Submissions, app.Metrics)

	return
}

func (app App) Close() error {
	if app.HTTPClient != nil {
		app.HTTPClient.CloseIdleConnections()
	}
	if app.DB != nil {
		return app.DB.Close()
	}
	return nil
}

// NewHTTPClient is the pooled client shared by all Poll API calls.
func NewHTTPClient(cfg config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = cfg.MaxConnections
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	return &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: transport,
	}
}

// NewService wires validation, translation and the poll cache as configured.
func NewService(cfg config.Config, upstream service.Upstream, audit service.AuditLog, m *metrics.Metrics) *service.Service {
	validateOpts := []survey.Option{
		survey.WithMaxNestingDepth(cfg.MaxNestingDepth),
		survey.WithMaxChainDepth(cfg.MaxChainDepth),
	}
	translator := translate.New(translate.Config{
		Languages:      cfg.Languages,
		FactSheetTypes: cfg.FactSheetTypes,
		MapIDsToUUID:   cfg.MapIDsToUUID,
	})

	opts := []service.Option{service.WithObserver(m)}
	if audit != nil {
		opts = append(opts, service.WithAuditLog(audit))
	}
	if cfg.CacheEnabled {
		log.Infof("Poll cache enabled (ttl=%s, max_items=%d)", cfg.CacheTTL, cfg.CacheMaxItems)
		opts = append(opts, service.WithCache(service.NewPollCache(cfg.CacheMaxItems, cfg.CacheTTL, m)))
	}

	return service.New(service.Config{
		MaxBatchSize:    cfg.MaxBatchSize,
		CacheTTL:        cfg.CacheTTL,
		ValidateOptions: validateOpts,
	}, translator, upstream, opts...)
}
