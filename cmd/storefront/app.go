package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/internal/cart"
	"github.com/miku-nicol/klassyz-hair-client/internal/checkout"
	"github.com/miku-nicol/klassyz-hair-client/internal/config"
	"github.com/miku-nicol/klassyz-hair-client/internal/session"
	"github.com/miku-nicol/klassyz-hair-client/internal/storage"
	"github.com/miku-nicol/klassyz-hair-client/pkg/httpclient"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
)

// app wires the whole client: config, logging, durable state, session,
// the backend API client behind its circuit breaker, the cart mirror and
// the checkout flow. One app is built per command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	storage  storage.Store
	session  *session.Store
	manager  *session.Manager
	api      *api.Client
	cart     *cart.Synchronizer
	checkout *checkout.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New("storefront", cfg.LogLevel)

	fileStore, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open state dir: %w", err)
	}

	sess := session.NewStore(fileStore, log)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.RequestTimeout
	httpCfg.MaxRetries = cfg.MaxRetries
	base := httpclient.New(httpCfg)
	breaker := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("storefront-backend"), log)

	client := api.New(cfg.APIBaseURL, breaker, sess, log)
	client.SetUnauthorizedHook(func() {
		_ = sess.Clear()
	})

	cartSync := cart.New(client, sess, log)
	manager := session.NewManager(client, sess, cartSync, log)
	orch := checkout.New(client, fileStore, &consoleNavigator{out: os.Stdout}, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		storage:  fileStore,
		session:  sess,
		manager:  manager,
		api:      client,
		cart:     cartSync,
		checkout: orch,
	}, nil
}

// ctx returns a request context carrying a fresh correlation id.
func (a *app) ctx() context.Context {
	return logger.WithCorrelationID(context.Background(), uuid.NewString())
}

// consoleNavigator prints the destinations the checkout flow steers to.
// The gateway redirect becomes an instruction, since a terminal cannot
// follow a browser redirect itself.
type consoleNavigator struct {
	out *os.File
}

func (n *consoleNavigator) ToCart() {
	fmt.Fprintln(n.out, "Returning to cart.")
}

func (n *consoleNavigator) ToReceipt(orderID string) {
	fmt.Fprintf(n.out, "Payment confirmed. View your receipt with: storefront order %s\n", orderID)
}

func (n *consoleNavigator) ToGateway(authorizationURL string) {
	fmt.Fprintf(n.out, "Complete your payment in the browser:\n\n  %s\n\nThen finish with: storefront confirm <return-url>\n", authorizationURL)
}
