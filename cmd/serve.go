package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spindle/internal/agents"
	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/server"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/state"
	"github.com/urfave/cli/v3"
)

// Serve wires the full service together and runs the HTTP server until
// interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if err := config.Validate(); err != nil {
		return err
	}

	auth, err := services.NewAuth(config.Credentials.Spotify, services.AuthOpts{
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "auth"),
	})
	if err != nil {
		return err
	}

	client := services.NewClient(services.ClientOpts{
		HTTPClient: r.httpClient,
		Refresher:  auth,
		Logger:     shared.WithLogger(r.logger, "component", "api"),
	})

	registry := agents.NewRegistry(map[string]agents.Handler{
		"spotify": agents.NewSpotifyAgent(client, shared.WithLogger(r.logger, "agent", "spotify")),
	})

	states := state.NewIssuer(config.Security.StateSecret, state.IssuerOpts{})
	gate := server.NewCredentialGate(config.Security.ServiceAPIKey, shared.WithLogger(r.logger, "component", "gate"))
	flow := server.NewOAuthFlow(auth, states, config.Client.URL, shared.WithLogger(r.logger, "component", "oauth"))

	var recorder server.Recorder
	if config.Database.Path != "" {
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			r.logger.Warn("invocation log disabled", "error", err)
		} else {
			defer db.Close()
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			repo, err := repositories.NewInvocationRepository(db)
			if err != nil {
				r.logger.Warn("invocation log disabled", "error", err)
			} else {
				recorder = repo
			}
		}
	}

	api := server.NewAgentAPI(registry, gate, recorder, shared.WithLogger(r.logger, "component", "api"))

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(r.logger), server.CORS(config.Client.URL))
	router.Handler(flow)
	router.Handler(api)

	srv := &http.Server{
		Addr:              config.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", srv.Addr, "agents", registry.Names())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the agent HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}
