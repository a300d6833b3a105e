package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "vacai/internal/config"
	intdb "vacai/internal/db"
	api "vacai/internal/http"
	h "vacai/internal/http/handlers"
	"vacai/internal/event"
	"vacai/internal/identity"
	"vacai/internal/logging"
	"vacai/internal/repositories"
	"vacai/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if err := env.CheckSecrets(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.OpenDB(ctx, env)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := intdb.Migrate(ctx, db); err != nil {
		return err
	}

	var profiles services.ProfileStore = repositories.ProfileRepository{DB: db}
	if env.ProfileBackend == "mongo" {
		client, mdb, err := intconfig.OpenMongo(ctx, env)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		profiles = repositories.MongoProfileRepository{Coll: mdb.Collection(repositories.ProfilesCollection)}
	}

	bus := event.NewBus()
	defer bus.Close()

	provider := identity.NewProvider(repositories.UserRepository{DB: db}, bus, identity.Options{
		Secret:            []byte(env.JWTSecret),
		TokenTTL:          env.TokenTTL,
		MinPasswordLength: env.MinPasswordLength,
		FederatedIssuer:   env.FederatedIssuer,
		FederatedSecret:   []byte(env.FederatedSecret),
	})

	agents := services.NewAgentStateService(repositories.AgentStateRepository{DB: db}, bus, env.AgentName)

	actions := services.NewActionRegistry()
	if err := services.RegisterBuiltins(actions, services.ProfileService{Store: profiles}); err != nil {
		return err
	}

	cfg := layoutConfig(env)
	timeline := services.NewTimelineService(agents, bus, cfg, env.ViewIdleTTL)
	if err := timeline.Start(); err != nil {
		return err
	}
	defer timeline.Close()

	a := &h.API{
		DB:       db,
		Identity: provider,
		Profiles: profiles,
		Agents:   agents,
		Actions:  actions,
		Timeline: timeline,
		Bus:      bus,
		Layout:   cfg,
	}
	r := api.NewRouter(env, a, provider)

	// The state stream clears its own write deadline.
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", env.AppAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Closing the bus ends open state streams before the server waits on them.
	timeline.Close()
	_ = bus.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logging.Info().Msg("server stopped")
	return nil
}
