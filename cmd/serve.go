package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/gorilla/mux"
	"github.com/itaplanner/planner-backend/pkg/communication"
	"github.com/itaplanner/planner-backend/pkg/environment"
	"github.com/itaplanner/planner-backend/pkg/planning"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the nightly recalculation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, environment.Global)
		},
	}
}

func serve(ctx context.Context, env environment.Environment) error {
	app, err := newApplication(ctx, env)
	if err != nil {
		return err
	}
	defer app.close()

	if env.IsProduction() && env.GCPProject != "" {
		err := profiler.Start(profiler.Config{
			Service:   "planner-backend",
			ProjectID: env.GCPProject,
		})
		if err != nil {
			app.logger.Error("could not start profiler", err)
		}
	}

	job := &planning.NightlyJob{
		Repository:   app.repository,
		Calendars:    app.calendars,
		Recalculator: app.recalculator,
		Logger:       app.logger,
	}
	err = job.Schedule(env.RecalcCron, app.hours.Location)
	if err != nil {
		return err
	}
	job.Start()
	defer func() { <-job.Stop().Done() }()

	handler := &planning.Handler{
		Service:         app.service,
		Recalculator:    app.recalculator,
		Logger:          app.logger,
		ResponseManager: &communication.ResponseManager{Logger: app.logger, Statuses: planning.ErrorStatuses},
	}

	r := mux.NewRouter()
	r.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)

		_, err := fmt.Fprint(writer, "Welcome to the planner API")
		if err != nil {
			app.logger.Error("could not write welcome message", err)
		}
	}).Methods(http.MethodGet)
	handler.RegisterRoutes(r)

	server := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		app.logger.Info(fmt.Sprintf("Server is listening on %s", server.Addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
