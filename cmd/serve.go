package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/api/handlers"
	"github.com/EO-DataHub/eodhp-kasm-services/api/services"
	docs "github.com/EO-DataHub/eodhp-kasm-services/docs"
	internal "github.com/EO-DataHub/eodhp-kasm-services/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title EODHP Kasm Services API
// @version v1
// @description This is the API for inspecting and extending Kasm sessions.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}

		notifier := newNotifier()
		defer notifier.Close()

		client := newKasmClient()
		service := &services.Service{
			Config:   appCfg,
			Kasm:     client,
			Extender: internal.NewExtender(client, notifier),
		}

		// The extension history is optional
		if appCfg.Database.Source != "" {
			extensionDB, err := openExtensionDB()
			if err != nil {
				return fmt.Errorf("failed to initialize extension database: %w", err)
			}
			defer extensionDB.Close()
			service.DB = extensionDB
		}

		r := mux.NewRouter()
		handlers.RegisterRoutes(r, appCfg.BasePath, appCfg.Auth.AdminRole, service)

		// Docs
		docs.SwaggerInfo.Host = appCfg.Host
		docs.SwaggerInfo.BasePath = appCfg.BasePath
		r.PathPrefix(appCfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(appCfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)

		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Server shutdown failed")
			}
		}()

		log.Info().Msgf("Server started at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		log.Info().Msg("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
