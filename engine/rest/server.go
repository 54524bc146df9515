// Package rest exposes the registry reader over HTTP: a compression route
// for whole transactions and a per-authority table listing.
package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/module"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// NewRouter builds the lookup route tree around the given reader.
func NewRouter(reader RegistryReader, log zerolog.Logger, collector module.RestMetrics) *mux.Router {
	handler := NewHandler(reader, log)

	router := mux.NewRouter().StrictSlash(true)
	router.Use(LoggingMiddleware(log))
	router.Use(MetricsMiddleware(collector))

	lookupRouter := router.PathPrefix("/lookup").Subrouter()
	lookupRouter.HandleFunc("/get_addresses", handler.GetAddresses).Methods(http.MethodPost)
	lookupRouter.HandleFunc("/authority_addresses/{authority}", handler.GetAuthorityAddresses).Methods(http.MethodGet)

	return router
}

// NewServer returns an HTTP server serving the lookup routes on the given
// address, with permissive CORS for browser clients.
func NewServer(reader RegistryReader, listenAddress string, log zerolog.Logger, collector module.RestMetrics) *http.Server {
	router := NewRouter(reader, log, collector)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	})

	return &http.Server{
		Addr:         listenAddress,
		Handler:      c.Handler(router),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
