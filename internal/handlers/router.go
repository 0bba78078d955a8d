package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/story-director/pkg/storage"
)

// Routes bundles the dependencies of the HTTP API.
type Routes struct {
	Storage  storage.Storage
	Director Resolver
	Notifier WorldNotifier // Optional
	Logger   *slog.Logger
}

// NewMux registers every endpoint on a new ServeMux.
func NewMux(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/health", NewHealthHandler(rt.Storage, rt.Logger))
	mux.Handle("/v1/resolve", NewResolveHandler(rt.Director, rt.Logger))
	mux.Handle("/v1/preview", NewPreviewHandler(rt.Director, rt.Logger))

	storyletHandler := NewStoryletHandler(rt.Logger, rt.Storage)
	mux.Handle("/v1/storylets", storyletHandler)
	mux.Handle("/v1/storylets/", storyletHandler)

	worldHandler := NewWorldHandler(rt.Logger, rt.Storage, rt.Notifier)
	mux.Handle("/v1/worlds", worldHandler)
	mux.Handle("/v1/worlds/", worldHandler)

	return mux
}
