package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/apiclient"
	"github.com/listenupapp/movienight/internal/backend"
	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/logger"
)

const userAgent = "movienight-console/1.0"

// APIClientHandle wraps the API client with shutdown capability.
type APIClientHandle struct {
	*apiclient.Client
}

// Shutdown implements do.Shutdownable.
func (h *APIClientHandle) Shutdown() error {
	return h.Client.Shutdown()
}

// ProvideAPIClient provides the HTTP client for the backend.
func ProvideAPIClient(i do.Injector) (*APIClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	client, err := apiclient.New(cfg.API.BaseURL, sessions.BadgerStore, log.Component("api"), apiclient.Options{
		Timeout:        cfg.API.RequestTimeout,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
		UserAgent:      userAgent,
	})
	if err != nil {
		return nil, err
	}
	return &APIClientHandle{Client: client}, nil
}

// ProvideGateway provides the typed backend endpoints.
func ProvideGateway(i do.Injector) (*backend.Gateway, error) {
	client := do.MustInvoke[*APIClientHandle](i)
	return backend.NewGateway(client.Client), nil
}
