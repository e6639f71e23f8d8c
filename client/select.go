package client

import (
	"context"
	"log"
	"net/http"
	"time"

	"juaconnect-server/services"
)

// healthTimeout bounds the probe Select makes before falling back.
const healthTimeout = 3 * time.Second

// Select returns an HTTP backend when the API at baseURL is healthy and a
// local backend over fallback otherwise.
func Select(ctx context.Context, baseURL string, id Identity, fallback *services.Marketplace, httpClient *http.Client) Backend {
	if baseURL != "" {
		remote := NewHTTPClient(baseURL, id, httpClient)
		probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		err := remote.Health(probeCtx)
		if err == nil {
			log.Printf("🌐 Using marketplace API at %s", baseURL)
			return remote
		}
		log.Printf("⚠️  Marketplace API at %s unavailable (%v), using local backend", baseURL, err)
	}
	return NewLocal(fallback, id)
}
