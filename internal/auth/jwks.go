package auth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"go.uber.org/zap"
)

// NewJWKS fetches the JSON Web Key Set at url and keeps it refreshed in the
// background. Callers stop the refresh with EndBackground.
func NewJWKS(url string, logger *zap.Logger) (*keyfunc.JWKS, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", zap.String("url", url), zap.Error(err))
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return jwks, nil
}
