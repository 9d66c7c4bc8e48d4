package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/fleetcn/pkg/crypto"
)

const (
	jwtSecretBytes    = 48
	defaultRateWindow = time.Minute
)

// KeyJWTSecret names the generated verification secret in ApplyRuntimeDefaults output.
const KeyJWTSecret = "auth.jwt.secret"

// ApplyRuntimeDefaults fills settings the server cannot start without and normalises
// page size bounds. It returns the keys whose values were generated, never the values.
func ApplyRuntimeDefaults(cfg *Config) ([]string, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var generated []string
	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", KeyJWTSecret, err)
		}
		cfg.Auth.JWT.Secret = secret
		generated = append(generated, KeyJWTSecret)
	}

	if limit := &cfg.Server.RateLimit; limit.Requests > 0 && limit.Window <= 0 {
		limit.Window = defaultRateWindow
	}
	cfg.Pagination = cfg.Pagination.Normalised()

	return generated, nil
}
