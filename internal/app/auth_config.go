package app

import "github.com/charlesng35/fleetcn/internal/auth"

// VerifierConfig converts AuthConfig into the parameters expected by the token verifier.
func (c AuthConfig) VerifierConfig() auth.VerifierConfig {
	leeway := c.JWT.Leeway
	if leeway <= 0 {
		leeway = auth.DefaultLeeway
	}

	return auth.VerifierConfig{
		Secret: c.JWT.Secret,
		Issuer: c.JWT.Issuer,
		Leeway: leeway,
	}
}
