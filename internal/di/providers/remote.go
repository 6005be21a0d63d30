package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/credential"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
)

// ProvideKeyring provides the keyring entry holding the bearer token.
func ProvideKeyring(i do.Injector) (*credential.Keyring, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return credential.NewKeyring(cfg.Credential.KeyringService, cfg.Credential.KeyringAccount), nil
}

// ProvideTokenSource provides the credential sent with every request.
// A configured token takes precedence over the keyring.
func ProvideTokenSource(i do.Injector) (remote.TokenSource, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Credential.Token != "" {
		return credential.Static(cfg.Credential.Token), nil
	}
	return do.MustInvoke[*credential.Keyring](i), nil
}

// ProvideRemoteClient provides the rate-limited record service client.
func ProvideRemoteClient(i do.Injector) (*remote.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return remote.New(remote.Options{
		BaseURL:   cfg.Remote.URL,
		Timeout:   cfg.Remote.Timeout,
		RateLimit: cfg.Remote.RateLimit,
		Burst:     cfg.Remote.Burst,
		Tokens:    do.MustInvoke[remote.TokenSource](i),
		Logger:    log.Logger,
	})
}

// ProvideCollections provides the typed remote collections.
func ProvideCollections(i do.Injector) (*remote.Collections, error) {
	return remote.NewCollections(do.MustInvoke[*remote.Client](i)), nil
}
