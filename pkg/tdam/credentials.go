package tdam

import (
	"fmt"
	"os"
)

// Environment variables consulted when a credential is not passed explicitly.
const (
	EnvAccessToken  = "TDAM_ACCESS_TOKEN"
	EnvRefreshToken = "TDAM_REFRESH_TOKEN"
	EnvAppID        = "TDAM_APP_ID"
)

// Credentials holds the resolved auth material of one client.
//
// When Authenticated is true AccessToken and RefreshToken are non-empty.
// In public mode only AppID is set; it is sent as the apikey parameter.
type Credentials struct {
	AccessToken   string
	RefreshToken  string
	AppID         string
	Authenticated bool
}

// Resolve returns explicit if it is non-empty, otherwise the value of the
// environment variable envVar. It fails with ErrMissingCredentials when both
// are empty.
func Resolve(explicit, envVar string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v, ok := os.LookupEnv(envVar); ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s or pass it explicitly", ErrMissingCredentials, envVar)
}

// ResolveCredentials resolves the app id and, in authenticated mode, the
// access and refresh tokens. Token lookups are skipped in public mode.
func ResolveCredentials(accessToken, refreshToken, appID string, authenticated bool) (Credentials, error) {
	creds := Credentials{Authenticated: authenticated}

	if authenticated {
		var err error
		if creds.AccessToken, err = Resolve(accessToken, EnvAccessToken); err != nil {
			return Credentials{}, err
		}
		if creds.RefreshToken, err = Resolve(refreshToken, EnvRefreshToken); err != nil {
			return Credentials{}, err
		}
	}

	id, err := Resolve(appID, EnvAppID)
	if err != nil {
		return Credentials{}, err
	}
	creds.AppID = id

	return creds, nil
}
