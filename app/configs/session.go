package configs

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// NewSessionStore builds the cookie session store from the base64-encoded
// keys in the environment. In development missing keys fall back to random
// ones, which invalidates sessions on every restart; production requires
// both keys to be set.
func NewSessionStore(env ENV) (sessions.Store, error) {
	authKey, encKey, err := sessionKeys(env)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(authKey, encKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   env.AppEnv == "production",
	}
	return store, nil
}

func sessionKeys(env ENV) (authKey, encKey []byte, err error) {
	if env.AppAuthKey == "" || env.AppEncKey == "" {
		if env.AppEnv == "production" {
			return nil, nil, fmt.Errorf("APP_AUTH_KEY and APP_ENC_KEY must be set in production")
		}
		return securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32), nil
	}

	authKey, err = base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode APP_AUTH_KEY: %w", err)
	}
	encKey, err = base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode APP_ENC_KEY: %w", err)
	}
	if n := len(encKey); n != 16 && n != 24 && n != 32 {
		return nil, nil, fmt.Errorf("APP_ENC_KEY must decode to 16, 24 or 32 bytes, got %d", n)
	}
	return authKey, encKey, nil
}
