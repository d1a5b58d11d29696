package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/AdeptTravel/adept-settings/internal/config"
)

// OIDCScopes are requested for Google sign-in.
var OIDCScopes = []string{"openid", "email", "profile"}

// OAuthConfig builds the Google OAuth2 client from the client id and the
// decoded client secret.  It fails only when GOOGLE_CLIENT_SECRET_B64 is not
// valid base64.
func OAuthConfig(cfg config.Auth, redirectURL string) (*oauth2.Config, error) {
	secret, err := cfg.ClientSecret()
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: secret.Reveal(),
		Endpoint:     endpoints.Google,
		RedirectURL:  redirectURL,
		Scopes:       OIDCScopes,
	}, nil
}
