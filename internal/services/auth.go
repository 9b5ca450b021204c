package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"spotbatch/internal/server"
	"spotbatch/internal/shared"
)

// authTimeout bounds how long the browser flow waits for the callback.
const authTimeout = 2 * time.Minute

// Authenticator owns the OAuth2 flow and the on-disk token cache. A cached
// token is reused (and refreshed transparently) on later runs; when no token
// is cached, the browser authorization flow runs once.
type Authenticator struct {
	config *oauth2.Config
	server shared.ServerConfig
	cache  TokenCache
	logger *log.Logger
}

// NewAuthenticator builds an Authenticator from Spotify credentials.
func NewAuthenticator(creds shared.SpotifyConfig, srv shared.ServerConfig, cache TokenCache, logger *log.Logger) (*Authenticator, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", srv.Host, srv.Port)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopeUserLibraryRead,
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Authenticator{
		config: config,
		server: srv,
		cache:  cache,
		logger: logger,
	}, nil
}

// Client returns an authenticated Spotify client. The underlying HTTP client
// refreshes expired tokens via the cached refresh token and persists every
// refreshed token back to the cache; 429 responses are retried after the
// API-signaled backoff.
func (a *Authenticator) Client(ctx context.Context) (*spotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		a.logger.Info("no cached token, starting authorization flow")

		token, err = a.authorize(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}

		if err := a.cache.Save(token); err != nil {
			a.logger.Warnf("failed to cache token %v", err)
		} else {
			a.logger.Infof("token cached at %v", a.cache.Path)
		}
	}

	src := oauth2.ReuseTokenSource(nil, &savingTokenSource{
		src:    a.config.TokenSource(ctx, token),
		cache:  a.cache,
		logger: a.logger,
	})

	httpClient := oauth2.NewClient(ctx, src)
	return spotify.New(httpClient, spotify.WithRetry(true)), nil
}

// authorize executes the OAuth2 authorization-code flow with a local HTTP
// server handling the redirect.
func (a *Authenticator) authorize(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	authURL := a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	oauthHandler := server.NewOAuthHandler(a.config, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", a.server.Host, a.server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if err := shared.OpenBrowser(authURL); err != nil {
		a.logger.Warnf("failed to open browser automatically %v", err)
		a.logger.Infof("open this URL in your browser:\n%s", authURL)
	}

	a.logger.Info("waiting for authorization", "timeout", authTimeout)

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// savingTokenSource persists refreshed tokens so later runs skip the browser
// flow even after the access token expires.
type savingTokenSource struct {
	src    oauth2.TokenSource
	cache  TokenCache
	logger *log.Logger
	last   string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if saveErr := s.cache.Save(token); saveErr != nil {
			// Refresh still succeeded; the next run will redo the flow.
			s.logger.Warnf("failed to cache refreshed token %v", saveErr)
		}
	}

	return token, nil
}
