package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"quizhub-service/internal/domain"
)

// HTTPGateway talks to a token-issuing identity service over its REST API
// (one POST endpoint per operation, JSON in and out, an ID token in the
// response). Credential verification stays on the service side; this client
// only lifts identity claims out of the returned token.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu       sync.Mutex
	current  *domain.Identity
	handlers map[int]func(*domain.Identity)
	nextID   int
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:  baseURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		handlers: make(map[int]func(*domain.Identity)),
	}
}

type tokenResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type gatewayError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *HTTPGateway) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	return g.credentialCall(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (g *HTTPGateway) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	return g.credentialCall(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (g *HTTPGateway) SignInWithOAuth(ctx context.Context, provider, providerToken string) (domain.Identity, error) {
	return g.credentialCall(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":          fmt.Sprintf("id_token=%s&providerId=%s", providerToken, provider),
		"returnSecureToken": true,
	})
}

func (g *HTTPGateway) SignOut(_ context.Context) error {
	g.mu.Lock()
	g.current = nil
	handlers := g.snapshotHandlers()
	g.mu.Unlock()
	for _, h := range handlers {
		h(nil)
	}
	return nil
}

func (g *HTTPGateway) DeleteAccount(ctx context.Context, identityID string) error {
	_, err := g.post(ctx, "accounts:delete", map[string]any{"localId": identityID})
	return err
}

func (g *HTTPGateway) OnIdentityChange(handler func(*domain.Identity)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.handlers[id] = handler
	current := g.current
	g.mu.Unlock()

	// Deliver the current state immediately, mirroring the gateway's own
	// on-change semantics.
	handler(current)

	return func() {
		g.mu.Lock()
		delete(g.handlers, id)
		g.mu.Unlock()
	}
}

func (g *HTTPGateway) credentialCall(ctx context.Context, op string, body map[string]any) (domain.Identity, error) {
	resp, err := g.post(ctx, op, body)
	if err != nil {
		return domain.Identity{}, err
	}
	identity, err := identityFromToken(resp)
	if err != nil {
		return domain.Identity{}, err
	}

	g.mu.Lock()
	g.current = &identity
	handlers := g.snapshotHandlers()
	g.mu.Unlock()
	for _, h := range handlers {
		h(&identity)
	}
	return identity, nil
}

func (g *HTTPGateway) post(ctx context.Context, op string, body map[string]any) (tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return tokenResponse{}, err
	}
	url := fmt.Sprintf("%s/v1/%s?key=%s", g.baseURL, op, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var gwErr gatewayError
		_ = json.NewDecoder(res.Body).Decode(&gwErr)
		msg := gwErr.Error.Message
		if msg == "" {
			msg = res.Status
		}
		return tokenResponse{}, fmt.Errorf("%w: %s", domain.ErrAuthFailure, msg)
	}

	var tr tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tr); err != nil {
		return tokenResponse{}, fmt.Errorf("%w: decode response: %v", domain.ErrAuthFailure, err)
	}
	return tr, nil
}

// identityFromToken lifts identity fields out of the ID token claims. The
// token is not verified here; signature checking is the gateway's job and the
// token never crosses a trust boundary inside this process.
func identityFromToken(resp tokenResponse) (domain.Identity, error) {
	identity := domain.Identity{ID: resp.LocalID, Email: resp.Email}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, claims); err != nil {
		if identity.ID == "" {
			return domain.Identity{}, fmt.Errorf("%w: parse id token: %v", domain.ErrAuthFailure, err)
		}
		return identity, nil
	}

	if identity.ID == "" {
		if sub, ok := claims["sub"].(string); ok {
			identity.ID = sub
		}
	}
	if identity.Email == "" {
		if email, ok := claims["email"].(string); ok {
			identity.Email = email
		}
	}
	if name, ok := claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if created, ok := claims["created_at"].(float64); ok {
		identity.CreatedAt = time.Unix(int64(created), 0).UTC()
	} else if iat, ok := claims["iat"].(float64); ok {
		identity.CreatedAt = time.Unix(int64(iat), 0).UTC()
	}

	if identity.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: token carries no subject", domain.ErrAuthFailure)
	}
	return identity, nil
}

func (g *HTTPGateway) snapshotHandlers() []func(*domain.Identity) {
	handlers := make([]func(*domain.Identity), 0, len(g.handlers))
	for _, h := range g.handlers {
		handlers = append(handlers, h)
	}
	return handlers
}
