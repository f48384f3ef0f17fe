package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizhub-service/internal/auth"
	"quizhub-service/internal/domain"
)

// AuthHandler exposes the identity flows: gateway sign-up/sign-in, the bridge
// sync onto the users table, and the cached-identity lifecycle.
type AuthHandler struct {
	gateway auth.IdentityGateway
	bridge  *auth.Bridge
}

func NewAuthHandler(gateway auth.IdentityGateway, bridge *auth.Bridge) *AuthHandler {
	return &AuthHandler{gateway: gateway, bridge: bridge}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/auth/signup", h.signUp)
	mux.HandleFunc("/auth/signin", h.signIn)
	mux.HandleFunc("/auth/oauth", h.signInWithOAuth)
	mux.HandleFunc("/auth/signout", h.signOut)
	mux.HandleFunc("/auth/session", h.session)
	mux.HandleFunc("/prefs/theme", h.theme)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oauthRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

type themeRequest struct {
	DarkMode bool `json:"darkMode"`
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	identity, err := h.gateway.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	user, err := h.finishSignIn(r, identity)
	if err != nil {
		// Roll the gateway account back so a failed first sync doesn't strand
		// an identity with no store row.
		if delErr := h.gateway.DeleteAccount(r.Context(), identity.ID); delErr != nil {
			log.Printf("compensating account delete for %s: %v", identity.ID, delErr)
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	identity, err := h.gateway.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	user, err := h.finishSignIn(r, identity)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) signInWithOAuth(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if !decode(w, r, &req) {
		return
	}
	identity, err := h.gateway.SignInWithOAuth(r.Context(), req.Provider, req.Token)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	user, err := h.finishSignIn(r, identity)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := h.bridge.ClearCachedIdentity(); err != nil {
		log.Printf("clear cached identity: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the cached identity, the restore-on-reload path. An
// unrecoverable blob reads as signed out, never as a server error.
func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	id, err := h.bridge.ResolveCachedIdentity()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": id})
}

func (h *AuthHandler) theme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, themeRequest{DarkMode: h.bridge.DarkMode()})
	case http.MethodPut, http.MethodPost:
		var req themeRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.bridge.SetDarkMode(req.DarkMode); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AuthHandler) finishSignIn(r *http.Request, identity domain.Identity) (domain.User, error) {
	user, err := h.bridge.Sync(r.Context(), identity)
	if err != nil {
		return domain.User{}, err
	}
	if err := h.bridge.CacheIdentity(identity.ID); err != nil {
		log.Printf("cache identity for %s: %v", identity.ID, err)
	}
	return user, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrAuthFailure) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
