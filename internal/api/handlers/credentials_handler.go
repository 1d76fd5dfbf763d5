package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api/respond"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

// CredentialsRequest accepts both "url" and the older "shop_url" key.
type CredentialsRequest struct {
	URL          string `json:"url"`
	ShopURL      string `json:"shop_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (req CredentialsRequest) credentials() models.Credentials {
	u := req.URL
	if strings.TrimSpace(u) == "" {
		u = req.ShopURL
	}
	return models.Credentials{ShopURL: u, ClientID: req.ClientID, ClientSecret: req.ClientSecret}
}

type CredentialsHandler struct {
	svc Credentials
	log *zap.Logger
}

func NewCredentialsHandler(svc Credentials, log *zap.Logger) *CredentialsHandler {
	return &CredentialsHandler{svc: svc, log: log}
}

// GetCredentials handles GET /credentials
func (h *CredentialsHandler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.svc.Get(r.Context())
	if errors.Is(err, models.ErrNoCredentials) {
		respond.Error(w, http.StatusNotFound, "No credentials found")
		return
	}
	if err != nil {
		fail(w, h.log, "get_credentials", err)
		return
	}
	respond.Success(w, http.StatusOK, creds.Masked())
}

// SaveCredentials handles POST /credentials
func (h *CredentialsHandler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	if err := h.svc.Save(r.Context(), req.credentials()); err != nil {
		fail(w, h.log, "save_credentials", err)
		return
	}
	respond.Success(w, http.StatusOK, nil)
}

// Connect handles POST /connect. An empty body tests the stored credentials.
func (h *CredentialsHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Err(w, err)
		return
	}

	err := h.svc.Connect(r.Context(), req.credentials())
	switch {
	case err == nil:
		respond.Message(w, http.StatusOK, "Successfully connected to Shopware")
	case errors.Is(err, models.ErrNoCredentials):
		respond.Error(w, http.StatusNotFound, "No credentials found")
	case errors.Is(err, models.ErrAuthentication):
		h.log.Warn("connection test failed", zap.Error(err))
		respond.Error(w, http.StatusBadRequest, "Could not connect to Shopware")
	default:
		fail(w, h.log, "connect", err)
	}
}
