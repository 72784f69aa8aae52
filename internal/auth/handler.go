package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/feebook/feebook/internal"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/feebook/feebook/internal/transport"
	"github.com/feebook/feebook/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// CurrentUser echoes back the authenticated identity from the token.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	h.WriteJSON(w, http.StatusOK, CurrentUserView{
		UserID:     u.UserID,
		Email:      u.Email,
		Role:       u.Role,
		ProviderID: u.ProviderID,
		ConsumerID: u.ConsumerID,
	})
}

// AuthMiddleware validates the bearer token and stores the authenticated
// identity in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := internal.ContextWithUser(r.Context(), &internal.AuthUser{
			UserID:     claims.UserID,
			Email:      claims.Email,
			Role:       claims.Role,
			ProviderID: claims.ProviderID,
			ConsumerID: claims.ConsumerID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a subtree to one role. Moderators pass everywhere.
func (h *Handler) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := internal.UserFromContext(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "missing authentication")
				return
			}
			if u.Role != role && u.Role != usermodel.RoleModerator {
				h.Logger.Warn("role check failed", "user_id", u.UserID, "role", u.Role, "required", role)
				h.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
