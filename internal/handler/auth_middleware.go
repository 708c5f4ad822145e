package handler

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwtmanager "github.com/morf1lo/jwt-pair-manager"
	"github.com/orbitx/notification-service/internal/model"
)

func (h *Handler) authMiddleware(r *http.Request) (*model.User, error) {
	claims, err := h.GetJWTClaimsFromRequest(r)
	if err != nil {
		return nil, err
	}

	userIDString, exists := claims["id"].(string)
	if !exists {
		return nil, errInvalidJWT
	}
	userID, err := uuid.Parse(userIDString)
	if err != nil {
		return nil, errInvalidUserID
	}

	user, err := h.services.User.FindByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (h *Handler) GetJWTClaimsFromRequest(r *http.Request) (jwt.MapClaims, error) {
	bearerHeader := r.Header.Get("Authorization")

	if !strings.HasPrefix(bearerHeader, "Bearer ") {
		return nil, errNoToken
	}

	token := strings.Split(bearerHeader, " ")[1]
	if token == "" {
		return nil, errNoToken
	}

	return jwtmanager.DecodeJWT(token, []byte(os.Getenv("ACCESS_SECRET")))
}
