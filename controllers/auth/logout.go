package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/utils"

	"github.com/golang-jwt/jwt/v5"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// revokeAccessJTI revokes the access-token jti from the Authorization header, best effort.
func revokeAccessJTI(r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	tkn, err := utils.ValidateToken(tokenStr)
	if err != nil || tkn == nil {
		return
	}
	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jtiRaw, ok := claims["jti"].(string)
	if !ok || jtiRaw == "" {
		return
	}
	// determine TTL from exp if possible
	var ttl time.Duration
	if expRaw, ok := claims["exp"]; ok {
		switch v := expRaw.(type) {
		case float64:
			ttl = time.Until(time.Unix(int64(v), 0))
		case int64:
			ttl = time.Until(time.Unix(v, 0))
		case int:
			ttl = time.Until(time.Unix(int64(v), 0))
		}
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = utils.RevokeJTI(jtiRaw, ttl)
}

// LogoutHandler revokes a specific refresh token and (optionally) the access token jti from Authorization header
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	revokeAccessJTI(r)

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	// If the row is not found still return success to avoid token enumeration
	_ = database.DB.Table("refresh_tokens").Where("id = ?", req.RefreshToken).Update("revoked", true).Error
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
