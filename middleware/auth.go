package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MeAsCoder/PaidTasks/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized",
			})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		// Use shared validation which checks signature and registered claims
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Your session has expired, please log in again",
				})
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Invalid token",
			})
			return
		}

		// Extract user ID
		var userID uint
		if rawID, ok := claims["id"]; ok {
			switch v := rawID.(type) {
			case float64:
				userID = uint(v)
			case int:
				userID = uint(v)
			case string:
				var n uint
				_, _ = fmt.Sscanf(v, "%d", &n)
				userID = n
			}
		}

		// Extract role
		var role string
		if rStr, ok := claims["role"].(string); ok {
			role = rStr
		}

		// Completion and flow state is scoped per device, so resolve it once here.
		deviceID := r.Header.Get("X-Device-ID")
		if deviceID == "" {
			deviceID = "web"
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)
		ctx = context.WithValue(ctx, utils.DeviceIDKey, deviceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
