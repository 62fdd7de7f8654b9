package auth

import (
	"net/http"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/utils"
)

// LogoutAllHandler revokes all refresh tokens for the authenticated user
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	// Best-effort: revoke current access token jti if present
	revokeAccessJTI(r)

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Table("refresh_tokens").Where("user_id = ?", uid).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "All sessions revoked"})
}
