package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/middleware"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdmin"`
	IsApp    *bool  `json:"is_app,omitempty"` // Optional: if true, token expires in 30 days
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check maintenance mode
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	db := database.DB
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Incorrect email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Check user status - only Active users can login
	status := strings.ToLower(user.Status)
	if status != "active" {
		if status == "suspend" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account has been suspended, please contact support"})
			return
		}
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is inactive, please contact support"})
		return
	}

	// check account lockout
	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many login attempts. Try again later.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		// record failed login attempt for lockout tracking
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Incorrect email or password"})
		return
	}

	// on successful login reset failed login counter
	middleware.ResetFailedLogin(user.ID)

	now := time.Now()
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", now)

	// Determine token expiry based on is_app flag
	var tokenExpiry time.Duration
	var exp time.Time
	isApp := req.IsApp != nil && *req.IsApp
	if isApp {
		tokenExpiry = 30 * 24 * time.Hour // 30 days
		exp = now.Add(tokenExpiry)
	} else {
		tokenExpiry = 15 * time.Minute // Default 15 minutes
		exp = now.Add(tokenExpiry)
	}

	// generate access token and refresh token (stored in DB)
	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, "user", tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Login failed"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	var totalWithdraw float64
	db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", user.ID, "Success").
		Select("COALESCE(SUM(amount),0)").Scan(&totalWithdraw)

	var setting models.Setting
	err = db.Model(&models.Setting{}).
		Select("name, company, logo, activation_fee, till_name, till_number, min_withdraw, max_withdraw, withdraw_charge, link_cs, link_app").
		Take(&setting).Error
	healthy := true
	if err != nil {
		healthy = false
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful! Redirecting to dashboard...",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"name":           user.Name,
				"email":          user.Email,
				"membership":     user.Membership,
				"balance":        user.Balance,
				"earnings":       user.Earnings,
				"completed":      user.Completed,
				"quality_score":  user.QualityScore,
				"is_activated":   user.IsActivated,
				"total_withdraw": totalWithdraw,
				"photo":          utils.PhotoURL(user.Photo),
			},
			"application": map[string]interface{}{
				"name":            setting.Name,
				"company":         setting.Company,
				"logo":            setting.Logo,
				"activation_fee":  setting.ActivationFee,
				"till_name":       setting.TillName,
				"till_number":     setting.TillNumber,
				"min_withdraw":    setting.MinWithdraw,
				"max_withdraw":    setting.MaxWithdraw,
				"withdraw_charge": setting.WithdrawCharge,
				"link_cs":         setting.LinkCS,
				"link_app":        setting.LinkApp,
				"healthy":         healthy,
			},
		},
	})
}
