package auth

import (
	"errors"
	"log"
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

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,nameok"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	IsApp                *bool  `json:"is_app,omitempty"` // Optional: if true, token expires in 30 days
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check if registration is closed
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("closed_register, name").Take(&appSetting).Error; err == nil && appSetting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Registration is currently closed. Please try again later.",
			Data:    map[string]interface{}{"closed_register": true, "application": appSetting.Name},
		})
		return
	}

	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	// Trim inputs
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Full name must not be empty"})
		return
	}
	if req.Email == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Email must not be empty"})
		return
	}
	if len(req.Password) < 6 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Password must be at least 6 characters"})
		return
	}
	if req.Password != req.PasswordConfirmation {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Passwords do not match"})
		return
	}

	db := database.DB

	// Ensure unique email
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[register] DB error checking email: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	newUser := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hashed),
		Membership: "Bronze",
		Balance:    0,
		Status:     "Active",
		Provider:   "email",
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("[register] DB Create user error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
		return
	}

	// Determine token expiry based on is_app flag
	var tokenExpiry time.Duration
	var exp time.Time
	isApp := req.IsApp != nil && *req.IsApp
	if isApp {
		tokenExpiry = 30 * 24 * time.Hour // 30 days
		exp = time.Now().Add(tokenExpiry)
	} else {
		tokenExpiry = 15 * time.Minute // Default 15 minutes
		exp = time.Now().Add(tokenExpiry)
	}

	// Generate access and refresh tokens
	accessToken, err := utils.GenerateAccessTokenWithExpiry(newUser.ID, "user", tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create token"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	var setting models.Setting
	err = db.Model(&models.Setting{}).
		Select("name, company, logo, activation_fee, till_name, till_number, min_withdraw, max_withdraw, withdraw_charge, link_cs, link_app").
		Take(&setting).Error
	healthy := true
	if err != nil {
		healthy = false
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful, welcome!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"name":          newUser.Name,
				"email":         newUser.Email,
				"membership":    newUser.Membership,
				"balance":       newUser.Balance,
				"earnings":      newUser.Earnings,
				"completed":     newUser.Completed,
				"quality_score": newUser.QualityScore,
				"is_activated":  newUser.IsActivated,
				"photo":         utils.PhotoURL(newUser.Photo),
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
