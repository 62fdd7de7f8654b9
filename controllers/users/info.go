package users

import (
	"errors"
	"net/http"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"gorm.io/gorm"
)

func InfoHandler(w http.ResponseWriter, r *http.Request) {
	// Auth middleware sets user ID in context; use that
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var setting models.Setting
	err := db.Model(&models.Setting{}).
		Select("name, company, logo, activation_fee, till_name, till_number, min_withdraw, max_withdraw, withdraw_charge, link_cs, link_app").
		Take(&setting).Error
	healthy := true
	if err != nil {
		healthy = false
	}

	var totalWithdraw float64
	db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", user.ID, "Success").
		Select("COALESCE(SUM(amount),0)").Scan(&totalWithdraw)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Succesfully",
		Data: map[string]interface{}{
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
				"mpesa_number":   user.MpesaNumber,
				"paypal_email":   user.PaypalEmail,
				"bio":            user.Bio,
				"phone":          user.Phone,
				"location":       user.Location,
				"photo":          utils.PhotoURL(user.Photo),
				"last_login":     user.LastLogin,
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
