package users

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"gorm.io/gorm"
)

type AddPayoutAccountRequest struct {
	Method      string `json:"method"`
	Destination string `json:"destination"`
	HolderName  string `json:"holder_name"`
}

func validatePayoutDestination(method, destination string) string {
	switch method {
	case "mpesa":
		if err := utils.ValidateMpesaNumber(destination); err != nil {
			return "Destination must be a valid M-Pesa mobile number"
		}
	case "paypal":
		if ok, _ := regexp.MatchString(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, destination); !ok {
			return "Destination must be a valid PayPal email address"
		}
	default:
		return "Method must be mpesa or paypal"
	}
	return ""
}

// POST /v1/users/payout-accounts
func AddPayoutAccountHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req AddPayoutAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}

	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	req.Destination = strings.TrimSpace(req.Destination)
	req.HolderName = strings.TrimSpace(req.HolderName)

	if msg := validatePayoutDestination(req.Method, req.Destination); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	// Holder name: 3-100 chars, letters and spaces
	if len(req.HolderName) < 3 || len(req.HolderName) > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Holder name must be 3-100 characters, letters only"})
		return
	}
	if ok, _ := regexp.MatchString(`^[A-Za-z ]+$`, req.HolderName); !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Holder name must be 3-100 characters, letters only"})
		return
	}

	db := database.DB

	// Limit 3 payout accounts per user
	var cnt int64
	if err := db.Model(&models.PayoutAccount{}).Where("user_id = ?", uid).Count(&cnt).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}
	if cnt >= 3 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You have reached the maximum of 3 payout accounts"})
		return
	}

	// Duplicate check: user_id + method + destination
	var dup models.PayoutAccount
	if err := db.Where("user_id = ? AND method = ? AND destination = ?", uid, req.Method, req.Destination).First(&dup).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
			return
		}
	} else {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This payout account is already registered"})
		return
	}

	acc := models.PayoutAccount{
		UserID:      uid,
		Method:      req.Method,
		Destination: req.Destination,
		HolderName:  req.HolderName,
	}

	if err := db.Create(&acc).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Payout account added successfully",
		Data: map[string]interface{}{
			"payout_account": map[string]interface{}{
				"id":          acc.ID,
				"method":      acc.Method,
				"destination": acc.Destination,
				"holder_name": acc.HolderName,
			},
		},
	})
}

// GET /v1/users/payout-accounts
func ListPayoutAccountsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB
	var accounts []models.PayoutAccount
	if err := db.Where("user_id = ?", uid).Find(&accounts).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to fetch payout accounts"})
		return
	}
	resp := make([]map[string]interface{}, 0, len(accounts))
	for _, acc := range accounts {
		resp = append(resp, map[string]interface{}{
			"id":          acc.ID,
			"method":      acc.Method,
			"destination": acc.Destination,
			"holder_name": acc.HolderName,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"payout_account": resp,
		},
	})
}

// PUT /v1/users/payout-accounts
func EditPayoutAccountHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req struct {
		ID          uint   `json:"id"`
		Method      string `json:"method"`
		Destination string `json:"destination"`
		HolderName  string `json:"holder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	if req.Method == "" && req.Destination == "" && req.HolderName == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Minimum one field must be filled"})
		return
	}

	db := database.DB
	var acc models.PayoutAccount
	if err := db.Where("user_id = ? AND id = ?", uid, req.ID).First(&acc).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Payout account not found"})
		return
	}

	method := acc.Method
	if req.Method != "" {
		method = strings.ToLower(strings.TrimSpace(req.Method))
	}
	destination := acc.Destination
	if req.Destination != "" {
		destination = strings.TrimSpace(req.Destination)
	}
	if msg := validatePayoutDestination(method, destination); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	update := map[string]interface{}{
		"method":      method,
		"destination": destination,
	}
	if req.HolderName != "" {
		update["holder_name"] = strings.TrimSpace(req.HolderName)
	}
	if err := db.Model(&acc).Updates(update).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update payout account"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payout account updated successfully"})
}

// DELETE /v1/users/payout-accounts
func DeletePayoutAccountHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid request"})
		return
	}
	db := database.DB
	if err := db.Where("user_id = ? AND id = ?", uid, req.ID).Delete(&models.PayoutAccount{}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to delete payout account"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payout account deleted successfully"})
}
