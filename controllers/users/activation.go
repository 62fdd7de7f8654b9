package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"gorm.io/gorm"
)

type ActivationRequest struct {
	Message string `json:"message"`
}

// GET /v1/users/activation
func ActivationStatusHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.Select("id, is_activated").First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	var setting models.Setting
	_ = db.Model(&models.Setting{}).Select("activation_fee, till_name, till_number").Take(&setting).Error

	data := map[string]interface{}{
		"is_activated":   user.IsActivated,
		"activation_fee": setting.ActivationFee,
		"till_name":      setting.TillName,
		"till_number":    setting.TillNumber,
	}
	if user.IsActivated {
		var payment models.ActivationPayment
		if err := db.Where("user_id = ?", uid).Order("id DESC").First(&payment).Error; err == nil {
			data["receipt_code"] = payment.ReceiptCode
			data["activated_at"] = payment.CreatedAt
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: data})
}

// POST /v1/users/activation
// The user pastes the M-Pesa confirmation message after paying the
// activation fee to the configured till. The message must mention the fee
// amount and the till name, and its receipt code can only be used once.
func ActivateHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req ActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Paste the M-Pesa confirmation message"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if user.IsActivated {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Account is already activated"})
		return
	}

	var setting models.Setting
	if err := db.Model(&models.Setting{}).Select("activation_fee, till_name, till_number").Take(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	receiptCode, err := utils.VerifyMpesaMessage(req.Message, setting.ActivationFee, setting.TillName)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	// A receipt code activates exactly one account once.
	var existing models.ActivationPayment
	if err := db.Where("receipt_code = ?", receiptCode).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "This confirmation message has already been used"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	payment := models.ActivationPayment{
		UserID:      uid,
		OrderID:     utils.GenerateOrderID(uid),
		ReceiptCode: receiptCode,
		Amount:      setting.ActivationFee,
		RawMessage:  req.Message,
		Status:      "Success",
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", uid).Update("is_activated", true).Error; err != nil {
			return err
		}
		txRow := models.Transaction{
			UserID:          uid,
			Amount:          setting.ActivationFee,
			Charge:          0,
			OrderID:         payment.OrderID,
			TransactionFlow: "credit",
			TransactionType: "activation",
			Message:         ptrString("Account activation fee"),
			Status:          "Success",
		}
		return tx.Create(&txRow).Error
	})
	if err != nil {
		log.Printf("[activation] failed to activate user %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Activation failed, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Account activated, withdrawals are now unlocked",
		Data: map[string]interface{}{
			"is_activated": true,
			"receipt_code": receiptCode,
			"order_id":     payment.OrderID,
		},
	})
}
