package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalRequest struct {
	Amount          float64 `json:"amount"`
	PayoutAccountID uint    `json:"payout_account_id"`
}

func WithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}

	// Only Active users can withdraw
	status := strings.ToLower(user.Status)
	if status != "active" {
		if status == "suspend" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account has been suspended, please contact support"})
			return
		}
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is inactive, please contact support"})
		return
	}

	// Withdrawals are locked behind the one-time activation payment
	if !user.IsActivated {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Activate your account before requesting a withdrawal",
			Data:    map[string]interface{}{"is_activated": false},
		})
		return
	}

	// Load settings
	sqlDB, err := database.DB.DB()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}
	setting, err := models.GetSetting(sqlDB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}

	// Validate amount
	if req.Amount < setting.MinWithdraw {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: fmt.Sprintf("Minimum withdrawal is %.2f", setting.MinWithdraw)})
		return
	}
	if req.Amount > setting.MaxWithdraw {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: fmt.Sprintf("Maximum withdrawal is %.2f", setting.MaxWithdraw)})
		return
	}

	// One withdrawal per calendar day
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	var todayWithdrawals int64
	if err := db.Model(&models.Withdrawal{}).Where("user_id = ? AND created_at BETWEEN ? AND ?", uid, startOfDay, endOfDay).Count(&todayWithdrawals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}
	if todayWithdrawals > 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You can only make one withdrawal per day"})
		return
	}

	// Load payout account owned by user
	var acc models.PayoutAccount
	if err := db.Where("id = ? AND user_id = ?", req.PayoutAccountID, uid).First(&acc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Payout account not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}

	// Compute charge and final amount
	charge := utils.RoundFloat(req.Amount*(setting.WithdrawCharge/100.0), 2)
	finalAmount := req.Amount - charge
	orderID := utils.GenerateOrderID(uid)

	var errInsufficientBalance = errors.New("insufficient_balance")

	var wd models.Withdrawal
	if err := db.Transaction(func(tx *gorm.DB) error {
		// Lock user row for update and validate balance
		var lockedUser models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lockedUser, uid).Error; err != nil {
			return err
		}
		if lockedUser.Balance < req.Amount {
			return errInsufficientBalance
		}
		if err := tx.Model(&models.User{}).Where("id = ?", uid).
			Update("balance", gorm.Expr("balance - ?", req.Amount)).Error; err != nil {
			return err
		}

		wd = models.Withdrawal{
			UserID:          uid,
			PayoutAccountID: acc.ID,
			Amount:          req.Amount,
			Charge:          charge,
			FinalAmount:     finalAmount,
			OrderID:         orderID,
			Status:          "Pending",
		}
		if err := tx.Create(&wd).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Withdrawal to %s %s", acc.Method, MaskDestination(acc.Destination))
		trx := models.Transaction{
			UserID:          uid,
			Amount:          req.Amount,
			Charge:          charge,
			OrderID:         orderID,
			TransactionFlow: "credit",
			TransactionType: "withdrawal",
			Message:         &msg,
			Status:          "Pending",
		}
		return tx.Create(&trx).Error
	}); err != nil {
		if errors.Is(err, errInsufficientBalance) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "A system error occurred, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request submitted",
		Data: map[string]interface{}{
			"withdrawal": map[string]interface{}{
				"id":           wd.ID,
				"order_id":     wd.OrderID,
				"amount":       wd.Amount,
				"charge":       wd.Charge,
				"final_amount": wd.FinalAmount,
				"method":       acc.Method,
				"destination":  MaskDestination(acc.Destination),
				"holder_name":  acc.HolderName,
				"status":       wd.Status,
				"created_at":   wd.CreatedAt.Format(time.RFC3339),
			},
		},
	})
}

// GET /v1/users/withdrawals
func ListWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")
	searchQuery := strings.TrimSpace(r.URL.Query().Get("search"))

	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit < 1 {
		limit = 10
	}

	db := database.DB

	countQuery := db.Model(&models.Withdrawal{}).Where("user_id = ?", uid)
	if searchQuery != "" {
		countQuery = countQuery.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}

	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var withdrawals []models.Withdrawal
	query := db.Where("user_id = ?", uid)
	if searchQuery != "" {
		query = query.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&withdrawals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	var resp []map[string]interface{}
	for _, wd := range withdrawals {
		var acc models.PayoutAccount
		db.First(&acc, wd.PayoutAccountID)
		resp = append(resp, map[string]interface{}{
			"amount":          wd.Amount,
			"charge":          wd.Charge,
			"final_amount":    wd.FinalAmount,
			"order_id":        wd.OrderID,
			"status":          wd.Status,
			"withdrawal_time": wd.CreatedAt.Format(time.RFC3339),
			"method":          acc.Method,
			"destination":     MaskDestination(acc.Destination),
			"holder_name":     acc.HolderName,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": resp,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

// MaskDestination hides the middle of a payout destination (phone or email).
func MaskDestination(destination string) string {
	if at := strings.Index(destination, "@"); at > 0 {
		local := destination[:at]
		if len(local) <= 2 {
			return "**" + destination[at:]
		}
		return local[:2] + "****" + destination[at:]
	}
	if len(destination) <= 6 {
		return destination
	}
	return destination[:4] + "****" + destination[len(destination)-4:]
}
