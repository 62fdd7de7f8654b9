package users

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"
)

// GET /v1/users/transactions
// Optional filters: ?type=task_reward|withdrawal|activation, ?search=order id,
// ?page / ?limit pagination.
func GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	txType := strings.TrimSpace(r.URL.Query().Get("type"))
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

	countQuery := db.Model(&models.Transaction{}).Where("user_id = ?", uid)
	if txType != "" && txType != "null" {
		countQuery = countQuery.Where("transaction_type = ?", txType)
	}
	if searchQuery != "" {
		countQuery = countQuery.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}

	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var transactions []models.Transaction
	query := db.Where("user_id = ?", uid)
	if txType != "" && txType != "null" {
		query = query.Where("transaction_type = ?", txType)
	}
	if searchQuery != "" {
		query = query.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	type transactionDTO struct {
		ID              uint    `json:"id"`
		UserID          uint    `json:"user_id"`
		Amount          float64 `json:"amount"`
		Charge          float64 `json:"charge"`
		OrderID         string  `json:"order_id"`
		TransactionFlow string  `json:"transaction_flow"`
		TransactionType string  `json:"transaction_type"`
		Message         *string `json:"message,omitempty"`
		Status          string  `json:"status"`
		CreatedAt       string  `json:"created_at"`
	}

	items := make([]transactionDTO, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, transactionDTO{
			ID:              t.ID,
			UserID:          t.UserID,
			Amount:          t.Amount,
			Charge:          t.Charge,
			OrderID:         t.OrderID,
			TransactionFlow: t.TransactionFlow,
			TransactionType: t.TransactionType,
			Message:         t.Message,
			Status:          t.Status,
			CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}
