package controllers

import (
	"net/http"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"
)

// InfoPublicHandler serves the public app info used by clients before login.
func InfoPublicHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var setting models.Setting
	if err := db.Model(&models.Setting{}).
		Select("name, company, logo, maintenance, closed_register, link_cs, link_app").
		Take(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load application info",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"name":            setting.Name,
			"company":         setting.Company,
			"logo":            setting.Logo,
			"maintenance":     setting.Maintenance,
			"closed_register": setting.ClosedRegister,
			"link_cs":         setting.LinkCS,
			"link_app":        setting.LinkApp,
		},
	})
}
