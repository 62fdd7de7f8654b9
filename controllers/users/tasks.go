package users

import (
	"net/http"
	"strconv"

	"github.com/MeAsCoder/PaidTasks/catalog"
	"github.com/MeAsCoder/PaidTasks/completion"
	"github.com/MeAsCoder/PaidTasks/utils"

	"github.com/gorilla/mux"
)

func taskIDs(cat catalog.Category) []int {
	ids := make([]int, 0, len(cat.Tasks))
	for _, t := range cat.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// GET /v1/users/tasks
// Lists the whole catalog with per-device completion status merged in.
func TaskCatalogHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	ctx := r.Context()
	deviceID := utils.GetDeviceID(r)
	m := machine()

	var resp []map[string]interface{}
	for _, cat := range catalog.Categories() {
		// Clear any lapsed category lock before deriving status.
		_ = m.Tick(ctx, deviceID, completion.KindCategory, cat.ID)

		ids := taskIDs(cat)
		catStatus := m.CategoryStatus(ctx, deviceID, cat.ID, ids)

		tasks := make([]map[string]interface{}, 0, len(cat.Tasks))
		for _, t := range cat.Tasks {
			st := m.TaskStatus(ctx, deviceID, t.ID)
			tasks = append(tasks, map[string]interface{}{
				"id":               t.ID,
				"title":            t.Title,
				"reward":           t.Reward,
				"estimated_time":   t.EstimatedTime,
				"completed_count":  t.CompletedCount,
				"destination_path": t.DestinationPath,
				"kind":             t.Kind,
				"completed":        st.Completed,
			})
		}

		resp = append(resp, map[string]interface{}{
			"id":                         cat.ID,
			"name":                       cat.Name,
			"complete":                   catStatus.Complete,
			"on_cooldown":                catStatus.OnCooldown,
			"cooldown_remaining_minutes": catStatus.CooldownRemaining,
			"tasks":                      tasks,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}

// GET /v1/users/tasks/{categoryId}
func TaskCategoryHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	catID, err := strconv.Atoi(mux.Vars(r)["categoryId"])
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid category id"})
		return
	}
	cat, found := catalog.FindCategory(catID)
	if !found {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Category not found"})
		return
	}

	ctx := r.Context()
	deviceID := utils.GetDeviceID(r)
	m := machine()

	_ = m.Tick(ctx, deviceID, completion.KindCategory, cat.ID)
	catStatus := m.CategoryStatus(ctx, deviceID, cat.ID, taskIDs(cat))

	tasks := make([]map[string]interface{}, 0, len(cat.Tasks))
	for _, t := range cat.Tasks {
		st := m.TaskStatus(ctx, deviceID, t.ID)
		tasks = append(tasks, map[string]interface{}{
			"id":               t.ID,
			"title":            t.Title,
			"reward":           t.Reward,
			"estimated_time":   t.EstimatedTime,
			"completed_count":  t.CompletedCount,
			"destination_path": t.DestinationPath,
			"kind":             t.Kind,
			"completed":        st.Completed,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":                         cat.ID,
			"name":                       cat.Name,
			"complete":                   catStatus.Complete,
			"on_cooldown":                catStatus.OnCooldown,
			"cooldown_remaining_minutes": catStatus.CooldownRemaining,
			"tasks":                      tasks,
		},
	})
}
