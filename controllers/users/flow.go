package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/MeAsCoder/PaidTasks/catalog"
	"github.com/MeAsCoder/PaidTasks/completion"
	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type StartFlowRequest struct {
	TaskID int `json:"task_id"`
}

type FlowAnswerRequest struct {
	QuestionID int            `json:"question_id"`
	Answer     catalog.Answer `json:"answer"`
}

func ptrString(s string) *string {
	return &s
}

func flowSessionResponse(session *models.FlowSession, questions []catalog.QuestionSpec, cfg catalog.FlowConfig) map[string]interface{} {
	resp := map[string]interface{}{
		"session_id":    session.ID,
		"task_id":       session.TaskID,
		"category_id":   session.CategoryID,
		"step":          session.Step,
		"total_steps":   len(questions),
		"status":        session.Status,
		"dwell_seconds": int(cfg.Dwell.Seconds()),
	}
	if session.Step >= 0 && session.Step < len(questions) {
		resp["question"] = questions[session.Step]
	}
	return resp
}

// loadActiveSession fetches a flow session owned by the user on this device.
func loadActiveSession(r *http.Request, uid uint) (*models.FlowSession, error) {
	sid, err := strconv.Atoi(mux.Vars(r)["sessionId"])
	if err != nil {
		return nil, errors.New("invalid session id")
	}
	deviceID := utils.GetDeviceID(r)
	var session models.FlowSession
	if err := database.DB.Where("id = ? AND user_id = ? AND device_id = ?", sid, uid, deviceID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("session not found")
		}
		return nil, errors.New("server error")
	}
	return &session, nil
}

func parseAnswers(session *models.FlowSession) map[string]catalog.Answer {
	answers := make(map[string]catalog.Answer)
	if session.Answers != "" {
		_ = json.Unmarshal([]byte(session.Answers), &answers)
	}
	return answers
}

// POST /v1/users/flows/start
func StartFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req StartFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}

	task, cat, found := catalog.FindTask(req.TaskID)
	if !found {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return
	}
	questions := catalog.Questions(task.ID)
	if len(questions) == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task has no steps"})
		return
	}

	ctx := r.Context()
	deviceID := utils.GetDeviceID(r)
	m := machine()

	if m.TaskStatus(ctx, deviceID, task.ID).Completed {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task already completed, come back after the cooldown"})
		return
	}
	// Surveys additionally carry a short retake lock independent of the
	// catalog task cooldown.
	if task.Kind == catalog.FlowSurvey && m.Status(ctx, deviceID, completion.KindSurvey, task.ID).Completed {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You recently finished this survey, try again in a few minutes"})
		return
	}
	catStatus := m.CategoryStatus(ctx, deviceID, cat.ID, taskIDs(cat))
	if catStatus.OnCooldown {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "Category is on cooldown",
			Data:    map[string]interface{}{"cooldown_remaining_minutes": catStatus.CooldownRemaining},
		})
		return
	}

	cfg := catalog.Config(task.Kind)
	db := database.DB

	// Resume an in-progress session for the same task instead of stacking
	// new ones.
	var existing models.FlowSession
	err := db.Where("user_id = ? AND device_id = ? AND task_id = ? AND status = ?", uid, deviceID, task.ID, "active").First(&existing).Error
	if err == nil {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Resuming flow", Data: flowSessionResponse(&existing, questions, cfg)})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	session := models.FlowSession{
		UserID:        uid,
		DeviceID:      deviceID,
		TaskID:        task.ID,
		CategoryID:    cat.ID,
		Step:          0,
		StepEnteredAt: time.Now(),
		Answers:       "{}",
		Status:        "active",
	}
	if err := db.Create(&session).Error; err != nil {
		log.Printf("[flow] DB Create session error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Flow started", Data: flowSessionResponse(&session, questions, cfg)})
}

// GET /v1/users/flows/{sessionId}
func GetFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	session, err := loadActiveSession(r, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	task, _, _ := catalog.FindTask(session.TaskID)
	questions := catalog.Questions(session.TaskID)
	cfg := catalog.Config(task.Kind)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: flowSessionResponse(session, questions, cfg)})
}

// POST /v1/users/flows/{sessionId}/answer
// Records an answer for any question of the flow. Answers can be changed
// until the session is submitted.
func AnswerFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	session, err := loadActiveSession(r, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if session.Status != "active" {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Session is no longer active"})
		return
	}

	var req FlowAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}

	questions := catalog.Questions(session.TaskID)
	var spec *catalog.QuestionSpec
	for i := range questions {
		if questions[i].ID == req.QuestionID {
			spec = &questions[i]
			break
		}
	}
	if spec == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown question"})
		return
	}
	if err := spec.ValidateAnswer(req.Answer); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	answers := parseAnswers(session)
	answers[strconv.Itoa(req.QuestionID)] = req.Answer
	raw, err := json.Marshal(answers)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Model(session).Update("answers", string(raw)).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Answer recorded"})
}

// stepGate checks the dwell timer and, for the current question, that a
// validating answer exists. Returns a user-facing error message or "".
func stepGate(session *models.FlowSession, questions []catalog.QuestionSpec, cfg catalog.FlowConfig) string {
	if elapsed := time.Since(session.StepEnteredAt); elapsed < cfg.Dwell {
		wait := int((cfg.Dwell - elapsed).Seconds()) + 1
		return fmt.Sprintf("Please wait %d more seconds before continuing", wait)
	}
	if session.Step >= 0 && session.Step < len(questions) {
		q := questions[session.Step]
		answers := parseAnswers(session)
		ans, present := answers[strconv.Itoa(q.ID)]
		if !present {
			if !q.Optional {
				return "Answer the current question first"
			}
			return ""
		}
		if err := q.ValidateAnswer(ans); err != nil {
			return err.Error()
		}
	}
	return ""
}

// POST /v1/users/flows/{sessionId}/advance
func AdvanceFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	session, err := loadActiveSession(r, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if session.Status != "active" {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Session is no longer active"})
		return
	}

	task, _, found := catalog.FindTask(session.TaskID)
	if !found {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return
	}
	questions := catalog.Questions(session.TaskID)
	cfg := catalog.Config(task.Kind)

	if session.Step >= len(questions)-1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Already at the last step, submit instead"})
		return
	}
	if msg := stepGate(session, questions, cfg); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	session.Step++
	session.StepEnteredAt = time.Now()
	if err := database.DB.Model(session).Updates(map[string]interface{}{
		"step":            session.Step,
		"step_entered_at": session.StepEnteredAt,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: flowSessionResponse(session, questions, cfg)})
}

// POST /v1/users/flows/{sessionId}/submit
func SubmitFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	session, err := loadActiveSession(r, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	task, cat, found := catalog.FindTask(session.TaskID)
	if !found {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return
	}
	questions := catalog.Questions(session.TaskID)
	cfg := catalog.Config(task.Kind)

	if session.Step < len(questions)-1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Finish the remaining steps first"})
		return
	}
	if msg := stepGate(session, questions, cfg); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}
	// All mandatory questions must hold a validating answer.
	answers := parseAnswers(session)
	for _, q := range questions {
		ans, present := answers[strconv.Itoa(q.ID)]
		if !present {
			if q.Optional {
				continue
			}
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: fmt.Sprintf("Question %d is not answered", q.ID)})
			return
		}
		if err := q.ValidateAnswer(ans); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
			return
		}
	}

	db := database.DB

	// Guarded transition: only one submit can flip active -> submitted.
	// Retries and double-clicks hit zero affected rows and credit nothing.
	res := db.Model(&models.FlowSession{}).
		Where("id = ? AND status = ?", session.ID, "active").
		Update("status", "submitted")
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "This flow has already been submitted"})
		return
	}

	// Relative increments so concurrent submits on other tasks never clobber.
	if err := db.Model(&models.User{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"balance":   gorm.Expr("balance + ?", task.Reward),
		"earnings":  gorm.Expr("earnings + ?", task.Reward),
		"completed": gorm.Expr("completed + 1"),
	}).Error; err != nil {
		log.Printf("[flow] failed to credit user %d for task %d: %v", uid, task.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to credit reward"})
		return
	}

	response := models.SurveyResponse{
		UserID:     uid,
		TaskID:     task.ID,
		CategoryID: cat.ID,
		Answers:    session.Answers,
		Points:     task.Reward,
	}
	if err := db.Create(&response).Error; err != nil {
		log.Printf("[flow] DB Create survey response error: %v", err)
	}

	tx := models.Transaction{
		UserID:          uid,
		Amount:          task.Reward,
		Charge:          0,
		OrderID:         utils.GenerateOrderID(uid),
		TransactionFlow: "debit",
		TransactionType: "task_reward",
		Message:         ptrString("Task reward: " + task.Title),
		Status:          "Success",
	}
	if err := db.Create(&tx).Error; err != nil {
		log.Printf("[flow] DB Create transaction error: %v", err)
	}

	ctx := r.Context()
	deviceID := utils.GetDeviceID(r)
	m := machine()

	if err := m.RecordTask(ctx, deviceID, task.ID, cfg.TaskCooldown); err != nil {
		log.Printf("[flow] failed to record task completion: %v", err)
	}
	if task.Kind == catalog.FlowSurvey {
		if err := m.Record(ctx, deviceID, completion.KindSurvey, task.ID, catalog.LegacySurveyCooldown()); err != nil {
			log.Printf("[flow] failed to record survey state: %v", err)
		}
	}
	categoryComplete, err := m.RecordCategory(ctx, deviceID, cat.ID, taskIDs(cat), cfg.CategoryCooldown)
	if err != nil {
		log.Printf("[flow] failed to record category completion: %v", err)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task completed, reward credited",
		Data: map[string]interface{}{
			"reward":                task.Reward,
			"task_id":               task.ID,
			"category_id":           cat.ID,
			"category_complete":     categoryComplete,
			"cooldown_hours":        int(cfg.TaskCooldown.Hours()),
			"transaction_order_id":  tx.OrderID,
			"completed_transaction": tx.Status,
		},
	})
}

// POST /v1/users/flows/{sessionId}/abandon
func AbandonFlowHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	session, err := loadActiveSession(r, uid)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	res := database.DB.Model(&models.FlowSession{}).
		Where("id = ? AND status = ?", session.ID, "active").
		Update("status", "abandoned")
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Session is no longer active"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Flow abandoned"})
}
