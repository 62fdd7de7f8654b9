package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/middleware"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ForgotPasswordRequestCodeRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordVerifyCodeRequest struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

type ForgotPasswordResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Token           string `json:"token"`
}

// ResetCodeRequest stores password reset code information
type ResetCodeRequest struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Email     string    `gorm:"size:191;not null;index"`
	RequestID string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	CodeHash  string    `gorm:"type:varchar(64);not null"`
	Verified  bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ResetCodeRequest) TableName() string {
	return "reset_code_requests"
}

func generateResetCode() (code, requestID, codeHash string, err error) {
	buf := make([]byte, 4)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}
	n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	code = fmt.Sprintf("%06d", n%1000000)

	rid := make([]byte, 16)
	if _, err = rand.Read(rid); err != nil {
		return "", "", "", err
	}
	requestID = hex.EncodeToString(rid)

	sum := sha256.Sum256([]byte(code))
	codeHash = hex.EncodeToString(sum[:])
	return code, requestID, codeHash, nil
}

// POST /v1/auth/forgot-password/request-code
func ForgotPasswordRequestCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid JSON",
		})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); req.Email == "" || err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "A valid email address is required",
		})
		return
	}

	// Get IP address for rate limiting
	ip := middleware.GetClientIP(r)
	limiter := middleware.GetResetCodeRateLimiter()

	// Check IP rate limit
	allowed, waitTime, msg := limiter.CheckIPRateLimit(ip)
	if !allowed {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data: map[string]interface{}{
				"retry_after_seconds": int(waitTime.Seconds()),
			},
		})
		return
	}

	// Check email rate limit
	allowed, waitTime, msg = limiter.CheckEmailRateLimit(req.Email)
	if !allowed {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data: map[string]interface{}{
				"retry_after_seconds": int(waitTime.Seconds()),
			},
		})
		return
	}

	db := database.DB

	// Check if email exists. Respond identically either way to avoid
	// account enumeration; only send the code when the account exists.
	var user models.User
	userFound := true
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Something went wrong. Please try again later.",
			})
			return
		}
		userFound = false
	}

	requestID := ""
	if userFound {
		code, rid, codeHash, err := generateResetCode()
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Something went wrong. Please try again later.",
			})
			return
		}
		requestID = rid

		// Invalidate old unverified requests for this email
		db.Where("email = ? AND verified = ?", req.Email, false).Delete(&ResetCodeRequest{})

		resetReq := ResetCodeRequest{
			UserID:    user.ID,
			Email:     req.Email,
			RequestID: rid,
			CodeHash:  codeHash,
			Verified:  false,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
		if err := db.Create(&resetReq).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Something went wrong. Please try again later.",
			})
			return
		}

		if err := utils.SendResetCodeEmail(req.Email, user.Name, code); err != nil {
			log.Printf("[forgot-password] failed to send reset code to %s: %v", req.Email, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "If the email is registered, a verification code has been sent",
		Data: map[string]interface{}{
			"request_id": requestID,
			"email":      req.Email,
		},
	})
}

// POST /v1/auth/forgot-password/verify-code
func ForgotPasswordVerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordVerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid JSON",
		})
		return
	}

	if req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Verification code is required",
		})
		return
	}

	if req.RequestID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	db := database.DB

	var resetReq ResetCodeRequest
	if err := db.Where("request_id = ? AND verified = ?", req.RequestID, false).First(&resetReq).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "Verification request not found or already used",
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	if time.Now().After(resetReq.ExpiresAt) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Verification code has expired",
		})
		return
	}

	sum := sha256.Sum256([]byte(req.Code))
	if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(resetReq.CodeHash)) != 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Incorrect verification code",
		})
		return
	}

	// Mark as verified
	resetReq.Verified = true
	if err := db.Save(&resetReq).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	// Generate JWT token for password reset (valid for 15 minutes)
	resetToken, err := utils.GenerateAccessToken(resetReq.UserID, "user")
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	// Reset email rate limit after successful verification
	limiter := middleware.GetResetCodeRateLimiter()
	limiter.ResetEmailLimit(resetReq.Email)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Verification code accepted. You can now change your password.",
		Data: map[string]interface{}{
			"token": resetToken,
		},
	})
}

// POST /v1/auth/forgot-password/reset-password
func ForgotPasswordResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid JSON",
		})
		return
	}

	if req.Password == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Password is required",
		})
		return
	}

	if req.Password != req.ConfirmPassword {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Password and confirmation do not match",
		})
		return
	}

	if len(req.Password) < 6 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Password must be at least 6 characters",
		})
		return
	}

	if req.Token == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Token is required",
		})
		return
	}

	// Validate JWT token
	token, claims, err := utils.ValidateAccessToken(req.Token)
	if err != nil || !token.Valid {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Token is invalid or has expired",
		})
		return
	}

	// Get JTI from token to revoke it after use (one-time use)
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid token",
		})
		return
	}

	// Check if token is already revoked (already used)
	if RedisClient := utils.RedisClient; RedisClient != nil {
		ctx := context.Background()
		res, err := RedisClient.Get(ctx, "jwt:blacklist:"+jti).Result()
		if err == nil && res == "1" {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Token has already been used",
			})
			return
		}
	} else if database.DB != nil {
		var rec struct {
			ID string `gorm:"primaryKey"`
		}
		err := database.DB.Table("revoked_tokens").Where("id = ?", jti).First(&rec).Error
		if err == nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Token has already been used",
			})
			return
		}
	}

	// Get user ID from token
	userIDFloat, ok := claims["id"].(float64)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid token",
		})
		return
	}
	userID := uint(userIDFloat)

	db := database.DB

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	// Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	// Update password and revoke token in a transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		user.Password = string(hashedPassword)
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		// Revoke token (one-time use). TTL comes from the token expiry.
		var ttl time.Duration
		if expRaw, ok := claims["exp"]; ok {
			switch v := expRaw.(type) {
			case float64:
				ttl = time.Until(time.Unix(int64(v), 0))
			case int64:
				ttl = time.Until(time.Unix(v, 0))
			case int:
				ttl = time.Until(time.Unix(int64(v), 0))
			}
		}
		if ttl < 0 {
			ttl = 0
		}
		_ = utils.RevokeJTI(jti, ttl) // best effort

		return nil
	})

	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong. Please try again later.",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Password changed successfully, you will be redirected to the login page shortly",
		Data:    nil,
	})
}
