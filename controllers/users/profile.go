package users

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MeAsCoder/PaidTasks/database"
	"github.com/MeAsCoder/PaidTasks/models"
	"github.com/MeAsCoder/PaidTasks/utils"
)

func profileResponse(user *models.User) map[string]interface{} {
	data := map[string]interface{}{
		"name":         user.Name,
		"bio":          user.Bio,
		"phone":        user.Phone,
		"location":     user.Location,
		"mpesa_number": user.MpesaNumber,
		"paypal_email": user.PaypalEmail,
	}
	data["photo"] = utils.PhotoURL(user.Photo)
	return data
}

// PUT /v1/users/profile
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil { // 5MB
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	// Update text fields when provided
	if name := strings.TrimSpace(r.FormValue("name")); name != "" && name != "null" {
		user.Name = name
	}
	if bio := strings.TrimSpace(r.FormValue("bio")); bio != "" && bio != "null" {
		user.Bio = bio
	}
	if phone := strings.TrimSpace(r.FormValue("phone")); phone != "" && phone != "null" {
		user.Phone = phone
	}
	if location := strings.TrimSpace(r.FormValue("location")); location != "" && location != "null" {
		user.Location = location
	}
	if mpesa := strings.TrimSpace(r.FormValue("mpesa_number")); mpesa != "" && mpesa != "null" {
		if err := utils.ValidateMpesaNumber(mpesa); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid M-Pesa number"})
			return
		}
		user.MpesaNumber = mpesa
	}
	if paypal := strings.TrimSpace(r.FormValue("paypal_email")); paypal != "" && paypal != "null" {
		user.PaypalEmail = strings.ToLower(paypal)
	}

	// Handle avatar upload. "null" means leave the photo untouched.
	photoValue := strings.TrimSpace(r.FormValue("photo"))
	if photoValue != "null" {
		file, handler, err := r.FormFile("photo")
		if err == nil && handler != nil {
			defer file.Close()

			ext := strings.ToLower(filepath.Ext(handler.Filename))
			allowedExts := map[string]bool{
				".jpg":  true,
				".jpeg": true,
				".png":  true,
				".webp": true,
			}
			if !allowedExts[ext] {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG/PNG/WEBP"})
				return
			}

			if handler.Size > 5<<20 {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be at most 5MB"})
				return
			}

			// Read first 512 bytes to detect MIME type
			buf := make([]byte, 512)
			n, err := file.Read(buf)
			if err != nil && err != io.EOF {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
				return
			}
			detected := http.DetectContentType(buf[:n])
			isWEBP := ext == ".webp" || detected == "image/webp"

			var imageBytes []byte
			if isWEBP {
				// WEBP is uploaded as-is
				if _, err := file.Seek(0, 0); err != nil {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
					return
				}
				imageBytes, err = io.ReadAll(file)
				if err != nil {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
					return
				}
			} else {
				// JPG/PNG are decoded and re-encoded to sanitize
				if detected != "image/jpeg" && detected != "image/png" {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG/PNG/WEBP"})
					return
				}
				if _, err := file.Seek(0, 0); err != nil {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
					return
				}
				allBytes, err := io.ReadAll(file)
				if err != nil {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
					return
				}

				img, format, err := image.Decode(bytes.NewReader(allBytes))
				if err != nil {
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid image format"})
					return
				}

				var outBuf bytes.Buffer
				switch format {
				case "jpeg":
					if err := jpeg.Encode(&outBuf, img, &jpeg.Options{Quality: 85}); err != nil {
						utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to process image"})
						return
					}
				case "png":
					if err := png.Encode(&outBuf, img); err != nil {
						utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to process image"})
						return
					}
				default:
					utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG/PNG/WEBP"})
					return
				}
				imageBytes = outBuf.Bytes()
				if ext == ".jpeg" {
					ext = ".jpg"
				}
			}

			// Delete old photo from object storage if present
			if old := utils.GetStringValue(user.Photo); old != "" {
				_ = utils.DeleteFromS3(old)
			}

			imgName := "avatar_" + strconv.FormatUint(uint64(uid), 10) + "_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ext
			if err := utils.UploadToS3(imgName, bytes.NewReader(imageBytes), int64(len(imageBytes))); err != nil {
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to upload image"})
				return
			}
			user.Photo = &imgName
		}
	}

	if err := db.Save(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save data"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    profileResponse(&user),
	})
}

// DELETE /v1/users/profile/photo
func DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	if old := utils.GetStringValue(user.Photo); old != "" {
		// file might already be gone, don't fail the request
		_ = utils.DeleteFromS3(old)
	}

	user.Photo = nil
	if err := db.Save(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to remove photo"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Photo removed successfully",
		Data:    profileResponse(&user),
	})
}
