package routes

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

// validateImageFile validates mimetype and size (<= 5MB)
func validateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// RegisterProgressMediaRoutes adds the evidence-image upload endpoint used by
// mechanics before they submit a progress report. The returned URLs go into
// the report's evidence_images field.
func RegisterProgressMediaRoutes(rg *gin.RouterGroup) {
	rg.POST("/progress-images", func(c *gin.Context) {
		profile, ok := mechanicProfile(c)
		if !ok {
			return
		}

		if err := c.Request.ParseMultipartForm(10 << 20); err != nil { // 10MB
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid form data"})
			return
		}

		form := c.Request.MultipartForm
		headers := form.File["images"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No files provided"})
			return
		}
		for _, h := range headers {
			if !validateImageFile(h) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid image file: " + h.Filename})
				return
			}
		}

		cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
		apiKey := os.Getenv("CLOUDINARY_API_KEY")
		apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
		if cloudName == "" || apiKey == "" || apiSecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary not configured"})
			return
		}

		cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary initialization failed"})
			return
		}

		ctx := context.Background()
		folder := "progress_evidence/" + strconv.Itoa(int(profile.ID))

		urls := make([]string, 0, len(headers))
		for _, h := range headers {
			file, err := h.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read file"})
				return
			}
			ow := true
			uf := true
			up, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
				Folder:         folder,
				PublicID:       strings.TrimSuffix(h.Filename, filepath.Ext(h.Filename)),
				Overwrite:      &ow,
				UniqueFilename: &uf,
				ResourceType:   "image",
			})
			file.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Upload failed"})
				return
			}
			urls = append(urls, up.SecureURL)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "urls": urls})
	})
}
