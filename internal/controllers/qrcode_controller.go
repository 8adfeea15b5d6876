package controllers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"linkly-be/internal/service"
)

type QRCodeController struct {
	linkService service.LinkService
}

func NewQRCodeController(linkService service.LinkService) *QRCodeController {
	return &QRCodeController{
		linkService: linkService,
	}
}

// GenerateQRCode handles GET /api/qrcode/:shortCode - returns a QR code for
// the short URL as a base64 data URL the frontend can drop into an <img>.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	shortCode := c.Param("shortCode")

	link, err := qc.linkService.GetByShortCode(c.Request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			fail(c, http.StatusNotFound, "URL not found.")
			return
		}
		fail(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	// 256x256 pixels, high error recovery so a damaged print still scans
	png, err := qrcode.Encode(link.ShortURL, qrcode.High, 256)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"qrCode":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"shortUrl":    link.ShortURL,
		"originalUrl": link.OriginalURL,
	})
}
