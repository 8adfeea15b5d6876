package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/middleware"
	"linkly-be/internal/models"
	"linkly-be/internal/service"
)

type ShortenerController struct {
	linkService service.LinkService
}

func NewShortenerController(linkService service.LinkService) *ShortenerController {
	return &ShortenerController{
		linkService: linkService,
	}
}

// Shorten handles POST /api/shorten. Works for anonymous callers; links are
// attributed to the caller only when the optional auth middleware found a
// valid identity.
func (sc *ShortenerController) Shorten(c *gin.Context) {
	var req models.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide a URL.")
		return
	}

	var userID *string
	if id, ok := middleware.CurrentUserID(c); ok {
		userID = &id
	}

	link, created, err := sc.linkService.Shorten(c.Request.Context(), req.LongURL, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			fail(c, http.StatusBadRequest, "Please provide a URL.")
		case errors.Is(err, service.ErrInvalidURL):
			fail(c, http.StatusBadRequest, "Invalid URL format provided.")
		default:
			fail(c, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"data":    link,
	})
}

// Redirect handles GET /s/:shortCode - sends the visitor to the destination
// with a permanent redirect and counts the click.
func (sc *ShortenerController) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	originalURL, err := sc.linkService.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			fail(c, http.StatusNotFound, "No URL found.")
			return
		}
		fail(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.Redirect(http.StatusMovedPermanently, originalURL)
}
