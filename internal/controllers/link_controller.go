package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/middleware"
	"linkly-be/internal/models"
	"linkly-be/internal/service"
)

// LinkController handles the owner-scoped link management routes.
// All of them sit behind the required-auth middleware.
type LinkController struct {
	linkService service.LinkService
}

func NewLinkController(linkService service.LinkService) *LinkController {
	return &LinkController{
		linkService: linkService,
	}
}

// GetMyLinks handles GET /api/links/my-links
func (lc *LinkController) GetMyLinks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authorization denied.")
		return
	}

	links, err := lc.linkService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(links),
		"data":    links,
	})
}

// UpdateLink handles PUT /api/links/:id - changes the destination of a link
// the caller owns. The short code stays the same.
func (lc *LinkController) UpdateLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authorization denied.")
		return
	}

	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Original URL is required.")
		return
	}

	link, err := lc.linkService.Update(c.Request.Context(), c.Param("id"), req.OriginalURL, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			fail(c, http.StatusBadRequest, "Original URL is required.")
		case errors.Is(err, service.ErrInvalidURL):
			fail(c, http.StatusBadRequest, "Invalid URL format provided.")
		case errors.Is(err, service.ErrNotFound):
			fail(c, http.StatusNotFound, "URL not found.")
		case errors.Is(err, service.ErrForbidden):
			fail(c, http.StatusForbidden, "You are not authorized to update this URL.")
		case errors.Is(err, service.ErrDestinationTaken):
			fail(c, http.StatusConflict, "This destination is already shortened by another link.")
		default:
			fail(c, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    link,
	})
}

// DeleteLink handles DELETE /api/links/:id
func (lc *LinkController) DeleteLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authorization denied.")
		return
	}

	err := lc.linkService.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			fail(c, http.StatusNotFound, "URL not found.")
		case errors.Is(err, service.ErrForbidden):
			fail(c, http.StatusForbidden, "You are not authorized to delete this URL.")
		default:
			fail(c, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "URL deleted successfully.",
	})
}
