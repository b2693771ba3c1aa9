package controllers

import (
	"net/http"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/navigation"

	"github.com/gin-gonic/gin"
)

type NavigationController struct {
	nav *navigation.Navigator
}

func NewNavigationController(nav *navigation.Navigator) *NavigationController {
	return &NavigationController{nav: nav}
}

type navigateRequest struct {
	Screen navigation.Screen `json:"screen" binding:"required"`
}

func (nc *NavigationController) State(c *gin.Context) {
	c.JSON(http.StatusOK, nc.nav.State())
}

// Navigate moves focus, canceling whatever the previous screen had in flight.
func (nc *NavigationController) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("screen is required"))
		return
	}
	if err := nc.nav.Navigate(req.Screen); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nc.nav.State())
}
