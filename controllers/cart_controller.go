package controllers

import (
	"net/http"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errItemNotInCart = apperrors.NotFound("Item is not in the cart")

type CartController struct {
	cart     *store.CartStore
	products services.ProductService
	checkout *services.Checkout
	nav      *navigation.Navigator
	logger   *zap.Logger
}

func NewCartController(cart *store.CartStore, products services.ProductService, checkout *services.Checkout, nav *navigation.Navigator, logger *zap.Logger) *CartController {
	return &CartController{cart: cart, products: products, checkout: checkout, nav: nav, logger: logger}
}

type addItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

func (cc *CartController) GetCart(c *gin.Context) {
	if err := cc.nav.Navigate(navigation.Cart); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart":       newCartView(cc.cart.Snapshot()),
		"submitting": cc.checkout.InFlight(),
	})
}

// AddItem fetches the product so the cart holds its current price.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("productId is required"))
		return
	}

	product, err := cc.products.GetProduct(c.Request.Context(), req.ProductID, "")
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			err = apperrors.ErrProductNotFound.Wrap(err)
		}
		fail(c, err)
		return
	}

	qty := cc.cart.Add(*product)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Product added to cart",
		"quantity": qty,
		"cart":     newCartView(cc.cart.Snapshot()),
	})
}

func (cc *CartController) Increase(c *gin.Context) {
	cc.mutate(c, cc.cart.Increase)
}

// Decrease answers changed=false when the item is already at quantity 1.
func (cc *CartController) Decrease(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if !cc.contains(id) {
		fail(c, errItemNotInCart)
		return
	}
	changed := cc.cart.Decrease(id)
	c.JSON(http.StatusOK, gin.H{"changed": changed, "cart": newCartView(cc.cart.Snapshot())})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	cc.mutate(c, cc.cart.Remove)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	cc.cart.Clear()
	c.JSON(http.StatusOK, gin.H{"cart": newCartView(cc.cart.Snapshot())})
}

// Checkout places the order and moves to OrderConfirmation on success.
func (cc *CartController) Checkout(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	order, err := cc.checkout.FinishOrder(c.Request.Context(), session.Token)
	if err != nil {
		fail(c, err)
		return
	}

	_ = cc.nav.Navigate(navigation.OrderConfirmation)
	c.JSON(http.StatusCreated, gin.H{
		"screen": navigation.OrderConfirmation,
		"order":  newOrderDetail(*order),
	})
}

func (cc *CartController) mutate(c *gin.Context, op func(int64) bool) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if !op(id) {
		fail(c, errItemNotInCart)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true, "cart": newCartView(cc.cart.Snapshot())})
}

func (cc *CartController) contains(id int64) bool {
	for _, item := range cc.cart.Items() {
		if item.ID == id {
			return true
		}
	}
	return false
}
