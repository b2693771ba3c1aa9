package controllers

import (
	"net/http"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductController struct {
	products  services.ProductService
	images    services.ImageService
	cart      *store.CartStore
	validator *RequestValidator
	nav       *navigation.Navigator
	logger    *zap.Logger
}

func NewProductController(products services.ProductService, images services.ImageService, cart *store.CartStore, nav *navigation.Navigator, logger *zap.Logger) *ProductController {
	return &ProductController{
		products:  products,
		images:    images,
		cart:      cart,
		validator: NewRequestValidator(),
		nav:       nav,
		logger:    logger,
	}
}

var errImageUploadUnavailable = apperrors.Validation("Image upload is not available")

// productForm is the ProductForm payload. Image, when set, is a base64
// picture uploaded before the product is saved.
type productForm struct {
	Description string  `json:"description" validate:"required"`
	Brand       string  `json:"brand" validate:"required"`
	Model       string  `json:"model" validate:"required"`
	Currency    string  `json:"currency" validate:"required,len=3,alpha"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    *string `json:"imageUrl"`
	Image       string  `json:"image"`
}

func (pc *ProductController) Home(c *gin.Context) {
	session, _ := middleware.GetSession(c)
	if err := pc.nav.Navigate(navigation.Home); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       session.User,
		"cartCount":  pc.cart.Count(),
		"navigation": pc.nav.State(),
	})
}

func (pc *ProductController) List(c *gin.Context) {
	ctx, cancel, err := pc.nav.Focus(c.Request.Context(), navigation.Home)
	if err != nil {
		fail(c, err)
		return
	}
	defer cancel()

	products, err := pc.products.ListProducts(ctx, c.Query("currency"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "cartCount": pc.cart.Count()})
}

// Get serves ProductDetail. A missing product is a terminal not-found view.
func (pc *ProductController) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel, err := pc.nav.Focus(c.Request.Context(), navigation.ProductDetail)
	if err != nil {
		fail(c, err)
		return
	}
	defer cancel()

	product, err := pc.products.GetProduct(ctx, id, c.Query("currency"))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			err = apperrors.ErrProductNotFound.Wrap(err)
		}
		fail(c, err)
		return
	}

	session, _ := middleware.GetSession(c)
	canEdit := session.User.IsAdmin()
	c.JSON(http.StatusOK, gin.H{
		"product":     product,
		"canEdit":     canEdit,
		"imageUpload": canEdit && pc.images.Enabled(),
	})
}

func (pc *ProductController) Create(c *gin.Context) {
	input, ok := pc.bindForm(c)
	if !ok {
		return
	}
	session, _ := middleware.GetSession(c)

	product, err := pc.products.CreateProduct(c.Request.Context(), input, session.Token)
	if err != nil {
		fail(c, err)
		return
	}

	_ = pc.nav.Navigate(navigation.Home)
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

func (pc *ProductController) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	input, ok := pc.bindForm(c)
	if !ok {
		return
	}
	session, _ := middleware.GetSession(c)

	product, err := pc.products.UpdateProduct(c.Request.Context(), id, input, session.Token)
	if err != nil {
		fail(c, err)
		return
	}

	_ = pc.nav.Navigate(navigation.ProductDetail)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

func (pc *ProductController) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	session, _ := middleware.GetSession(c)

	if err := pc.products.DeleteProduct(c.Request.Context(), id, session.Token); err != nil {
		fail(c, err)
		return
	}

	pc.cart.Remove(id)
	_ = pc.nav.Navigate(navigation.Home)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// bindForm focuses ProductForm, validates the payload and uploads the image.
func (pc *ProductController) bindForm(c *gin.Context) (models.ProductInput, bool) {
	if err := pc.nav.Navigate(navigation.ProductForm); err != nil {
		fail(c, err)
		return models.ProductInput{}, false
	}

	var form productForm
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, apperrors.ErrMissingFields)
		return models.ProductInput{}, false
	}
	if err := pc.validator.ValidateProductForm(&form); err != nil {
		fail(c, err)
		return models.ProductInput{}, false
	}
	if form.Image != "" && !pc.images.Enabled() {
		fail(c, errImageUploadUnavailable)
		return models.ProductInput{}, false
	}

	input := models.ProductInput{
		Description: form.Description,
		Brand:       form.Brand,
		Model:       form.Model,
		Currency:    form.Currency,
		Price:       form.Price,
		ImageURL:    form.ImageURL,
	}
	if form.Image != "" {
		url, err := pc.images.UploadBase64(c.Request.Context(), form.Image)
		if err != nil {
			fail(c, err)
			return models.ProductInput{}, false
		}
		input.ImageURL = &url
	}
	return input, true
}
