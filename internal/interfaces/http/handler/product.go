package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	catalogapp "github.com/marketplace/portal/internal/application/catalog"
	"github.com/marketplace/portal/internal/domain/catalog"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// maxProductImages caps the pictures sent with one product edit
const maxProductImages = 8

// ProductHandler serves vendor and admin product screens
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// VariationRequest is one SKU row of the product form
type VariationRequest struct {
	SKU   string          `json:"sku" binding:"required,max=64"`
	Color string          `json:"color" binding:"max=50"`
	Size  string          `json:"size" binding:"max=50"`
	Stock int             `json:"stock" binding:"min=0"`
	Price decimal.Decimal `json:"price"`
}

// UpdateProductRequest is the product edit form. Multipart submissions carry
// variations as a JSON string field next to the image files.
type UpdateProductRequest struct {
	Name        string             `json:"name" form:"name" binding:"max=200"`
	Description string             `json:"description" form:"description" binding:"max=5000"`
	Category    string             `json:"category" form:"category" binding:"max=100"`
	SubCategory string             `json:"sub_category" form:"sub_category" binding:"max=100"`
	Brand       string             `json:"brand" form:"brand" binding:"max=100"`
	Variations  []VariationRequest `json:"variations" form:"-" binding:"max=100,dive"`
}

func (r UpdateProductRequest) toUpdate() catalog.ProductUpdate {
	upd := catalog.ProductUpdate{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Brand:       r.Brand,
	}
	for _, v := range r.Variations {
		upd.Variations = append(upd.Variations, catalog.Variation{
			SKU:   v.SKU,
			Color: v.Color,
			Size:  v.Size,
			Stock: v.Stock,
			Price: v.Price,
		})
	}
	return upd
}

// PriceRequest is the price form of a product
type PriceRequest struct {
	BaseSalePrice    decimal.Decimal `json:"base_sale_price" example:"1000"`
	MaxSalePrice     decimal.Decimal `json:"max_sale_price" example:"1200"`
	LogisticsCharges decimal.Decimal `json:"logistics_charges" example:"50"`
}

func (r PriceRequest) toInput() catalog.PriceInput {
	return catalog.PriceInput{
		BaseSalePrice:    r.BaseSalePrice,
		MaxSalePrice:     r.MaxSalePrice,
		LogisticsCharges: r.LogisticsCharges,
	}
}

// ListVendorProducts handles GET /vendor/products
func (h *ProductHandler) ListVendorProducts(c *gin.Context) {
	var q ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.productService.ListVendorProducts(c.Request.Context(), principal(c).VendorID, q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Products, page.Total, page.Page, page.Limit)
}

// GetProduct handles GET /vendor/products/:id and /admin/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	view, err := h.productService.GetProduct(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// UpdateProduct handles PATCH /vendor/products/:id, as JSON or as a
// multipart form with images
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var (
		req    UpdateProductRequest
		images []catalog.Image
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			h.BindError(c, err)
			return
		}
		if raw := c.PostForm("variations"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variations); err != nil {
				h.BadRequest(c, "Variations are not valid JSON")
				return
			}
			if err := binding.Validator.ValidateStruct(&req); err != nil {
				h.BindError(c, err)
				return
			}
		}
		var err error
		if images, err = formImages(c); err != nil {
			h.HandleError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.productService.CheckOwnership(ctx, principal(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	view, err := h.productService.UpdateProduct(ctx, id, req.toUpdate(), images)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, view, "Product updated successfully")
}

// formImages reads the images[] files of a multipart form
func formImages(c *gin.Context) ([]catalog.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, invalidImage("Invalid form data")
	}
	files := form.File["images"]
	if len(files) > maxProductImages {
		return nil, invalidImage(fmt.Sprintf("At most %d images can be uploaded", maxProductImages))
	}
	images := make([]catalog.Image, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, invalidImage(fh.Filename + " is not an image")
		}
		content, err := readFormFile(fh)
		if err != nil {
			return nil, invalidImage("Could not read " + fh.Filename)
		}
		images = append(images, catalog.Image{Name: fh.Filename, ContentType: contentType, Content: content})
	}
	return images, nil
}

func invalidImage(msg string) error {
	return shared.NewDomainError("INVALID_IMAGE", msg)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// UpdatePrice handles PATCH /vendor/products/:id/price and
// /admin/products/:id/price. The toast carries the backend's message and
// the modal closes.
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.productService.CheckOwnership(ctx, principal(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	res, err := h.productService.UpdatePrice(ctx, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, res.Breakdown, res.Message)
}

// PreviewPrice handles POST /vendor/products/price-preview
func (h *ProductHandler) PreviewPrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	breakdown, err := h.productService.PreviewPrice(req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
