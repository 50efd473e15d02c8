package webserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FischerJoao/mindestoque/internal/domain"
	"github.com/FischerJoao/mindestoque/internal/forms"
	"github.com/FischerJoao/mindestoque/internal/inventory"
)

func (s *WebServer) registerProductRoutes(g *echo.Group) {
	g.GET("/session", s.getSession)
	g.GET("/summary", s.getSummary)
	g.GET("/products", s.listProducts)
	g.POST("/products", s.createProduct)
	g.PATCH("/products/:id", s.updateProduct)
	g.POST("/products/:id/image", s.uploadProductImage)
	g.DELETE("/products/:id", s.deleteProduct)
	g.POST("/products/refresh", s.refreshProducts)
	g.GET("/products/export", s.exportProducts)
}

// collection resolves the session's collection, opening it after a restart.
func (s *WebServer) collection(c echo.Context) *inventory.Collection {
	sess := currentSession(c)
	if col := s.appCtx.Inventory().Get(sess.ID); col != nil {
		return col
	}
	return s.appCtx.Inventory().Open(c.Request().Context(), sess)
}

func (s *WebServer) getSession(c echo.Context) error {
	return ok(c, currentSession(c))
}

func (s *WebServer) getSummary(c echo.Context) error {
	return ok(c, s.collection(c).Summary())
}

func (s *WebServer) listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	products := s.collection(c).Products()
	total := int64(len(products))

	start := (page - 1) * pageSize
	if start > len(products) {
		start = len(products)
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return paged(c, products[start:end], total, page, pageSize)
}

// submitPayload is the create/update response body: the persisted product
// plus the image-upload outcome, so a partial failure (product saved, image
// not attached) is visible to the page.
type submitPayload struct {
	Product       domain.Product `json:"product"`
	ImageAttached bool           `json:"imageAttached"`
	ImageError    string         `json:"imageError,omitempty"`
}

// readStagedImage pulls the optional multipart image off the request.
// A request without an image part stages nothing.
func readStagedImage(c echo.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, "", nil
	}
	return readFormFile(fileHeader)
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Filename, nil
}

func (s *WebServer) submitProductForm(c echo.Context, form *forms.ProductForm) error {
	var input forms.ProductInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}

	image, filename, err := readStagedImage(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_IMAGE", "Unable to read the image upload", err.Error())
	}
	if len(image) > 0 {
		form.StageImage(image, filename)
	}

	result, fieldErrs, err := form.Submit(c.Request().Context(), input)
	if fieldErrs.Any() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", fieldErrs.Message(), fieldErrs)
	}
	if err != nil {
		return failFromErr(c, err)
	}

	sess := currentSession(c)
	s.appCtx.Bus().Publish(inventory.TopicProductSaved, sess.ID, result.Product)

	payload := submitPayload{Product: result.Product, ImageAttached: result.ImageAttached}
	if result.PartialFailure() {
		payload.ImageError = result.ImageErr.Error()
	}
	return ok(c, payload)
}

func (s *WebServer) createProduct(c echo.Context) error {
	sess := currentSession(c)
	form := forms.NewProductForm(s.appCtx.Backend(), sess.Token())
	return s.submitProductForm(c, form)
}

func (s *WebServer) updateProduct(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	sess := currentSession(c)
	form := forms.NewUpdateForm(s.appCtx.Backend(), sess.Token(), id)
	return s.submitProductForm(c, form)
}

func (s *WebServer) uploadProductImage(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_IMAGE", "An image file is required", nil)
	}
	data, filename, err := readFormFile(fileHeader)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_IMAGE", "Unable to read the image upload", err.Error())
	}

	sess := currentSession(c)
	product, err := s.appCtx.Backend().UploadProductImage(
		c.Request().Context(), sess.Token(), id, data, filename)
	if err != nil {
		return failFromErr(c, err)
	}

	s.appCtx.Bus().Publish(inventory.TopicProductSaved, sess.ID, *product)
	return ok(c, product)
}

func (s *WebServer) deleteProduct(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	sess := currentSession(c)
	if err := s.appCtx.Backend().DeleteProduct(c.Request().Context(), sess.Token(), id); err != nil {
		return failFromErr(c, err)
	}

	s.appCtx.Bus().Publish(inventory.TopicProductDeleted, sess.ID, id)
	return ok(c, map[string]interface{}{"id": id})
}

func (s *WebServer) refreshProducts(c echo.Context) error {
	col := s.collection(c)
	if err := col.Refresh(c.Request().Context()); err != nil {
		return failFromErr(c, err)
	}
	return ok(c, map[string]interface{}{"count": col.Len()})
}

func (s *WebServer) exportProducts(c echo.Context) error {
	products := s.collection(c).Products()
	stamp := time.Now().Format("20060102-150405")

	var buf bytes.Buffer
	switch c.QueryParam("format") {
	case "csv":
		if err := inventory.WriteCSV(&buf, products); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "CSV export failed", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="products-`+stamp+`.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
	case "", "xlsx":
		if err := inventory.WriteXLSX(&buf, products); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Excel export failed", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="products-`+stamp+`.xlsx"`)
		return c.Blob(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		return fail(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv", nil)
	}
}
