package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/core"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

const (
	pathLogin         = "/auth/login"
	pathNewUser       = "/user/newUser"
	pathAllProducts   = "/product/AllProducts"
	pathNewProduct    = "/product/NewProduct"
	pathUpdateProduct = "/product/updateProduct/"
	pathUploadImage   = "/product/upload/"
	pathDeleteProduct = "/product/deleteProduct/"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client performs all calls against the MIND ESTOQUE REST backend. Every
// product operation requires a bearer token; an empty token fails before any
// request is issued. No operation retries.
type Client struct {
	baseURL string
	timeout time.Duration
	node    *snowflake.Node
}

func NewClient(baseURL string, timeout time.Duration, node *snowflake.Node) *Client {
	return &Client{baseURL: baseURL, timeout: timeout, node: node}
}

// errorBody is the backend's error envelope; any other shape falls back to a
// generic message.
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) requestID() string {
	return c.node.Generate().String()
}

func (c *Client) headers(token string) gout.H {
	h := gout.H{"X-Request-Id": c.requestID()}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// exec runs a prepared dataflow, translating non-2xx responses into
// *APIError and decoding 2xx bodies into out when out is non-nil. The
// configured timeout is applied through the context so gout sees a single
// deadline source.
func (c *Client) exec(ctx context.Context, op string, df *dataflow.DataFlow, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var body []byte
	var code int
	err := df.WithContext(ctx).BindBody(&body).Code(&code).Do()
	if err != nil {
		zap.L().Error("backend request failed", zap.String("op", op), zap.Error(err))
		return errors.Wrapf(err, "backend %s", op)
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		msg := "request rejected by the backend"
		var eb errorBody
		if jerr := json.Unmarshal(body, &eb); jerr == nil && eb.Message != "" {
			msg = eb.Message
		}
		zap.L().Warn("backend rejected request",
			zap.String("op", op), zap.Int("status", code), zap.String("message", msg))
		return errors.WithStack(&APIError{Status: code, Message: msg})
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrapf(err, "backend %s: decode response", op)
		}
	}
	zap.L().Debug("backend request ok", zap.String("op", op), zap.Int("status", code))
	return nil
}

// Login exchanges credentials for the backend user payload. A rejection
// (wrong credentials) surfaces as *APIError; the session layer treats any
// failure as an invalid sign-in, never a crash.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	var user domain.SessionUser
	df := gout.POST(c.baseURL + pathLogin).
		SetHeader(c.headers("")).
		SetJSON(domain.Credentials{Email: email, Password: password})
	if err := c.exec(ctx, "login", df, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new operator account. Validation happens in the forms
// layer before this call.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	df := gout.POST(c.baseURL + pathNewUser).
		SetHeader(c.headers("")).
		SetJSON(reg)
	return c.exec(ctx, "register", df, nil)
}

// ListProducts fetches the full product collection.
func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	if token == "" {
		return nil, errors.WithStack(ErrNoToken)
	}
	var products []domain.Product
	df := gout.GET(c.baseURL + pathAllProducts).SetHeader(c.headers(token))
	if err := c.exec(ctx, "list products", df, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct persists a new product; the backend assigns the id.
func (c *Client) CreateProduct(ctx context.Context, token string, draft domain.ProductDraft) (*domain.Product, error) {
	if token == "" {
		return nil, errors.WithStack(ErrNoToken)
	}
	var product domain.Product
	df := gout.POST(c.baseURL + pathNewProduct).
		SetHeader(c.headers(token)).
		SetJSON(draft)
	if err := c.exec(ctx, "create product", df, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the stored fields of product id with the draft.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, draft domain.ProductDraft) (*domain.Product, error) {
	if token == "" {
		return nil, errors.WithStack(ErrNoToken)
	}
	var product domain.Product
	df := gout.PATCH(c.baseURL + pathUpdateProduct + id).
		SetHeader(c.headers(token)).
		SetJSON(draft)
	if err := c.exec(ctx, "update product", df, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UploadProductImage attaches an image to an existing product via a
// multipart PATCH and returns the product with imageUrl updated.
func (c *Client) UploadProductImage(ctx context.Context, token, id string, data []byte, filename string) (*domain.Product, error) {
	if token == "" {
		return nil, errors.WithStack(ErrNoToken)
	}
	var product domain.Product
	df := gout.PATCH(c.baseURL + pathUploadImage + id).
		SetHeader(c.headers(token)).
		SetForm(gout.H{
			"image": core.FormType{
				File:        core.FormMem(data),
				FileName:    filename,
				ContentType: "application/octet-stream",
			},
		})
	if err := c.exec(ctx, "upload product image", df, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes the product server-side.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	if token == "" {
		return errors.WithStack(ErrNoToken)
	}
	df := gout.DELETE(c.baseURL + pathDeleteProduct + id).SetHeader(c.headers(token))
	return c.exec(ctx, "delete product", df, nil)
}
