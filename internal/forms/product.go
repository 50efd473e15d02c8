package forms

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

// ProductAPI is the slice of the backend client the product form needs.
type ProductAPI interface {
	CreateProduct(ctx context.Context, token string, draft domain.ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, draft domain.ProductDraft) (*domain.Product, error)
	UploadProductImage(ctx context.Context, token, id string, data []byte, filename string) (*domain.Product, error)
}

// FormState tracks the submit lifecycle of one form instance.
type FormState int

const (
	StateEditing FormState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// ErrSubmitInProgress guards against a duplicate submit while a request for
// the same form instance is still in flight.
var ErrSubmitInProgress = errors.New("submission already in progress")

// ProductInput is the raw form entry. Price and Quantity arrive as text and
// are coerced during validation, matching the text inputs of the panel.
type ProductInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	Quantity    string `json:"quantity" form:"quantity"`
}

// ParseDraft validates raw input and produces a submit-ready draft. The
// returned FieldErrors is empty when the draft is valid. Quantity is coerced
// to be >= 0 on entry rather than rejected.
func ParseDraft(in ProductInput) (domain.ProductDraft, FieldErrors) {
	errs := FieldErrors{}
	draft := domain.ProductDraft{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}

	if draft.Name == "" {
		errs["name"] = "name is required"
	}
	if draft.Description == "" {
		errs["description"] = "description is required"
	}

	priceRaw := strings.TrimSpace(in.Price)
	if priceRaw == "" {
		errs["price"] = "price is required"
	} else if price, err := cast.ToFloat64E(priceRaw); err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		errs["price"] = "price must be a number"
	} else if price <= 0 {
		errs["price"] = "price must be greater than zero"
	} else {
		draft.Price = price
	}

	qtyRaw := strings.TrimSpace(in.Quantity)
	if qtyRaw == "" {
		draft.Quantity = 0
	} else if qty, err := cast.ToIntE(qtyRaw); err != nil {
		errs["quantity"] = "quantity must be a whole number"
	} else if qty < 0 {
		draft.Quantity = 0
	} else {
		draft.Quantity = qty
	}

	return draft, errs
}

// SubmitResult is the typed outcome of a submit pipeline. When ImageErr is
// set the mutation itself succeeded but the staged image was not attached;
// the persisted product is still carried in Product and nothing is rolled
// back.
type SubmitResult struct {
	Product       domain.Product
	ImageAttached bool
	ImageErr      error
}

// PartialFailure reports the created-without-image outcome.
func (r *SubmitResult) PartialFailure() bool {
	return r != nil && r.ImageErr != nil
}

// ProductForm drives one add-or-edit submission. A form with an empty
// productID creates; otherwise it updates that product. The form refuses a
// second submit while one is in flight and returns to an editable state
// after a failure.
type ProductForm struct {
	api       ProductAPI
	token     string
	productID string

	mu        sync.Mutex
	state     FormState
	lastError string
	imageData []byte
	imageName string
}

// NewProductForm opens a form in create mode.
func NewProductForm(api ProductAPI, token string) *ProductForm {
	return &ProductForm{api: api, token: token, state: StateEditing}
}

// NewUpdateForm opens a form in update mode for an existing product.
func NewUpdateForm(api ProductAPI, token string, productID string) *ProductForm {
	return &ProductForm{api: api, token: token, productID: productID, state: StateEditing}
}

// StageImage stages image bytes to be uploaded after a successful mutation.
func (f *ProductForm) StageImage(data []byte, filename string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageData = data
	f.imageName = filename
}

func (f *ProductForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the message recorded by the most recent failure.
func (f *ProductForm) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// begin claims the Submitting state. It fails when another submit already
// holds it, and otherwise hands back the staged image under the same lock.
func (f *ProductForm) begin() (data []byte, filename string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return nil, "", errors.WithStack(ErrSubmitInProgress)
	}
	f.state = StateSubmitting
	return f.imageData, f.imageName, nil
}

func (f *ProductForm) finish(state FormState, lastError string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.lastError = lastError
}

// Submit validates the input and runs the two-step pipeline: create or
// update, then the staged image upload. Validation failures keep the form in
// Editing and cause no network call. An image-upload failure after a
// successful mutation is returned inside the result, not as the error.
func (f *ProductForm) Submit(ctx context.Context, in ProductInput) (*SubmitResult, FieldErrors, error) {
	imageData, imageName, err := f.begin()
	if err != nil {
		return nil, nil, err
	}

	draft, fieldErrs := ParseDraft(in)
	if fieldErrs.Any() {
		f.finish(StateEditing, fieldErrs.Message())
		return nil, fieldErrs, nil
	}

	var product *domain.Product
	if f.productID == "" {
		product, err = f.api.CreateProduct(ctx, f.token, draft)
	} else {
		product, err = f.api.UpdateProduct(ctx, f.token, f.productID, draft)
	}
	if err != nil {
		f.finish(StateFailed, err.Error())
		return nil, nil, err
	}

	result := &SubmitResult{Product: *product}

	if len(imageData) > 0 {
		withImage, imgErr := f.api.UploadProductImage(ctx, f.token, product.ID, imageData, imageName)
		if imgErr != nil {
			// The product mutation is already persisted; surface the upload
			// failure without undoing it.
			result.ImageErr = imgErr
		} else {
			result.Product = *withImage
			result.ImageAttached = true
		}
	}

	f.finish(StateSucceeded, "")
	return result, nil, nil
}
