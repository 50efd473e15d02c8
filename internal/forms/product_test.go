package forms_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FischerJoao/mindestoque/internal/domain"
	"github.com/FischerJoao/mindestoque/internal/forms"
)

type fakeProductAPI struct {
	createCalls int
	updateCalls int
	uploadCalls int

	lastDraft    domain.ProductDraft
	lastUpdateID string
	lastUploadID string
	lastImage    []byte

	createErr error
	updateErr error
	uploadErr error
}

func (f *fakeProductAPI) CreateProduct(_ context.Context, _ string, draft domain.ProductDraft) (*domain.Product, error) {
	f.createCalls++
	f.lastDraft = draft
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Product{
		ID:          "p-1",
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Quantity:    draft.Quantity,
	}, nil
}

func (f *fakeProductAPI) UpdateProduct(_ context.Context, _ string, id string, draft domain.ProductDraft) (*domain.Product, error) {
	f.updateCalls++
	f.lastUpdateID = id
	f.lastDraft = draft
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.Product{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Quantity:    draft.Quantity,
	}, nil
}

func (f *fakeProductAPI) UploadProductImage(_ context.Context, _ string, id string, data []byte, _ string) (*domain.Product, error) {
	f.uploadCalls++
	f.lastUploadID = id
	f.lastImage = data
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &domain.Product{ID: id, ImageURL: "http://cdn/" + id + ".png"}, nil
}

func validInput() forms.ProductInput {
	return forms.ProductInput{
		Name:        "Keyboard",
		Description: "Mechanical, ABNT2 layout",
		Price:       "199.90",
		Quantity:    "12",
	}
}

func TestProductForm_CreateIssuesExactlyOneCall(t *testing.T) {
	api := &fakeProductAPI{}
	form := forms.NewProductForm(api, "tok")

	result, fieldErrs, err := form.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, fieldErrs.Any())

	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 0, api.updateCalls)
	assert.Equal(t, 0, api.uploadCalls)
	assert.Equal(t, domain.ProductDraft{
		Name:        "Keyboard",
		Description: "Mechanical, ABNT2 layout",
		Price:       199.90,
		Quantity:    12,
	}, api.lastDraft)
	assert.Equal(t, "p-1", result.Product.ID)
	assert.Equal(t, forms.StateSucceeded, form.State())
}

func TestProductForm_CreateWithStagedImageUploadsSameID(t *testing.T) {
	api := &fakeProductAPI{}
	form := forms.NewProductForm(api, "tok")
	form.StageImage([]byte{0x89, 0x50}, "photo.png")

	result, fieldErrs, err := form.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, fieldErrs.Any())

	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 1, api.uploadCalls)
	assert.Equal(t, "p-1", api.lastUploadID, "upload must target the id assigned by create")
	assert.True(t, result.ImageAttached)
	assert.Equal(t, "http://cdn/p-1.png", result.Product.ImageURL)
}

func TestProductForm_InvalidDraftNeverReachesNetwork(t *testing.T) {
	cases := []struct {
		name  string
		mod   func(*forms.ProductInput)
		field string
	}{
		{"missing name", func(in *forms.ProductInput) { in.Name = "  " }, "name"},
		{"missing description", func(in *forms.ProductInput) { in.Description = "" }, "description"},
		{"zero price", func(in *forms.ProductInput) { in.Price = "0" }, "price"},
		{"negative price", func(in *forms.ProductInput) { in.Price = "-3.50" }, "price"},
		{"price not a number", func(in *forms.ProductInput) { in.Price = "abc" }, "price"},
		{"missing price", func(in *forms.ProductInput) { in.Price = "" }, "price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeProductAPI{}
			form := forms.NewProductForm(api, "tok")
			in := validInput()
			tc.mod(&in)

			result, fieldErrs, err := form.Submit(context.Background(), in)
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.True(t, fieldErrs.Any())
			assert.NotEmpty(t, fieldErrs[tc.field])
			assert.Equal(t, 0, api.createCalls, "no network call for invalid draft")
			assert.Equal(t, 0, api.uploadCalls)
			assert.Equal(t, forms.StateEditing, form.State())
		})
	}
}

func TestProductForm_NegativeQuantityCoercedToZero(t *testing.T) {
	api := &fakeProductAPI{}
	form := forms.NewProductForm(api, "tok")
	in := validInput()
	in.Quantity = "-5"

	_, fieldErrs, err := form.Submit(context.Background(), in)
	require.NoError(t, err)
	require.False(t, fieldErrs.Any())
	assert.Equal(t, 0, api.lastDraft.Quantity)
}

func TestProductForm_UpdateMode(t *testing.T) {
	api := &fakeProductAPI{}
	form := forms.NewUpdateForm(api, "tok", "p-9")

	result, fieldErrs, err := form.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, fieldErrs.Any())

	assert.Equal(t, 0, api.createCalls)
	assert.Equal(t, 1, api.updateCalls)
	assert.Equal(t, "p-9", api.lastUpdateID)
	assert.Equal(t, "p-9", result.Product.ID)
}

func TestProductForm_ImageUploadFailureIsPartial(t *testing.T) {
	api := &fakeProductAPI{uploadErr: errors.New("image service down")}
	form := forms.NewProductForm(api, "tok")
	form.StageImage([]byte("img"), "a.png")

	result, fieldErrs, err := form.Submit(context.Background(), validInput())
	require.NoError(t, err, "the create itself succeeded and must not be reported as failed")
	require.False(t, fieldErrs.Any())

	require.NotNil(t, result)
	assert.True(t, result.PartialFailure())
	assert.False(t, result.ImageAttached)
	assert.Equal(t, "p-1", result.Product.ID, "created product survives the upload failure")
	assert.Equal(t, forms.StateSucceeded, form.State())
}

func TestProductForm_BackendFailureReeditable(t *testing.T) {
	api := &fakeProductAPI{createErr: errors.New("boom")}
	form := forms.NewProductForm(api, "tok")

	_, _, err := form.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, forms.StateFailed, form.State())
	assert.NotEmpty(t, form.LastError())

	// A failed form accepts a resubmission.
	api.createErr = nil
	result, fieldErrs, err := form.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, fieldErrs.Any())
	assert.Equal(t, 2, api.createCalls)
	assert.Equal(t, "p-1", result.Product.ID)
}

// gatedProductAPI blocks inside CreateProduct until released, keeping a
// submit in flight for as long as the test needs.
type gatedProductAPI struct {
	fakeProductAPI
	entered chan struct{}
	release chan struct{}
}

func (g *gatedProductAPI) CreateProduct(ctx context.Context, token string, draft domain.ProductDraft) (*domain.Product, error) {
	close(g.entered)
	<-g.release
	return g.fakeProductAPI.CreateProduct(ctx, token, draft)
}

func TestProductForm_RejectsSecondSubmitWhileInFlight(t *testing.T) {
	api := &gatedProductAPI{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	form := forms.NewProductForm(api, "tok")

	done := make(chan error, 1)
	go func() {
		_, _, err := form.Submit(context.Background(), validInput())
		done <- err
	}()

	<-api.entered
	assert.Equal(t, forms.StateSubmitting, form.State())

	_, _, err := form.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, forms.ErrSubmitInProgress)

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, forms.StateSucceeded, form.State())
}
