package forms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FischerJoao/mindestoque/internal/domain"
	"github.com/FischerJoao/mindestoque/internal/forms"
)

type fakeRegisterAPI struct {
	calls int
	last  domain.Registration
	err   error
}

func (f *fakeRegisterAPI) Register(_ context.Context, reg domain.Registration) error {
	f.calls++
	f.last = reg
	return f.err
}

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		name     string
		reg      domain.Registration
		field    string
		contains string
	}{
		{"valid", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "Abcd1"}, "", ""},
		{"symbol counts as digit-or-symbol", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "Ab#d"}, "", ""},
		{"too short", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "ab"}, "password", "between 4 and 20"},
		{"too long", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "Abcd1Abcd1Abcd1Abcd12"}, "password", "between 4 and 20"},
		{"no uppercase", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "abcd1"}, "password", "uppercase"},
		{"no lowercase", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "ABCD1"}, "password", "lowercase"},
		{"no digit or symbol", domain.Registration{Name: "Ana", Email: "a@b.com", Password: "Abcd"}, "password", "digit or symbol"},
		{"bad email", domain.Registration{Name: "Ana", Email: "not-an-email", Password: "Abcd1"}, "email", "local@domain"},
		{"empty name", domain.Registration{Name: " ", Email: "a@b.com", Password: "Abcd1"}, "name", "required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := forms.ValidateRegistration(tc.reg)
			if tc.field == "" {
				assert.False(t, errs.Any(), "expected valid, got %v", errs)
				return
			}
			require.True(t, errs.Any())
			assert.Contains(t, errs[tc.field], tc.contains)
		})
	}
}

func TestRegistrationForm_InvalidInputNeverReachesNetwork(t *testing.T) {
	api := &fakeRegisterAPI{}
	form := forms.NewRegistrationForm(api)

	errs, err := form.Submit(context.Background(), domain.Registration{
		Name: "Ana", Email: "a@b.com", Password: "ab",
	})
	require.NoError(t, err)
	assert.True(t, errs.Any())
	assert.Equal(t, 0, api.calls)
}

func TestRegistrationForm_SubmitTrimsAndForwards(t *testing.T) {
	api := &fakeRegisterAPI{}
	form := forms.NewRegistrationForm(api)

	errs, err := form.Submit(context.Background(), domain.Registration{
		Name: "  Ana  ", Email: " a@b.com ", Password: "Abcd1",
	})
	require.NoError(t, err)
	assert.False(t, errs.Any())
	require.Equal(t, 1, api.calls)
	assert.Equal(t, "Ana", api.last.Name)
	assert.Equal(t, "a@b.com", api.last.Email)
}
