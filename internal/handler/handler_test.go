package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

func TestParseDate(t *testing.T) {
	d, dateOnly, err := parseDate("2025-01-15")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), d)

	d, dateOnly, err = parseDate("2025-01-15T12:30:45.900+02:00")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 45, 0, time.UTC), d)

	d, _, err = parseDate("2025-01-15T08:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC), d)

	_, _, err = parseDate("15/01/2025")
	assert.Error(t, err)
}

func TestToAPIError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{notFound("gone"), http.StatusNotFound, "gone"},
		{fmt.Errorf("wrapped: %w", forbidden("Forbidden")), http.StatusForbidden, "Forbidden"},
		{validation.Errors{{Field: "x", Message: "bad"}}, http.StatusBadRequest, "Validation failed"},
		{validation.ErrMalformedBody, http.StatusBadRequest, "Invalid JSON body"},
		{repository.ErrNotFound, http.StatusNotFound, "Record not found"},
		{repository.ErrEmailExists, http.StatusConflict, "A record with this value already exists"},
		{repository.ErrRelatedNotFound, http.StatusBadRequest, "Related record not found"},
		{repository.ErrReferenced, http.StatusBadRequest, "Record is still referenced by other records"},
		{fmt.Errorf("%w: Data too long for column 'title'", repository.ErrValueOutOfRange), http.StatusBadRequest, "A value is too long or out of range"},
		{bcrypt.ErrPasswordTooLong, http.StatusBadRequest, "Validation failed"},
		{echo.NewHTTPError(http.StatusUnauthorized, "Access token required"), http.StatusUnauthorized, "Access token required"},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		got := toAPIError(tc.err)
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.msg, got.Message, tc.err.Error())
	}
}

func filterFor(t *testing.T, query string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	_, err := listFilter(c)
	return c, err
}

func TestListFilter(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?skip=5&take=500&categoryId=3&dateFrom=2025-01-15&dateTo=2025-01-15", nil)
	f, err := listFilter(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, 5, f.Skip)
	assert.Equal(t, repository.MaxTake, f.Take)
	assert.Equal(t, uint64(3), f.CategoryID)
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, time.Date(2025, 1, 15, 23, 59, 59, 0, time.UTC), *f.DateTo)

	_, err = filterFor(t, "skip=-1&take=abc&dateTo=yesterday")
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	fields := map[string]bool{}
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["skip"])
	assert.True(t, fields["take"])
	assert.True(t, fields["dateTo"])
}

func TestRequestValidation(t *testing.T) {
	var errs validation.Errors

	err := validation.Decode([]byte(`{"title":"x","amount":"1.234","date":"2025-01-01","categoryId":1}`), &createTransactionReq{})
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "amount", errs[0].Field)

	err = validation.Decode([]byte(`{"name":"Food","categoryType":"SAVINGS"}`), &createCategoryReq{})
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "categoryType", errs[0].Field)

	assert.NoError(t, validation.Decode([]byte(`{"name":"Food"}`), &createCategoryReq{}))
	assert.NoError(t, validation.Decode([]byte(`{}`), &updateTransactionReq{}))
	assert.NoError(t, validation.Decode([]byte(`{"amount":"49.99"}`), &updateTransactionReq{}))

	err = validation.Decode([]byte(`{"username":"ab","email":"a@b.co","password":"secret1"}`), &registerReq{})
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "username", errs[0].Field)
}

func TestRequestLimits(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }
	cases := []struct {
		name  string
		body  string
		dst   ozzo.Validatable
		field string
	}{
		{"title", `{"title":"` + long(201) + `","amount":"1","date":"2025-01-01","categoryId":1}`, &createTransactionReq{}, "title"},
		{"blank title", `{"title":"   ","amount":"1","date":"2025-01-01","categoryId":1}`, &createTransactionReq{}, "title"},
		{"blank title update", `{"title":" "}`, &updateTransactionReq{}, "title"},
		{"amount digits", `{"title":"x","amount":"12345678901","date":"2025-01-01","categoryId":1}`, &createTransactionReq{}, "amount"},
		{"profile name", `{"name":"` + long(151) + `"}`, &createProfileReq{}, "name"},
		{"blank profile name", `{"name":"  "}`, &updateProfileReq{}, "name"},
		{"mobile", `{"name":"A","mobile":"` + long(31) + `"}`, &createProfileReq{}, "mobile"},
		{"pincode", `{"pincode":"` + long(21) + `"}`, &updateProfileReq{}, "pincode"},
		{"avatar", `{"name":"A","avatar":"` + long(501) + `"}`, &createProfileReq{}, "avatar"},
		{"category name", `{"name":"` + long(101) + `"}`, &createCategoryReq{}, "name"},
		{"blank category name", `{"name":"\t "}`, &createCategoryReq{}, "name"},
		{"username", `{"username":"` + long(101) + `","email":"a@b.co","password":"secret1"}`, &registerReq{}, "username"},
		{"email", `{"username":"abc","email":"` + long(251) + `@b.co","password":"secret1"}`, &registerReq{}, "email"},
		{"password", `{"username":"abc","email":"a@b.co","password":"` + long(73) + `"}`, &registerReq{}, "password"},
		{"password update", `{"password":"` + long(80) + `"}`, &updateUserReq{}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errs validation.Errors
			err := validation.Decode([]byte(tc.body), tc.dst)
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].Field)
		})
	}

	// the limits themselves are accepted
	assert.NoError(t, validation.Decode([]byte(`{"title":"`+long(200)+`","amount":"9999999999.99","date":"2025-01-01","categoryId":1}`), &createTransactionReq{}))
	assert.NoError(t, validation.Decode([]byte(`{"username":"abc","email":"a@b.co","password":"`+long(72)+`"}`), &registerReq{}))
	assert.NoError(t, validation.Decode([]byte(`{"name":"`+strings.Repeat("é", 150)+`"}`), &createProfileReq{}))
}

func TestProfilePatchTrimsName(t *testing.T) {
	name := "  Alice  "
	p := updateProfileReq{Name: &name}.patch()
	require.NotNil(t, p.Name)
	assert.Equal(t, "Alice", *p.Name)
}
