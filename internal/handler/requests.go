package handler

import (
	"errors"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/iliyamo/finance-tracker/internal/model"
)

// Text limits below follow the column sizes of the schema.

// notBlank rejects strings made only of whitespace.  Names and titles are
// stored trimmed, so such a value would be saved as "".
var notBlank = ozzo.By(func(v any) error {
	s, _ := v.(string)
	if p, ok := v.(*string); ok && p != nil {
		s = *p
	}
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// passwordLength counts bytes: bcrypt refuses input longer than 72.
var passwordLength = ozzo.Length(6, 72)

// ----- request bodies -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Username, ozzo.Required, notBlank, ozzo.RuneLength(3, 100)),
		ozzo.Field(&r.Email, ozzo.Required, ozzo.RuneLength(0, 255), is.EmailFormat),
		ozzo.Field(&r.Password, ozzo.Required, passwordLength),
	)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Email, ozzo.Required, is.EmailFormat),
		ozzo.Field(&r.Password, ozzo.Required, ozzo.Length(6, 0)),
	)
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (r refreshReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.RefreshToken, ozzo.Required),
	)
}

type updateUserReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r updateUserReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Username, ozzo.NilOrNotEmpty, notBlank, ozzo.RuneLength(3, 100)),
		ozzo.Field(&r.Email, ozzo.NilOrNotEmpty, ozzo.RuneLength(0, 255), is.EmailFormat),
		ozzo.Field(&r.Password, ozzo.NilOrNotEmpty, passwordLength),
	)
}

type createProfileReq struct {
	UserID       *uint64 `json:"userId"`
	Name         string  `json:"name"`
	Mobile       *string `json:"mobile"`
	Avatar       *string `json:"avatar"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Pincode      *string `json:"pincode"`
}

func (r createProfileReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Name, ozzo.Required, notBlank, ozzo.RuneLength(1, 150)),
		ozzo.Field(&r.UserID, ozzo.NilOrNotEmpty),
		ozzo.Field(&r.Mobile, ozzo.RuneLength(0, 30)),
		ozzo.Field(&r.Avatar, ozzo.RuneLength(0, 500)),
		ozzo.Field(&r.AddressLine1, ozzo.RuneLength(0, 255)),
		ozzo.Field(&r.AddressLine2, ozzo.RuneLength(0, 255)),
		ozzo.Field(&r.City, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.State, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.Country, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.Pincode, ozzo.RuneLength(0, 20)),
	)
}

func (r createProfileReq) profile(userID uint64) model.Profile {
	return model.Profile{
		UserID:       userID,
		Name:         strings.TrimSpace(r.Name),
		Mobile:       r.Mobile,
		Avatar:       r.Avatar,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Pincode:      r.Pincode,
	}
}

type updateProfileReq struct {
	Name         *string `json:"name"`
	Mobile       *string `json:"mobile"`
	Avatar       *string `json:"avatar"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Pincode      *string `json:"pincode"`
}

func (r updateProfileReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Name, ozzo.NilOrNotEmpty, notBlank, ozzo.RuneLength(1, 150)),
		ozzo.Field(&r.Mobile, ozzo.RuneLength(0, 30)),
		ozzo.Field(&r.Avatar, ozzo.RuneLength(0, 500)),
		ozzo.Field(&r.AddressLine1, ozzo.RuneLength(0, 255)),
		ozzo.Field(&r.AddressLine2, ozzo.RuneLength(0, 255)),
		ozzo.Field(&r.City, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.State, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.Country, ozzo.RuneLength(0, 100)),
		ozzo.Field(&r.Pincode, ozzo.RuneLength(0, 20)),
	)
}

func (r updateProfileReq) patch() model.ProfilePatch {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	return model.ProfilePatch{
		Name:         r.Name,
		Mobile:       r.Mobile,
		Avatar:       r.Avatar,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Pincode:      r.Pincode,
	}
}

var categoryTypeRule = ozzo.By(func(v any) error {
	t, _ := v.(model.CategoryType)
	if p, ok := v.(*model.CategoryType); ok && p != nil {
		t = *p
	}
	if t != "" && !t.Valid() {
		return errors.New("must be one of INCOME, EXPENSE")
	}
	return nil
})

type createCategoryReq struct {
	Name         string             `json:"name"`
	CategoryType model.CategoryType `json:"categoryType"`
}

func (r createCategoryReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Name, ozzo.Required, notBlank, ozzo.RuneLength(1, 100)),
		ozzo.Field(&r.CategoryType, categoryTypeRule),
	)
}

type updateCategoryReq struct {
	Name         *string             `json:"name"`
	CategoryType *model.CategoryType `json:"categoryType"`
}

func (r updateCategoryReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Name, ozzo.NilOrNotEmpty, notBlank, ozzo.RuneLength(1, 100)),
		ozzo.Field(&r.CategoryType, ozzo.NilOrNotEmpty, categoryTypeRule),
	)
}

// amountRule accepts decimal strings with at most two fractional digits.
var amountRule = ozzo.By(func(v any) error {
	s, _ := v.(string)
	if p, ok := v.(*string); ok && p != nil {
		s = *p
	}
	if s == "" {
		return nil
	}
	if _, err := model.ParseAmount(s); err != nil {
		return errors.New("must be a decimal number with at most 10 integer digits and 2 decimals")
	}
	return nil
})

// dateRule accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
var dateRule = ozzo.By(func(v any) error {
	s, _ := v.(string)
	if p, ok := v.(*string); ok && p != nil {
		s = *p
	}
	if s == "" {
		return nil
	}
	if _, _, err := parseDate(s); err != nil {
		return errors.New("must be an ISO 8601 date")
	}
	return nil
})

type createTransactionReq struct {
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	Amount       string              `json:"amount"`
	Date         string              `json:"date"`
	CategoryType *model.CategoryType `json:"categoryType"`
	UserID       *uint64             `json:"userId"`
	CategoryID   uint64              `json:"categoryId"`
}

func (r createTransactionReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Title, ozzo.Required, notBlank, ozzo.RuneLength(1, 200)),
		ozzo.Field(&r.Amount, ozzo.Required, amountRule),
		ozzo.Field(&r.Date, ozzo.Required, dateRule),
		ozzo.Field(&r.CategoryType, categoryTypeRule),
		ozzo.Field(&r.UserID, ozzo.NilOrNotEmpty),
		ozzo.Field(&r.CategoryID, ozzo.Required),
	)
}

type updateTransactionReq struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Amount       *string             `json:"amount"`
	Date         *string             `json:"date"`
	CategoryType *model.CategoryType `json:"categoryType"`
	CategoryID   *uint64             `json:"categoryId"`
}

func (r updateTransactionReq) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Title, ozzo.NilOrNotEmpty, notBlank, ozzo.RuneLength(1, 200)),
		ozzo.Field(&r.Amount, ozzo.NilOrNotEmpty, amountRule),
		ozzo.Field(&r.Date, ozzo.NilOrNotEmpty, dateRule),
		ozzo.Field(&r.CategoryType, categoryTypeRule),
		ozzo.Field(&r.CategoryID, ozzo.NilOrNotEmpty),
	)
}

func (r updateTransactionReq) patch() (model.TransactionPatch, error) {
	p := model.TransactionPatch{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
	if r.Amount != nil {
		a, err := model.ParseAmount(*r.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &a
	}
	if r.Date != nil {
		d, _, err := parseDate(*r.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	return p, nil
}

// parseDate reads an RFC 3339 timestamp, a zoneless timestamp (taken as
// UTC) or a YYYY-MM-DD date (midnight UTC).  dateOnly reports which form was given.  The result is truncated
// to whole seconds, the precision of DATETIME columns.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), false, nil
		}
	}
	return time.Time{}, false, err
}
