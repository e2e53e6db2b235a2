// Package people wraps the Planning Center people v2 API, which
// covers the whole member directory rather than just people known to
// the groups product.
package people

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bpdavis86/planning-center-backend/backend"
)

type Provider struct {
	client *backend.Client
}

func NewProvider(client *backend.Client) *Provider {
	return &Provider{client: client}
}

// QueryExpression mirrors the where[...] filters of the people v2 API.
// Nil fields are left out of the query.
type QueryExpression struct {
	AccountingAdministrator          *bool
	Anniversary                      *time.Time
	Birthdate                        *time.Time
	Child                            *bool
	CreatedAt                        *time.Time
	FirstName                        *string
	Gender                           *string
	GivenName                        *string
	Grade                            *int
	GraduationYear                   *int
	ID                               *int64
	InactivatedAt                    *time.Time
	LastName                         *string
	MedicalNotes                     *string
	Membership                       *string
	MiddleName                       *string
	Nickname                         *string
	PeoplePermissions                *string
	RemoteID                         *int64
	SearchName                       *string
	SearchNameOrEmail                *string
	SearchNameOrEmailOrPhoneNumber   *string
	SearchPhoneNumber                *string
	SearchPhoneNumberE164            *string
	SiteAdministrator                *bool
	Status                           *string
	UpdatedAt                        *time.Time
}

func whereBool(params url.Values, key string, v *bool) {
	if v != nil {
		params.Set("where["+key+"]", strconv.FormatBool(*v))
	}
}

func whereString(params url.Values, key string, v *string) {
	if v != nil {
		params.Set("where["+key+"]", *v)
	}
}

func whereInt(params url.Values, key string, v *int) {
	if v != nil {
		params.Set("where["+key+"]", strconv.Itoa(*v))
	}
}

func whereInt64(params url.Values, key string, v *int64) {
	if v != nil {
		params.Set("where["+key+"]", strconv.FormatInt(*v, 10))
	}
}

func whereDate(params url.Values, key string, v *time.Time) {
	if v != nil {
		params.Set("where["+key+"]", v.Format("2006-01-02"))
	}
}

func whereTime(params url.Values, key string, v *time.Time) {
	if v != nil {
		params.Set("where["+key+"]", v.Format(time.RFC3339))
	}
}

// Values renders the expression as API query parameters.
func (e QueryExpression) Values() url.Values {
	params := url.Values{}
	whereBool(params, "accounting_administrator", e.AccountingAdministrator)
	whereDate(params, "anniversary", e.Anniversary)
	whereDate(params, "birthdate", e.Birthdate)
	whereBool(params, "child", e.Child)
	whereTime(params, "created_at", e.CreatedAt)
	whereString(params, "first_name", e.FirstName)
	whereString(params, "gender", e.Gender)
	whereString(params, "given_name", e.GivenName)
	whereInt(params, "grade", e.Grade)
	whereInt(params, "graduation_year", e.GraduationYear)
	whereInt64(params, "id", e.ID)
	whereTime(params, "inactivated_at", e.InactivatedAt)
	whereString(params, "last_name", e.LastName)
	whereString(params, "medical_notes", e.MedicalNotes)
	whereString(params, "membership", e.Membership)
	whereString(params, "middle_name", e.MiddleName)
	whereString(params, "nickname", e.Nickname)
	whereString(params, "people_permissions", e.PeoplePermissions)
	whereInt64(params, "remote_id", e.RemoteID)
	whereString(params, "search_name", e.SearchName)
	whereString(params, "search_name_or_email", e.SearchNameOrEmail)
	whereString(params, "search_name_or_email_or_phone_number", e.SearchNameOrEmailOrPhoneNumber)
	whereString(params, "search_phone_number", e.SearchPhoneNumber)
	whereString(params, "search_phone_number_e164", e.SearchPhoneNumberE164)
	whereBool(params, "site_administrator", e.SiteAdministrator)
	whereString(params, "status", e.Status)
	whereTime(params, "updated_at", e.UpdatedAt)
	return params
}

// QueryOptions carries paging knobs; zero values leave the API
// defaults in place.
type QueryOptions struct {
	PerPage int
	Offset  int
	// Limit caps the total number of records collected across pages.
	// Zero collects everything.
	Limit int
}

// Query lists people matching the expression.
func (p *Provider) Query(ctx context.Context, expr QueryExpression, opts QueryOptions) ([]PersonData, error) {
	params := expr.Values()
	if opts.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	return backend.QueryAll[PersonData](ctx, p.client, p.client.Endpoints.PeopleAPI(), params, opts.Limit)
}

// Search looks people up by name the way the UI search box does.
func (p *Provider) Search(ctx context.Context, name string) ([]PersonData, error) {
	return p.Query(ctx, QueryExpression{SearchName: &name}, QueryOptions{})
}

// Get fetches a single person by id.
func (p *Provider) Get(ctx context.Context, id int64) (*PersonData, error) {
	data, err := backend.QueryOne[PersonData](ctx, p.client,
		fmt.Sprintf("%s/%d", p.client.Endpoints.PeopleAPI(), id), nil)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
