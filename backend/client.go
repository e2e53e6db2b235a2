// Package backend owns the cookie-bearing HTTP session against
// Planning Center. All JSON API queries, settings-form posts and CSRF
// token replay from the domain providers go through the Client in this
// package.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/bpdavis86/planning-center-backend/lib/restyutil"
	"github.com/bpdavis86/planning-center-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("backend")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var LoginFailed = fmt.Errorf("Failed to login to your account.")

type Client struct {
	Http      *resty.Client
	Endpoints Endpoints

	csrf     *tokenCache
	username string
}

type ClientOptions struct {
	// Endpoints overrides the production hosts; the zero value keeps
	// the defaults.
	Endpoints Endpoints
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// InstrumentOutput receives full request/response dumps when debug
	// logging is on. Nil disables dumping.
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(opts.Endpoints.hostnames()...))
	client.SetTimeout(opts.Timeout)

	// one instrumenter per client; stacking both would start two spans
	// per request and only end one of them
	if opts.InstrumentOutput != nil {
		restyutil.InstrumentClient(client, nil, opts.InstrumentOutput)
	} else {
		telemetry.InstrumentResty(client, "backend/http")
	}

	return &Client{
		Http:      client,
		Endpoints: opts.Endpoints,
		csrf:      newTokenCache(),
	}, nil
}

// Username returns the username of the last successful login, or "".
func (c *Client) Username() string {
	return c.username
}

// LoggedIn probes an authenticated JSON resource; it reports false
// whenever the probe fails with any status, since an expired session
// answers 401.
func (c *Client) LoggedIn(ctx context.Context) bool {
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		Get(c.Endpoints.me())
	return err == nil && res.IsSuccess()
}

func (c *Client) authenticityToken(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.GetDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}
	token := doc.Find("input[name=authenticity_token]").AttrOr("value", "")
	if token == "" {
		return "", fmt.Errorf("could not find authenticity_token input at %s", pageURL)
	}
	return token, nil
}

// Login signs the session in with the given credentials. A failed
// login and a successful one both answer 200, so the result is
// determined by probing an authenticated resource afterwards.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	token, err := c.authenticityToken(ctx, c.Endpoints.loginNew())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login form token")
		return err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"authenticity_token": token,
			"login":              username,
			"password":           password,
			"commit":             "Sign in",
		}).
		Post(c.Endpoints.loginPost())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.IsError() {
		err := newRequestError("login", c.Endpoints.loginPost(), res)
		span.RecordError(err)
		span.SetStatus(codes.Error, "login post failed outright")
		return err
	}

	if !c.LoggedIn(ctx) {
		span.SetStatus(codes.Error, LoginFailed.Error())
		return LoginFailed
	}
	c.username = username
	return nil
}

// Logout is a no-op when the session is already signed out.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	if !c.LoggedIn(ctx) {
		return nil
	}
	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.Endpoints.logout())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make logout request")
		return err
	}
	if c.LoggedIn(ctx) {
		err := fmt.Errorf("logout failed, status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "still logged in after logout")
		return err
	}
	c.username = ""
	return nil
}

// GetJSON fetches rawurl with an application/json accept header and
// returns the raw body. params may be nil.
func (c *Client) GetJSON(ctx context.Context, rawurl string, params url.Values) ([]byte, error) {
	req := c.Http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json")
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	res, err := req.Get(rawurl)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, newRequestError("get json", rawurl, res)
	}
	return res.Body(), nil
}

// GetDocument fetches a front-end page and parses it. The text/html
// accept header is required; the vendor answers differently to */*.
func (c *Client) GetDocument(ctx context.Context, rawurl string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("accept", "text/html").
		Get(rawurl)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, newRequestError("get page", rawurl, res)
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// MutateOptions controls CSRF token handling on POST and DELETE
// requests.
type MutateOptions struct {
	// CSRFPage is the front-end page whose meta tag supplies the CSRF
	// token. When empty the request goes out without token headers.
	CSRFPage string
	// NoCache bypasses the token cache entirely.
	NoCache bool
	// NoRetry disables the single retry with a fresh token after a
	// failed response.
	NoRetry bool
}

// PostForm posts a url-encoded form. With a CSRFPage set, the request
// carries spoofed-AJAX headers and a cached CSRF token, and is retried
// exactly once with a fresh token when the first attempt fails.
func (c *Client) PostForm(ctx context.Context, rawurl string, form url.Values, opts MutateOptions) (*resty.Response, error) {
	return c.mutate(ctx, http.MethodPost, rawurl, form, opts)
}

// Delete issues a DELETE with the same CSRF handling as PostForm.
func (c *Client) Delete(ctx context.Context, rawurl string, opts MutateOptions) (*resty.Response, error) {
	return c.mutate(ctx, http.MethodDelete, rawurl, nil, opts)
}

func (c *Client) mutate(ctx context.Context, method, rawurl string, form url.Values, opts MutateOptions) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "client:mutate")
	defer span.End()

	if opts.CSRFPage == "" {
		res, err := c.send(ctx, method, rawurl, form, "")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to make request")
			return nil, err
		}
		if res.IsError() {
			err := newRequestError(method, rawurl, res)
			span.RecordError(err)
			span.SetStatus(codes.Error, "request failed")
			return res, err
		}
		return res, nil
	}

	token, err := c.CSRFToken(ctx, opts.CSRFPage, opts.NoCache)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire csrf token")
		return nil, err
	}
	res, err := c.send(ctx, method, rawurl, form, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make request")
		return nil, err
	}
	if res.IsError() && !opts.NoCache && !opts.NoRetry {
		// the cached token may have gone stale on the server side
		c.InvalidateCSRFToken(opts.CSRFPage)
		token, err = c.CSRFToken(ctx, opts.CSRFPage, false)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to refresh csrf token")
			return nil, err
		}
		res, err = c.send(ctx, method, rawurl, form, token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to make retried request")
			return nil, err
		}
	}
	if res.IsError() {
		err := newRequestError(method, rawurl, res)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return res, err
	}
	return res, nil
}

func (c *Client) send(ctx context.Context, method, rawurl string, form url.Values, token string) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	if form != nil {
		req.SetFormDataFromValues(form)
	}
	if token != "" {
		// headers for a spoofed AJAX request; the vendor rejects */*
		req.SetHeader("accept", "text/javascript")
		req.SetHeader("x-csrf-token", token)
		req.SetHeader("x-requested-with", "XMLHttpRequest")
	}
	switch method {
	case http.MethodPost:
		return req.Post(rawurl)
	case http.MethodDelete:
		return req.Delete(rawurl)
	}
	return nil, fmt.Errorf("unsupported method %s", method)
}
