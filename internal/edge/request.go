package edge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/skyroute/internal/router"
)

const (
	contentTypeForm      = "application/x-www-form-urlencoded"
	contentTypeMultipart = "multipart/form-data"
)

// Response headers carrying the routing decision.
const (
	HeaderService  = "X-Skyroute-Service"
	HeaderProtocol = "X-Skyroute-Protocol"
	HeaderStage    = "X-Skyroute-Stage"
)

// Request adapts an *http.Request to router.Request.
//
// The body is read at most once, and only when a resolution stage asks for
// it. It stays readable for whatever handles the request afterwards.
// A Request is not safe for concurrent use.
type Request struct {
	r       *http.Request
	maxBody int64

	bodyLoaded bool
	body       []byte
	bodyErr    error

	valuesLoaded bool
	values       url.Values
	valuesErr    error
}

var _ router.Request = (*Request)(nil)

// NewRequest wraps r. Bodies larger than maxBody are reported as
// router.ErrEntityTooLarge.
func NewRequest(r *http.Request, maxBody int64) *Request {
	return &Request{r: r, maxBody: maxBody}
}

func (req *Request) Method() string { return req.r.Method }

func (req *Request) Host() string {
	if req.r.Host != "" {
		return req.r.Host
	}
	return req.r.URL.Host
}

func (req *Request) Path() string {
	if req.r.URL.Path == "" {
		return "/"
	}
	return req.r.URL.Path
}

func (req *Request) Header(name string) string { return req.r.Header.Get(name) }

// Shallow reports websocket upgrades: their body is a stream, not a payload.
func (req *Request) Shallow() bool { return websocket.IsWebSocketUpgrade(req.r) }

// Body reads up to maxBody bytes.
func (req *Request) Body() ([]byte, error) {
	if !req.bodyLoaded {
		req.bodyLoaded = true
		req.body, req.bodyErr = req.readBody()
	}
	return req.body, req.bodyErr
}

func (req *Request) readBody() ([]byte, error) {
	if req.r.Body == nil || req.r.Body == http.NoBody {
		return nil, nil
	}

	orig := req.r.Body
	buf, err := io.ReadAll(io.LimitReader(orig, req.maxBody+1))
	// hand back what was consumed, followed by whatever is left
	req.r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), orig), Closer: orig}
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(buf)) > req.maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", router.ErrEntityTooLarge, req.maxBody)
	}
	return buf, nil
}

// Values merges query parameters with the form fields of urlencoded and
// multipart bodies. Query values come first. When the body cannot be used,
// the query values are still returned along with the error.
func (req *Request) Values() (url.Values, error) {
	if !req.valuesLoaded {
		req.valuesLoaded = true
		req.values, req.valuesErr = req.parseValues()
	}
	return req.values, req.valuesErr
}

func (req *Request) parseValues() (url.Values, error) {
	values := req.r.URL.Query()

	mediaType, params, err := mime.ParseMediaType(req.r.Header.Get("Content-Type"))
	if err != nil || (mediaType != contentTypeForm && mediaType != contentTypeMultipart) {
		return values, nil
	}

	body, err := req.Body()
	if err != nil {
		return values, err
	}

	var form url.Values
	switch mediaType {
	case contentTypeForm:
		form, err = url.ParseQuery(string(body))
	case contentTypeMultipart:
		form, err = parseMultipart(body, params["boundary"], req.maxBody)
	}
	if err != nil {
		return values, fmt.Errorf("%w: undecodable form: %v", router.ErrEntityTooLarge, err)
	}

	for k, vs := range form {
		values[k] = append(values[k], vs...)
	}
	return values, nil
}

func parseMultipart(body []byte, boundary string, maxMemory int64) (url.Values, error) {
	if boundary == "" {
		return nil, errors.New("missing multipart boundary")
	}
	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxMemory)
	if err != nil {
		return nil, err
	}
	defer func() { _ = form.RemoveAll() }()
	return url.Values(form.Value), nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
