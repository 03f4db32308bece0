package stdlib

import (
	"io"
	"net/http"
	"strings"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type httpModule struct {
	client *http.Client
}

func (*httpModule) Name() string { return "http" }

func (m *httpModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	if m.client == nil {
		m.client = http.DefaultClient
	}
	switch fn {
	case "get":
		if err := argCount("http", fn, args, 1); err != nil {
			return nil, err
		}
		resp, err := m.client.Get(argString(args, 0))
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "http.get: %v", err)
		}
		return readResponse(resp)
	case "post":
		if len(args) < 2 {
			return nil, diag.New(diag.RuntimeError, "http.post expects (url, body [, content_type])")
		}
		contentType := "application/json"
		if len(args) > 2 {
			contentType = argString(args, 2)
		}
		resp, err := m.client.Post(argString(args, 0), contentType, strings.NewReader(argString(args, 1)))
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "http.post: %v", err)
		}
		return readResponse(resp)
	default:
		return nil, errUnknown("http", fn)
	}
}

// readResponse renders a response as {status: int, body: string}.
func readResponse(resp *http.Response) (*runtime.Value, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, diag.New(diag.RuntimeError, "http: reading response body: %v", err)
	}
	d := runtime.NewOrderedDict()
	d.Set("status", runtime.Int(int64(resp.StatusCode)))
	d.Set("body", runtime.String(string(body)))
	return runtime.Dict(d), nil
}
