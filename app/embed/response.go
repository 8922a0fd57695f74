package embed

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

// Response is a fully materialized HTTP response. The dispatcher's cache
// stores and replays these verbatim.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) Clone() *Response {
	body := make([]byte, len(r.Body))
	copy(body, r.Body)
	return &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   body,
	}
}

// NewHTML wraps an HTML document body.
func NewHTML(status int, body []byte) *Response {
	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")
	return &Response{Status: status, Header: header, Body: body}
}

// Redirect builds a redirect-class response.
func Redirect(url string, status int) *Response {
	header := http.Header{}
	header.Set("Location", url)
	return &Response{Status: status, Header: header}
}

var debugPageTemplate = template.Must(template.New("debug").Parse(
	`<html><body><h1>{{.Message}}</h1><p>URL: {{.URL}}</p></body></html>`))

// RedirectDebug centralizes the failure-to-redirect policy. Outside debug
// mode the user is sent to the original link so they still reach the real
// content; in debug mode a diagnostic page is rendered instead. The failure
// is logged either way.
func RedirectDebug(message, url string, debug bool) *Response {
	slog.Warn(message, "url", url, "debug", debug)

	if !debug {
		return Redirect(url, http.StatusFound)
	}

	var buf bytes.Buffer
	err := debugPageTemplate.Execute(&buf, struct {
		Message string
		URL     string
	}{message, url})
	if err != nil {
		// Template data is two plain strings; execution cannot realistically
		// fail, but never panic on the failure path.
		return NewHTML(http.StatusOK, []byte(fmt.Sprintf("<html><body><h1>%s</h1></body></html>", template.HTMLEscapeString(message))))
	}

	return NewHTML(http.StatusOK, buf.Bytes())
}
