// Package dispatch routes intercepted response events to their platform
// handlers. The proxy layer owns timing, retries, and TLS; this package
// only decides which handler sees which body.
package dispatch

import (
	"bytes"
	"io"
	"net/http"
	"regexp"

	"github.com/klauspost/compress/gzip"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Event is one completed exchange observed by the proxy layer.
type Event struct {
	URL    string
	Body   []byte
	Header http.Header
}

// Handler processes a matched response body. Errors are logged and
// contained; they never reach the proxy loop.
type Handler func(ev Event) error

// Route pairs a URL pattern with its handler. Routes are evaluated in
// table order and the first match wins.
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Handle  Handler
}

// Dispatcher matches events against an ordered route table.
type Dispatcher struct {
	routes []Route
	log    *zap.Logger
}

// New builds a dispatcher over the given routes.
func New(routes []Route) *Dispatcher {
	return &Dispatcher{
		routes: routes,
		log:    zap.L().With(zap.String("component", "dispatch")),
	}
}

// Dispatch finds the first route matching the event URL and runs its
// handler. It returns the matched route name, or "" when no route claimed
// the URL. Handler failures and undecodable bodies are logged and
// swallowed so one bad response cannot stall the capture session.
func (d *Dispatcher) Dispatch(ev Event) string {
	for _, route := range d.routes {
		if !route.Pattern.MatchString(ev.URL) {
			continue
		}

		log := d.log.With(zap.String("route", route.Name), zap.String("url", truncate(ev.URL, 80)))

		body, err := decodeBody(ev)
		if err != nil {
			log.Warn("undecodable response body", zap.Error(err))
			return route.Name
		}
		if len(body) == 0 {
			log.Debug("empty response body")
			return route.Name
		}
		ev.Body = body

		log.Info("intercepted")
		if err := route.Handle(ev); err != nil {
			log.Warn("handler failed", zap.Error(err))
		}
		return route.Name
	}
	return ""
}

// decodeBody undoes transport compression when the proxy layer passed the
// body through raw.
func decodeBody(ev Event) ([]byte, error) {
	if ev.Header.Get("Content-Encoding") != "gzip" {
		return ev.Body, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(ev.Body))
	if err != nil {
		return nil, eris.Wrap(err, "dispatch: open gzip body")
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "dispatch: inflate body")
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
