package dispatch

import (
	"bytes"
	"net/http"
	"regexp"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_FirstMatchWins(t *testing.T) {
	t.Parallel()

	var hits []string
	mk := func(name string) Handler {
		return func(Event) error {
			hits = append(hits, name)
			return nil
		}
	}

	d := New([]Route{
		{Name: "narrow", Pattern: regexp.MustCompile(`^https://example\.com/search\?page=`), Handle: mk("narrow")},
		{Name: "broad", Pattern: regexp.MustCompile(`^https://example\.com/search`), Handle: mk("broad")},
	})

	name := d.Dispatch(Event{URL: "https://example.com/search?page=2", Body: []byte("x")})
	assert.Equal(t, "narrow", name)
	assert.Equal(t, []string{"narrow"}, hits)
}

func TestDispatcher_NoMatch(t *testing.T) {
	t.Parallel()

	d := New([]Route{{Name: "a", Pattern: regexp.MustCompile(`^https://a\.example/`), Handle: func(Event) error { return nil }}})
	assert.Empty(t, d.Dispatch(Event{URL: "https://b.example/x", Body: []byte("x")}))
}

func TestDispatcher_HandlerErrorContained(t *testing.T) {
	t.Parallel()

	calls := 0
	d := New([]Route{{
		Name:    "failing",
		Pattern: regexp.MustCompile(`.`),
		Handle: func(Event) error {
			calls++
			return eris.New("decode exploded")
		},
	}})

	// A failing handler neither panics nor prevents later dispatches.
	assert.Equal(t, "failing", d.Dispatch(Event{URL: "https://x/1", Body: []byte("x")}))
	assert.Equal(t, "failing", d.Dispatch(Event{URL: "https://x/2", Body: []byte("x")}))
	assert.Equal(t, 2, calls)
}

func TestDispatcher_EmptyBodySkipsHandler(t *testing.T) {
	t.Parallel()

	called := false
	d := New([]Route{{
		Name:    "r",
		Pattern: regexp.MustCompile(`.`),
		Handle:  func(Event) error { called = true; return nil },
	}})

	assert.Equal(t, "r", d.Dispatch(Event{URL: "https://x/"}))
	assert.False(t, called)
}

func TestDispatcher_GzipBody(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(`{"ok":true}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var got []byte
	d := New([]Route{{
		Name:    "r",
		Pattern: regexp.MustCompile(`.`),
		Handle:  func(ev Event) error { got = ev.Body; return nil },
	}})

	header := http.Header{}
	header.Set("Content-Encoding", "gzip")
	d.Dispatch(Event{URL: "https://x/", Body: buf.Bytes(), Header: header})

	assert.Equal(t, []byte(`{"ok":true}`), got)
}

func TestDispatcher_CorruptGzipContained(t *testing.T) {
	t.Parallel()

	called := false
	d := New([]Route{{
		Name:    "r",
		Pattern: regexp.MustCompile(`.`),
		Handle:  func(Event) error { called = true; return nil },
	}})

	header := http.Header{}
	header.Set("Content-Encoding", "gzip")
	assert.Equal(t, "r", d.Dispatch(Event{URL: "https://x/", Body: []byte("not gzip"), Header: header}))
	assert.False(t, called)
}
