package decoder

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaXxl/LysToolBox/internal/resilience"
)

type mallPageFetcher struct {
	pages map[string]string
	calls atomic.Int32
}

func (f *mallPageFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	f.calls.Add(1)
	page, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("no page for %s", url)
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

func (f *mallPageFetcher) DownloadToFile(context.Context, string, string) (int64, error) {
	return 0, eris.New("not supported")
}

func mallPage(name string) string {
	// Served pages break the rawData assignment across lines.
	return `<html><script>window.rawData={"store":{"initDataObj":{"mall":
{"mallName":"` + name + `"}}}};document.dispatchEvent(new Event("load"))</script></html>`
}

func TestMallNameResolver(t *testing.T) {
	t.Parallel()

	f := &mallPageFetcher{pages: map[string]string{
		pddMallURL("123456"): mallPage("康佰馨大药房旗舰店"),
	}}
	resolve := NewMallNameResolver(f, resilience.NewCircuitBreaker("pdd-mall", resilience.DefaultConfig()))

	name, err := resolve("123456")
	require.NoError(t, err)
	assert.Equal(t, "康佰馨大药房旗舰店", name)
}

func TestMallNameResolverCaches(t *testing.T) {
	t.Parallel()

	f := &mallPageFetcher{pages: map[string]string{
		pddMallURL("123456"): mallPage("康佰馨大药房旗舰店"),
	}}
	resolve := NewMallNameResolver(f, resilience.NewCircuitBreaker("pdd-mall", resilience.DefaultConfig()))

	for i := 0; i < 3; i++ {
		name, err := resolve("123456")
		require.NoError(t, err)
		assert.Equal(t, "康佰馨大药房旗舰店", name)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestMallNameResolverMissingRawData(t *testing.T) {
	t.Parallel()

	f := &mallPageFetcher{pages: map[string]string{
		pddMallURL("123456"): "<html>verify code required</html>",
	}}
	resolve := NewMallNameResolver(f, resilience.NewCircuitBreaker("pdd-mall", resilience.DefaultConfig()))

	_, err := resolve("123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rawData not found")
}

func TestMallNameResolverBreakerOpens(t *testing.T) {
	t.Parallel()

	f := &mallPageFetcher{pages: map[string]string{}}
	cb := resilience.NewCircuitBreaker("pdd-mall", resilience.Config{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
	})
	resolve := NewMallNameResolver(f, cb)

	_, err := resolve("1")
	require.Error(t, err)
	_, err = resolve("2")
	require.Error(t, err)

	_, err = resolve("3")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), f.calls.Load())
}
