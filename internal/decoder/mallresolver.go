package decoder

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/ChaXxl/LysToolBox/internal/fetcher"
	"github.com/ChaXxl/LysToolBox/internal/resilience"
)

const mallPageTimeout = 10 * time.Second

// NewMallNameResolver returns a MallNameFunc that loads the mall's
// mobile page and reads the mall name out of its embedded rawData.
// Results are cached per mall ID so a search page full of items from
// the same store costs one fetch. The breaker keeps a blocked or
// rate-limited mall page from stalling every capture that follows.
func NewMallNameResolver(f fetcher.Fetcher, cb *resilience.CircuitBreaker) MallNameFunc {
	var (
		mu    sync.Mutex
		cache = make(map[string]string)
	)

	return func(mallID string) (string, error) {
		mu.Lock()
		if name, ok := cache[mallID]; ok {
			mu.Unlock()
			return name, nil
		}
		mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), mallPageTimeout)
		defer cancel()

		name, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (string, error) {
			return fetchMallName(ctx, f, mallID)
		})
		if err != nil {
			return "", err
		}

		mu.Lock()
		cache[mallID] = name
		mu.Unlock()
		return name, nil
	}
}

func fetchMallName(ctx context.Context, f fetcher.Fetcher, mallID string) (string, error) {
	body, err := f.Download(ctx, pddMallURL(mallID))
	if err != nil {
		return "", eris.Wrap(err, "fetch mall page")
	}
	defer body.Close() //nolint:errcheck

	html, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrap(err, "read mall page")
	}

	m := rawDataRe.FindSubmatch(html)
	if m == nil {
		return "", eris.New("pdd: mall page rawData not found")
	}
	raw := gjson.ParseBytes(m[1])
	for _, path := range []string{"store.initDataObj.mall.mallName", "mall.mallName"} {
		if name := raw.Get(path).String(); name != "" {
			return name, nil
		}
	}
	return "", eris.New("pdd: mall name missing from rawData")
}
