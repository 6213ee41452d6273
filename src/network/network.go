package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
)

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	// Backoff is the base delay between retries.
	Backoff time.Duration

	mu     sync.RWMutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
		Backoff:      time.Second,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

// createClient builds a client whose transport is shared by every request,
// so concurrent day fetches reuse the same connection pool.
func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) httpClient() *http.Client {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return nm.client
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// BuildURL appends params to whatever query urlStr already carries. Bare flags
// such as "?json" are preserved as-is.
func BuildURL(urlStr string, params map[string]string) (string, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	for k, v := range params {
		q.Add(k, v)
	}
	extra := q.Encode()

	switch {
	case extra == "":
	case reqUrl.RawQuery == "":
		reqUrl.RawQuery = extra
	default:
		reqUrl.RawQuery = reqUrl.RawQuery + "&" + extra
	}
	return reqUrl.String(), nil
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	finalUrl, err := BuildURL(urlStr, params)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid url "+urlStr, err)
	}

	maxRetries := nm.Config.Network.MaxRetries

	onRetry := func(attempt int, err error) {
		nm.Logger.Info("Request failed (attempt %d/%d): %v", attempt, maxRetries+1, err)
		nm.rotateProxy()
	}

	body, err := helpers.RetryWithBackoff(ctx, maxRetries, nm.Backoff, onRetry, func() ([]byte, error) {
		return nm.doGet(ctx, finalUrl)
	})
	if err != nil {
		return nil, helpers.NewNetworkError("GET "+finalUrl, err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) doGet(ctx context.Context, finalUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		nm.Logger.Warning("Request blocked (%d)", resp.StatusCode)
		return nil, fmt.Errorf("blocked (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
