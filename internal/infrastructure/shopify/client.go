package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAfter = 2 * time.Second
	maxThrottleWait   = 20 * time.Second
	maxBodyInError    = 512
)

// GraphQLError errores de ejecución devueltos por la API con status 200.
type GraphQLError struct {
	Messages []string
	Codes    []string
}

func (e *GraphQLError) Error() string {
	return "shopify graphql: " + strings.Join(e.Messages, "; ")
}

// Throttled indica si la API rechazó la query por costo.
func (e *GraphQLError) Throttled() bool {
	for _, c := range e.Codes {
		if c == "THROTTLED" {
			return true
		}
	}
	return false
}

// Is hace que un THROTTLED cumpla errors.Is(err, domain.ErrRateLimited).
func (e *GraphQLError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.Throttled()
}

// StatusError respuesta HTTP no exitosa.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify status %d: %s", e.StatusCode, e.Body)
}

// Is hace que un 429 cumpla errors.Is(err, domain.ErrRateLimited).
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// Options parámetros de construcción del cliente.
type Options struct {
	APIVersion        string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	EndpointOverride  string
	HTTPClient        *http.Client
	Logger            zerolog.Logger
}

// OptionsFromConfig traduce la configuración de la app.
func OptionsFromConfig(cfg config.ShopifyConfig, log zerolog.Logger) Options {
	return Options{
		APIVersion:        cfg.APIVersion,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.Timeout,
		EndpointOverride:  cfg.EndpointOverride,
		Logger:            log,
	}
}

// Client cliente GraphQL de administración para una tienda. Se construye un valor por tienda;
// no hay estado global.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient construye el cliente para el dominio y token de una tienda.
func NewClient(domain, token string, opts Options) *Client {
	endpoint := opts.EndpointOverride
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, opts.APIVersion)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		log:        opts.Logger.With().Str("shop_domain", domain).Logger(),
	}
}

// ForShop construye el cliente con las credenciales guardadas de la tienda.
func ForShop(shop *entity.Shop, opts Options) *Client {
	return NewClient(shop.Domain, shop.AccessToken, opts)
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []gqlError      `json:"errors"`
	Extensions *gqlExtensions  `json:"extensions"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type gqlExtensions struct {
	Cost *struct {
		RequestedQueryCost float64 `json:"requestedQueryCost"`
		ThrottleStatus     struct {
			MaximumAvailable   float64 `json:"maximumAvailable"`
			CurrentlyAvailable float64 `json:"currentlyAvailable"`
			RestoreRate        float64 `json:"restoreRate"`
		} `json:"throttleStatus"`
	} `json:"cost"`
}

// Query ejecuta una query y decodifica "data" en out. Un 429 o un error THROTTLED se reintenta
// una sola vez después de esperar.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		resp, wait, err := c.post(ctx, body)
		if err == nil {
			if resp.Extensions != nil {
				c.waitForCost(ctx, resp.Extensions)
			}
			if len(resp.Data) == 0 || string(resp.Data) == "null" {
				return fmt.Errorf("shopify graphql: respuesta sin data")
			}
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("decode graphql data: %w", err)
			}
			return nil
		}
		if wait <= 0 || attempt > 0 {
			return err
		}
		c.log.Warn().Err(err).Dur("wait", wait).Msg("API limitada, reintentando")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// post hace una petición. Si el error admite reintento devuelve la espera sugerida (> 0).
func (c *Client) post(ctx context.Context, body []byte) (*gqlResponse, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, parseRetryAfter(resp.Header), &StatusError{StatusCode: resp.StatusCode, Body: truncate(raw)}
	}
	if resp.StatusCode >= 300 {
		return nil, 0, &StatusError{StatusCode: resp.StatusCode, Body: truncate(raw)}
	}

	var out gqlResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, 0, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(out.Errors) > 0 {
		gerr := &GraphQLError{}
		for _, e := range out.Errors {
			gerr.Messages = append(gerr.Messages, e.Message)
			if e.Extensions.Code != "" {
				gerr.Codes = append(gerr.Codes, e.Extensions.Code)
			}
		}
		if gerr.Throttled() {
			wait := throttleWait(out.Extensions, true)
			if wait <= 0 {
				wait = defaultRetryAfter
			}
			return nil, wait, gerr
		}
		return nil, 0, gerr
	}
	return &out, 0, nil
}

// waitForCost espera a que se recupere el bucket de costo si la próxima query no cabría.
func (c *Client) waitForCost(ctx context.Context, ext *gqlExtensions) {
	wait := throttleWait(ext, false)
	if wait <= 0 {
		return
	}
	c.log.Debug().Dur("wait", wait).Msg("bucket de costo bajo, esperando")
	_ = sleep(ctx, wait)
}

// throttleWait calcula el tiempo hasta recuperar el costo de la última query.
// Con force se calcula aunque haya puntos disponibles (respuesta THROTTLED).
func throttleWait(ext *gqlExtensions, force bool) time.Duration {
	if ext == nil || ext.Cost == nil {
		return 0
	}
	ts := ext.Cost.ThrottleStatus
	need := ext.Cost.RequestedQueryCost
	if ts.RestoreRate <= 0 || (!force && ts.CurrentlyAvailable >= need) {
		return 0
	}
	missing := need - ts.CurrentlyAvailable
	if missing <= 0 {
		missing = ts.RestoreRate
	}
	wait := time.Duration(missing / ts.RestoreRate * float64(time.Second))
	if wait > maxThrottleWait {
		wait = maxThrottleWait
	}
	return wait
}

// parseRetryAfter acepta segundos o fecha HTTP; sin header usa el default.
func parseRetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return defaultRetryAfter
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
		if f == 0 {
			return time.Millisecond
		}
		return time.Duration(f * float64(time.Second))
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return defaultRetryAfter
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(raw []byte) string {
	if len(raw) > maxBodyInError {
		return string(raw[:maxBodyInError]) + "..."
	}
	return string(raw)
}

