package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tableside/internal/domain"
	"tableside/internal/storage"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string      `json:"access_token"`
	User  domain.User `json:"user"`
}

type GuestOrderItem struct {
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

type GuestOrderRequest struct {
	Token     string           `json:"token"`
	OrderType string           `json:"order_type"`
	Items     []GuestOrderItem `json:"items"`
}

// Client talks to the backend REST API. Authenticated calls carry the
// persisted bearer token; a 401 triggers exactly one silent refresh and one
// replay of the original request. The refresh endpoint itself never recurses
// into another refresh.
type Client struct {
	baseURL       string
	http          Doer
	tokens        *storage.TokenAccessor
	refreshWindow time.Duration

	refreshMu sync.Mutex

	onAuthExpired func()
}

func NewClient(baseURL string, doer Doer, tokens *storage.TokenAccessor) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          doer,
		tokens:        tokens,
		refreshWindow: 30 * time.Second,
	}
}

// SetAuthExpiredHandler registers the global-logout hook invoked when a
// silent refresh fails. Wired to the session store at startup.
func (c *Client) SetAuthExpiredHandler(fn func()) {
	c.onAuthExpired = fn
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.call(ctx, http.MethodPost, "/auth/login", creds, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var result AuthResult
	if err := c.call(ctx, http.MethodPost, "/auth/register", reg, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, http.MethodGet, "/auth/user", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout is best-effort: it fires the server call once and never refreshes
// or replays. The token comes from the caller because local state is cleared
// before this call completes; an empty token means nothing to revoke.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	status, body, err := c.roundTrip(ctx, http.MethodDelete, "/auth/logout", nil, token, nil)
	if err != nil {
		return networkError(err)
	}
	if status >= 400 {
		return classify(status, body)
	}
	return nil
}

func (c *Client) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	if err := c.call(ctx, http.MethodGet, "/restaurants", nil, &restaurants, true); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (c *Client) CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	var created domain.Restaurant
	if err := c.call(ctx, http.MethodPost, "/restaurants", restaurant, &created, true); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	var categories []domain.Category
	path := fmt.Sprintf("/restaurants/%d/categories", restaurantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &categories, true); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListMenuItems(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	path := fmt.Sprintf("/restaurants/%d/menu-items", restaurantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &items, true); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListTables(ctx context.Context, restaurantID int) ([]domain.Table, error) {
	var tables []domain.Table
	path := fmt.Sprintf("/restaurants/%d/tables", restaurantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &tables, true); err != nil {
		return nil, err
	}
	return tables, nil
}

func (c *Client) ListBookings(ctx context.Context, restaurantID int) ([]domain.Booking, error) {
	var bookings []domain.Booking
	path := fmt.Sprintf("/restaurants/%d/bookings", restaurantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &bookings, true); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	var created domain.Booking
	path := fmt.Sprintf("/restaurants/%d/bookings", booking.RestaurantID)
	if err := c.call(ctx, http.MethodPost, path, booking, &created, true); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListOrders(ctx context.Context, restaurantID int) ([]domain.Order, error) {
	var orders []domain.Order
	path := fmt.Sprintf("/restaurants/%d/orders", restaurantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &orders, true); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, restaurantID, orderID int, status string) error {
	payload := map[string]string{"status": status}
	path := fmt.Sprintf("/restaurants/%d/orders/%d", restaurantID, orderID)
	return c.call(ctx, http.MethodPatch, path, payload, nil, true)
}

// GuestMenu fetches the menu a scanned table token unlocks. No auth.
func (c *Client) GuestMenu(ctx context.Context, restaurantID int, orderingToken string) (*domain.Menu, error) {
	var menu domain.Menu
	path := fmt.Sprintf("/restaurants/%d/menu/guest?token=%s", restaurantID, url.QueryEscape(orderingToken))
	if err := c.call(ctx, http.MethodGet, path, nil, &menu, false); err != nil {
		return nil, err
	}
	return &menu, nil
}

// CreateGuestOrder submits an unauthenticated table-token-scoped order. The
// idempotency key makes a double-tapped submit safe to retry server-side.
func (c *Client) CreateGuestOrder(ctx context.Context, restaurantID int, req GuestOrderRequest) (*domain.Order, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid order payload", cause: err}
	}

	path := fmt.Sprintf("/restaurants/%d/orders/guest", restaurantID)
	extra := map[string]string{"X-Idempotency-Key": uuid.NewString()}

	status, body, err := c.roundTrip(ctx, http.MethodPost, path, payload, "", extra)
	if err != nil {
		return nil, networkError(err)
	}
	if status >= 400 {
		return nil, classify(status, body)
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, &Error{Kind: KindServer, Status: status, Message: "unreadable order response", cause: err}
	}
	return &order, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &Error{Kind: KindValidation, Message: "invalid request payload", cause: err}
		}
	}

	token := ""
	if authed {
		current, ok, err := c.tokens.Token(ctx)
		if err != nil {
			return &Error{Kind: KindAuth, Message: "token storage unavailable", cause: err}
		}
		if !ok {
			return &Error{Kind: KindAuth, Message: "not authenticated"}
		}
		token = current

		// Refresh up front when the token is about to lapse, instead of
		// paying for a guaranteed 401 round-trip.
		if c.expiringSoon(token) {
			if fresh, err := c.refresh(ctx, token); err == nil {
				token = fresh
			}
		}
	}

	status, data, err := c.roundTrip(ctx, method, path, payload, token, nil)
	if err != nil {
		return networkError(err)
	}

	if status == http.StatusUnauthorized && authed {
		fresh, rerr := c.refresh(ctx, token)
		if rerr != nil {
			log.Printf("[api] silent refresh failed: %v", rerr)
			c.expireAuth(ctx)
			return rerr
		}

		status, data, err = c.roundTrip(ctx, method, path, payload, fresh, nil)
		if err != nil {
			return networkError(err)
		}
		if status == http.StatusUnauthorized {
			// The replayed request stays dead. One refresh, one replay.
			c.expireAuth(ctx)
			return classify(status, data)
		}
	}

	if status >= 400 {
		return classify(status, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindServer, Status: status, Message: "unreadable response", cause: err}
		}
	}
	return nil
}

// refresh trades the stale token for a fresh one and persists it. Calls are
// single-flight: whoever holds the mutex refreshes, everyone queued behind
// reuses the rotated token instead of firing again.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current, ok, _ := c.tokens.Token(ctx); ok && current != stale {
		return current, nil
	}

	status, body, err := c.roundTrip(ctx, http.MethodGet, "/auth/refresh", nil, stale, nil)
	if err != nil {
		return "", networkError(err)
	}
	if status >= 400 {
		return "", classify(status, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.AccessToken == "" {
		return "", &Error{Kind: KindServer, Status: status, Message: "refresh returned no token", cause: err}
	}

	if err := c.tokens.SetToken(ctx, result.AccessToken); err != nil {
		return "", &Error{Kind: KindAuth, Message: "token storage unavailable", cause: err}
	}
	return result.AccessToken, nil
}

// expiringSoon peeks at the JWT exp claim without verifying the signature;
// verification is the server's job. Opaque tokens report false and fall back
// to the 401 path.
func (c *Client) expiringSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < c.refreshWindow
}

func (c *Client) expireAuth(ctx context.Context) {
	if err := c.tokens.ClearToken(ctx); err != nil {
		log.Printf("[api] failed to clear token: %v", err)
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, token string, extra map[string]string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}
