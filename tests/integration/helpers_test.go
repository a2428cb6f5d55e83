package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/internal/cart"
	"github.com/miku-nicol/klassyz-hair-client/internal/checkout"
	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	"github.com/miku-nicol/klassyz-hair-client/internal/session"
	"github.com/miku-nicol/klassyz-hair-client/internal/storage"
	"github.com/miku-nicol/klassyz-hair-client/pkg/httpclient"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
)

// fakeBackend is an in-process stand-in for the storefront backend with
// just enough state to run the full shopping flow: accounts, a cart, an
// order book, and payment references.
type fakeBackend struct {
	mu        sync.Mutex
	tokens    map[string]bool
	cart      []domain.CartItem
	orders    map[string]*domain.Order
	payments  map[string]string // reference -> order id
	products  []domain.Product
	rates     []domain.ShippingRate
	nextOrder int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tokens:   map[string]bool{},
		orders:   map[string]*domain.Order{},
		payments: map[string]string{},
		products: []domain.Product{
			{ID: "wig-1", Name: "Lace Front Wig", Price: 20_000, Category: "wigs"},
			{ID: "wig-2", Name: "Bob Wig", Price: 35_000, Category: "wigs"},
			{ID: "oil-1", Name: "Argan Hair Oil", Price: 4_500, Category: "care"},
		},
		rates: []domain.ShippingRate{
			{ID: "r1", State: "Lagos", Price: 2_500},
			{ID: "r2", State: "Abuja", Price: 3_000},
		},
	}
}

func (b *fakeBackend) issueToken() string {
	token := "tok-" + uuid.NewString()
	b.mu.Lock()
	b.tokens[token] = true
	b.mu.Unlock()
	return token
}

func (b *fakeBackend) revokeAll() {
	b.mu.Lock()
	b.tokens = map[string]bool{}
	b.mu.Unlock()
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[token]
}

func (b *fakeBackend) subtotal() int64 {
	var total int64
	for _, item := range b.cart {
		total += item.TotalItemPrice
	}
	return total
}

func (b *fakeBackend) findProduct(id string) *domain.Product {
	for i := range b.products {
		if b.products[i].ID == id {
			return &b.products[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/user/register", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"data": map[string]string{"token": b.issueToken()},
		})
	})
	r.Post("/user/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.Password == "wrong" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": b.issueToken()})
	})
	r.Get("/product/getAll", func(w http.ResponseWriter, req *http.Request) {
		category := req.URL.Query().Get("category")
		var out []domain.Product
		for _, p := range b.products {
			if category == "" || p.Category == category {
				out = append(out, p)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
	})
	r.Post("/newsletter/subscribe", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Thanks for subscribing!"})
	})

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if !b.authorized(req) {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
					return
				}
				next.ServeHTTP(w, req)
			})
		})

		r.Get("/cart/get", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{
				"data": domain.CartSnapshot{CartedItems: b.cart},
			})
		})
		r.Post("/cart/add", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				CartedItems []struct {
					ItemID   string `json:"itemId"`
					Quantity int    `json:"quantity"`
				} `json:"cartedItems"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)

			b.mu.Lock()
			defer b.mu.Unlock()
			for _, in := range body.CartedItems {
				product := b.findProduct(in.ItemID)
				if product == nil {
					writeJSON(w, http.StatusNotFound, map[string]string{"message": "product not found"})
					return
				}
				merged := false
				for i := range b.cart {
					if b.cart[i].ProductID == in.ItemID {
						b.cart[i].Quantity += in.Quantity
						b.cart[i].TotalItemPrice = b.cart[i].Price * int64(b.cart[i].Quantity)
						merged = true
					}
				}
				if !merged {
					b.cart = append(b.cart, domain.CartItem{
						ProductID:      product.ID,
						Name:           product.Name,
						Price:          product.Price,
						Quantity:       in.Quantity,
						TotalItemPrice: product.Price * int64(in.Quantity),
					})
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "added"})
		})
		r.Put("/cart/update", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				ProductID string `json:"productId"`
				Action    string `json:"action"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)

			b.mu.Lock()
			defer b.mu.Unlock()
			for i := range b.cart {
				if b.cart[i].ProductID != body.ProductID {
					continue
				}
				switch body.Action {
				case domain.ActionIncrease:
					b.cart[i].Quantity++
				case domain.ActionDecrease:
					b.cart[i].Quantity--
				}
				if b.cart[i].Quantity <= 0 {
					b.cart = append(b.cart[:i], b.cart[i+1:]...)
				} else {
					b.cart[i].TotalItemPrice = b.cart[i].Price * int64(b.cart[i].Quantity)
				}
				break
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    domain.CartSnapshot{CartedItems: b.cart},
			})
		})
		r.Delete("/cart/remove/{productID}", func(w http.ResponseWriter, req *http.Request) {
			productID := chi.URLParam(req, "productID")
			b.mu.Lock()
			defer b.mu.Unlock()
			for i := range b.cart {
				if b.cart[i].ProductID == productID {
					b.cart = append(b.cart[:i], b.cart[i+1:]...)
					break
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
		})
		r.Delete("/cart/clear", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.cart = nil
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
		})

		r.Get("/shipping/getall", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": b.rates})
		})

		r.Post("/orders/order", func(w http.ResponseWriter, req *http.Request) {
			var body api.CreateOrderInput
			_ = json.NewDecoder(req.Body).Decode(&body)

			b.mu.Lock()
			defer b.mu.Unlock()
			if len(b.cart) == 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "cart is empty"})
				return
			}
			var shipping int64
			for _, rate := range b.rates {
				if strings.EqualFold(rate.State, body.ShippingAddress.State) {
					shipping = rate.Price
				}
			}
			b.nextOrder++
			order := &domain.Order{
				ID:            fmt.Sprintf("order-%d", b.nextOrder),
				TotalPrice:    b.subtotal() + shipping,
				PaymentMethod: body.PaymentMethod,
				OrderStatus:   "pending",
			}
			for _, item := range b.cart {
				order.OrderItems = append(order.OrderItems, domain.OrderItem{
					ProductID: item.ProductID,
					Name:      item.Name,
					Price:     item.Price,
					Quantity:  item.Quantity,
				})
			}
			b.orders[order.ID] = order
			writeJSON(w, http.StatusCreated, map[string]any{"order": order})
		})
		r.Post("/orders/payment/initialize", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				OrderID string `json:"orderId"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)

			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.orders[body.OrderID]; !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
				return
			}
			reference := "ref-" + body.OrderID
			b.payments[reference] = body.OrderID
			writeJSON(w, http.StatusOK, map[string]string{
				"authorization_url": "https://gateway.test/pay?reference=" + url.QueryEscape(reference),
			})
		})
		r.Post("/orders/confirm-payment", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				OrderID   string `json:"orderId"`
				Reference string `json:"reference"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)

			b.mu.Lock()
			defer b.mu.Unlock()
			if b.payments[body.Reference] != body.OrderID {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unknown payment reference"})
				return
			}
			b.orders[body.OrderID].OrderStatus = "paid"
			b.cart = nil
			writeJSON(w, http.StatusOK, map[string]string{"message": "payment verified"})
		})
		r.Get("/orders/{orderID}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			order, ok := b.orders[chi.URLParam(req, "orderID")]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"order": order})
		})
	})

	return r
}

// recordingNavigator captures the destinations the checkout flow asks for.
type recordingNavigator struct {
	mu           sync.Mutex
	destinations []string
}

func (n *recordingNavigator) record(d string) {
	n.mu.Lock()
	n.destinations = append(n.destinations, d)
	n.mu.Unlock()
}

func (n *recordingNavigator) ToCart()                  { n.record("cart") }
func (n *recordingNavigator) ToReceipt(orderID string) { n.record("receipt:" + orderID) }
func (n *recordingNavigator) ToGateway(u string)       { n.record("gateway:" + u) }

func (n *recordingNavigator) last(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.destinations)
	return n.destinations[len(n.destinations)-1]
}

// client is the fully wired storefront stack under test.
type client struct {
	backend  *fakeBackend
	server   *httptest.Server
	storage  storage.Store
	session  *session.Store
	manager  *session.Manager
	api      *api.Client
	cart     *cart.Synchronizer
	checkout *checkout.Orchestrator
	nav      *recordingNavigator
}

// newClient wires the real client stack, including the retrying HTTP
// client and circuit breaker, against an in-process backend.
func newClient(t *testing.T) *client {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	log := logger.New("storefront-test", "error")
	fileStore, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	sess := session.NewStore(fileStore, log)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 1
	base := httpclient.New(httpCfg)
	breaker := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("storefront-test"), log)

	apiClient := api.New(server.URL, breaker, sess, log)
	apiClient.SetUnauthorizedHook(func() {
		_ = sess.Clear()
	})

	cartSync := cart.New(apiClient, sess, log)
	manager := session.NewManager(apiClient, sess, cartSync, log)
	nav := &recordingNavigator{}
	orch := checkout.New(apiClient, fileStore, nav, log)

	return &client{
		backend:  backend,
		server:   server,
		storage:  fileStore,
		session:  sess,
		manager:  manager,
		api:      apiClient,
		cart:     cartSync,
		checkout: orch,
		nav:      nav,
	}
}
