package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/mbayend/sama-boutique/internal/core/domain"
	"github.com/mbayend/sama-boutique/internal/core/service"
)

// HTTPHandler exposes the storefront over JSON. Carts are held in
// memory per shopper session; the single mutex serializes mutations so
// no two operations interleave on the same cart.
type HTTPHandler struct {
	catalog  *service.CatalogService
	checkout *service.CheckoutService
	vendor   *service.VendorService

	mu    sync.Mutex
	carts map[string]domain.Cart
}

func NewHTTPHandler(catalog *service.CatalogService, checkout *service.CheckoutService, vendor *service.VendorService) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalog,
		checkout: checkout,
		vendor:   vendor,
		carts:    make(map[string]domain.Cart),
	}
}

// Register wires all routes onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/products", h.Products)
	mux.HandleFunc("/api/products/delete", h.DeleteProduct)
	mux.HandleFunc("/api/cart", h.Cart)
	mux.HandleFunc("/api/cart/add", h.AddToCart)
	mux.HandleFunc("/api/cart/update", h.UpdateCartQuantity)
	mux.HandleFunc("/api/cart/remove", h.RemoveFromCart)
	mux.HandleFunc("/api/cart/swap", h.SwapCartVariant)
	mux.HandleFunc("/api/checkout", h.Checkout)
	mux.HandleFunc("/api/vendor/orders", h.VendorOrders)
	mux.HandleFunc("/api/vendor/orders/delete", h.DeleteOrder)
	mux.HandleFunc("/api/vendor/stats", h.VendorStats)
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CartLineView struct {
	LineID      string `json:"line_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	VariantID   string `json:"variant_id"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Stock       int    `json:"stock"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

type CartResponse struct {
	Lines           []CartLineView          `json:"lines"`
	Subtotal        int64                   `json:"subtotal"`
	ShippingOptions []domain.ShippingOption `json:"shipping_options"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.catalog.ListProducts(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		h.createProduct(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Category    string           `json:"category"`
	Variants    []domain.Variant `json:"variants"`
	Images      []struct {
		Name string `json:"name"`
		Data []byte `json:"data"`
	} `json:"images"`
}

func (h *HTTPHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.Name == "" || req.Price <= 0 || len(req.Variants) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing required fields"})
		return
	}

	images := make([]service.ProductImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, service.ProductImage{Name: img.Name, Data: img.Data})
	}

	product, err := h.catalog.CreateProduct(r.Context(), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Variants:    req.Variants,
	}, images)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), req.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "product deleted"})
}

func (h *HTTPHandler) Cart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing session_id"})
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(h.cart(sessionID)))
}

type AddToCartRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.SessionID == "" || req.ProductID == "" || req.VariantID == "" || req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing required fields"})
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	variant, ok := product.VariantByID(req.VariantID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "variant not found"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	cart, err := h.carts[req.SessionID].Add(product, variant, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}
	h.carts[req.SessionID] = cart
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

type UpdateCartRequest struct {
	SessionID string `json:"session_id"`
	LineID    string `json:"line_id"`
	Quantity  int    `json:"quantity"`
}

func (h *HTTPHandler) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.SessionID == "" || req.LineID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing required fields"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	cart := h.carts[req.SessionID].UpdateQuantity(req.LineID, req.Quantity)
	h.carts[req.SessionID] = cart
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		LineID    string `json:"line_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.LineID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	cart := h.carts[req.SessionID].Remove(req.LineID)
	h.carts[req.SessionID] = cart
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

type SwapVariantRequest struct {
	SessionID string `json:"session_id"`
	LineID    string `json:"line_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (h *HTTPHandler) SwapCartVariant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SwapVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.LineID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	cart, err := h.carts[req.SessionID].SwapVariant(req.LineID, req.Size, req.Color)
	if err != nil {
		writeCartError(w, err)
		return
	}
	h.carts[req.SessionID] = cart
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

type CheckoutRequest struct {
	SessionID        string `json:"session_id"`
	SubmissionID     string `json:"submission_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	City             string `json:"city"`
	Region           string `json:"region"`
	ShippingOptionID string `json:"shipping_option_id"`
}

type CheckoutResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	OrderID         string              `json:"order_id,omitempty"`
	Subtotal        int64               `json:"subtotal,omitempty"`
	ShippingCost    int64               `json:"shipping_cost,omitempty"`
	Total           int64               `json:"total,omitempty"`
	RedirectAfterMS int64               `json:"redirect_after_ms,omitempty"`
	Violations      []service.Violation `json:"violations,omitempty"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.SessionID == "" || req.SubmissionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing session_id or submission_id"})
		return
	}

	cart := h.cart(req.SessionID)
	shipping, ok := shippingFor(cart, req.ShippingOptionID)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "unknown shipping option"})
		return
	}

	info := domain.CustomerInfo{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Region:    req.Region,
	}

	order, next, err := h.checkout.Submit(r.Context(), req.SubmissionID, cart, info, shipping)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusUnprocessableEntity, CheckoutResponse{
				Message:    "order rejected",
				Violations: vErr.Violations,
			})
		case errors.Is(err, service.ErrSubmissionInProgress):
			writeJSON(w, http.StatusConflict, ErrorResponse{Message: "submission already in progress"})
		case errors.Is(err, service.ErrDuplicateSubmission):
			writeJSON(w, http.StatusConflict, ErrorResponse{Message: "duplicate submission"})
		default:
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "order could not be saved"})
		}
		return
	}

	h.setCart(req.SessionID, next)
	writeJSON(w, http.StatusOK, CheckoutResponse{
		Success:         true,
		Message:         "order placed successfully",
		OrderID:         order.ID,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		Total:           order.Total,
		RedirectAfterMS: service.SuccessDisplayDelay.Milliseconds(),
	})
}

// shippingFor resolves the option id against the options actually
// offered for this cart, so a wholesale cart cannot pick a standard
// option.
func shippingFor(cart domain.Cart, id string) (domain.ShippingOption, bool) {
	for _, opt := range domain.ShippingOptionsFor(cart) {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.ShippingOption{}, false
}

type OrderView struct {
	domain.Order
	DisplayTotal int64 `json:"display_total"`
}

type VendorOrdersResponse struct {
	Today     []OrderView `json:"today"`
	ThisWeek  []OrderView `json:"this_week"`
	ThisMonth []OrderView `json:"this_month"`
	ThisYear  []OrderView `json:"this_year"`
	Older     []OrderView `json:"older"`
}

func (h *HTTPHandler) VendorOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	orders, err := h.vendor.ListOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	groups := h.vendor.GroupOrders(orders, time.Now())
	writeJSON(w, http.StatusOK, VendorOrdersResponse{
		Today:     h.orderViews(groups.Today),
		ThisWeek:  h.orderViews(groups.ThisWeek),
		ThisMonth: h.orderViews(groups.ThisMonth),
		ThisYear:  h.orderViews(groups.ThisYear),
		Older:     h.orderViews(groups.Older),
	})
}

func (h *HTTPHandler) orderViews(orders []domain.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{Order: o, DisplayTotal: h.vendor.DisplayTotal(o)})
	}
	return views
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if err := h.vendor.DeleteOrder(r.Context(), req.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ErrorResponse{Success: true, Message: "order deleted"})
}

func (h *HTTPHandler) VendorStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	orders, err := h.vendor.ListOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, h.vendor.Stats(products, orders))
}

func (h *HTTPHandler) cart(sessionID string) domain.Cart {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.carts[sessionID]
}

func (h *HTTPHandler) setCart(sessionID string, cart domain.Cart) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.carts[sessionID] = cart
}

func (h *HTTPHandler) cartResponse(cart domain.Cart) CartResponse {
	lines := make([]CartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineView{
			LineID:      l.ID,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			VariantID:   l.Variant.ID,
			Size:        l.Variant.Size,
			Color:       l.Variant.Color,
			Stock:       l.Variant.Stock,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
		})
	}
	return CartResponse{
		Lines:           lines,
		Subtotal:        cart.Subtotal(),
		ShippingOptions: domain.ShippingOptionsFor(cart),
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrAlreadyInCart):
		status = http.StatusConflict
		message = "already in cart"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusGone
		message = "insufficient stock"
	case errors.Is(err, domain.ErrVariantUnavailable):
		status = http.StatusGone
		message = "variant unavailable"
	case errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
		message = "invalid quantity"
	}

	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
