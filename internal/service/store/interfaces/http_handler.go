// internal/service/store/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"obsidianwear/internal/pkg/logger"
	"obsidianwear/internal/service/store/application"
	"obsidianwear/internal/service/store/domain"
)

const serviceName = "store-service"

// StoreHandler 封装了 store 服务的 HTTP 处理器。
// 它只做两件事：把请求翻译成应用服务调用，把错误分类翻译成状态码。
type StoreHandler struct {
	service *application.StoreService
}

// NewStoreHandler 创建一个新的 HTTP 处理器实例
func NewStoreHandler(service *application.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *StoreHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/products", h.listProductsHandler)
	mux.HandleFunc("/products/get", h.getProductHandler)
	mux.HandleFunc("/products/stock", h.getStockHandler)
	mux.HandleFunc("/products/save", h.saveProductHandler)
	mux.HandleFunc("/products/delete", h.deleteProductHandler)
	mux.HandleFunc("/products/restock", h.restockHandler)

	mux.HandleFunc("/orders", h.listOrdersHandler)
	mux.HandleFunc("/orders/get", h.getOrderHandler)
	mux.HandleFunc("/orders/place", h.placeOrderHandler)
	mux.HandleFunc("/orders/cancel", h.cancelOrderHandler)
	mux.HandleFunc("/orders/status", h.updateStatusHandler)
}

// extract 恢复上游传来的追踪上下文并开启本 handler 的 Span。
func (h *StoreHandler) extract(r *http.Request, spanName string) (*http.Request, func()) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, spanName)
	return r.WithContext(ctx), func() { span.End() }
}

func (h *StoreHandler) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.PlaceOrder")
	defer end()

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, application.PlaceOrderResponse{
		OrderID: order.ID,
		Status:  order.Status,
		Total:   order.Total,
		Message: "Your order has been placed. We will call you to confirm.",
	})
}

func (h *StoreHandler) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.CancelOrder")
	defer end()

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeError(w, r, domain.NewValidationError("orderId", "required"))
		return
	}

	order, err := h.service.CancelOrder(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *StoreHandler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.UpdateOrderStatus")
	defer end()

	var req struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.Status == "" {
		writeError(w, r, domain.NewValidationError("body", "orderId and status are required"))
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), req.OrderID, domain.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *StoreHandler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	r, end := h.extract(r, "http.ListOrders")
	defer end()

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *StoreHandler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	r, end := h.extract(r, "http.GetOrder")
	defer end()

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, domain.NewValidationError("id", "required"))
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *StoreHandler) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	r, end := h.extract(r, "http.ListProducts")
	defer end()

	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *StoreHandler) getProductHandler(w http.ResponseWriter, r *http.Request) {
	r, end := h.extract(r, "http.GetProduct")
	defer end()

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, domain.NewValidationError("id", "required"))
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *StoreHandler) getStockHandler(w http.ResponseWriter, r *http.Request) {
	r, end := h.extract(r, "http.GetStock")
	defer end()

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, domain.NewValidationError("id", "required"))
		return
	}
	matrix, err := h.service.GetStock(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

func (h *StoreHandler) saveProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.SaveProduct")
	defer end()

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, r, domain.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := h.service.SaveProduct(r.Context(), &product); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": product.ID})
}

func (h *StoreHandler) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.DeleteProduct")
	defer end()

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, r, domain.NewValidationError("id", "required"))
		return
	}
	if err := h.service.DeleteProduct(r.Context(), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) restockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, end := h.extract(r, "http.Restock")
	defer end()

	var req struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, r, domain.NewValidationError("body", "productId, size, color and quantity are required"))
		return
	}
	newQty, err := h.service.Restock(r.Context(), req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"quantity": newQty})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody 是统一的错误响应结构。
// InsufficientStock 附带足够的细节让客户端调整购物车。
type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// writeError 把领域错误分类映射到 HTTP 状态码：
// 校验 400，未找到 404，库存不足/状态冲突 409，其余 500。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Message: err.Error()}
	status := http.StatusInternalServerError
	body.Kind = "internal"

	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		status = http.StatusConflict
		body.Kind = "insufficient_stock"
		body.ProductID = stockErr.ProductID
		body.Size = stockErr.Size
		body.Color = stockErr.Color
		body.Requested = stockErr.Requested
		body.Available = stockErr.Available
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		body.Kind = "validation"
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrStockEntryNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		body.Kind = "not_found"
	case errors.Is(err, domain.ErrOrderAlreadyCancelled),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateOrder):
		status = http.StatusConflict
		body.Kind = "conflict"
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("unhandled error in http layer")
	}

	writeJSON(w, status, body)
}
