// internal/service/store/application/service.go
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"obsidianwear/internal/pkg/logger"
	"obsidianwear/internal/service/store/domain"
	"obsidianwear/internal/service/store/domain/port"
)

const productListCacheKey = "products:all"

func productCacheKey(id string) string {
	return "product:" + id
}

// StoreService 只关注业务流程编排：
// 校验 -> 扣库存 -> 落库 -> 失效缓存 -> 通知。
// 库存正确性完全由 StockLedger 的原子扣减保证，这里不持有任何锁。
type StoreService struct {
	productRepo domain.ProductRepository
	orderRepo   domain.OrderRepository
	ledger      port.StockLedger
	cache       port.ProductCache
	notifier    port.NotificationProducer
	tracer      trace.Tracer
	cacheTTL    time.Duration
	now         func() time.Time

	// 缓存 miss 时合并并发加载，防止击穿
	loads singleflight.Group
}

func NewStoreService(
	productRepo domain.ProductRepository,
	orderRepo domain.OrderRepository,
	ledger port.StockLedger,
	cache port.ProductCache,
	notifier port.NotificationProducer,
	tracer trace.Tracer,
	cacheTTL time.Duration,
	now func() time.Time,
) *StoreService {
	if now == nil {
		now = time.Now
	}
	return &StoreService{
		productRepo: productRepo, orderRepo: orderRepo,
		ledger: ledger, cache: cache, notifier: notifier,
		tracer: tracer, cacheTTL: cacheTTL, now: now,
	}
}

// PlaceOrder 把一个通过校验的购买请求变成一条持久化订单加一次正确的库存扣减。
// 任何一行校验失败都会拒绝整单；扣减之后的任何失败都会触发 LIFO 补偿，
// 保证不存在"库存扣了但订单不存在"的状态。
func (s *StoreService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "store.PlaceOrder")
	defer span.End()

	// 1. 边界校验。通过之前不触碰任何存储。
	if err := req.Validate(); err != nil {
		orderFailuresTotal.WithLabelValues("validation").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request validation failed")
		return nil, err
	}

	// 2. 加载所有涉及的商品，缺失的行直接点名。
	products := make(map[string]*domain.Product, len(req.Items))
	for _, item := range req.Items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				orderFailuresTotal.WithLabelValues("product_not_found").Inc()
				span.RecordError(err)
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, item.ProductID)
			}
			orderFailuresTotal.WithLabelValues("persistence").Inc()
			span.RecordError(err)
			return nil, err
		}
		products[item.ProductID] = product
	}

	// 3. 变体校验、服务端重定价、库存预检。
	//    预检只为尽早给出可读的失败，步骤 4 的扣减判定才是权威。
	lineItems := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[item.ProductID]

		if !product.HasVariant(item.Size, item.Color) {
			orderFailuresTotal.WithLabelValues("variant_not_found").Inc()
			return nil, fmt.Errorf("%w: product %s has no variant %s/%s",
				domain.ErrStockEntryNotFound, product.ID, item.Size, item.Color)
		}

		// 落库价格永远来自服务端商品记录；客户端声明的价格只做一致性校验，
		// 购物车里的过期价格在这里暴露出来，而不是悄悄换一个总价。
		if item.DeclaredUnitPrice != 0 && item.DeclaredUnitPrice != product.Price {
			orderFailuresTotal.WithLabelValues("validation").Inc()
			return nil, domain.NewValidationError("unitPrice",
				fmt.Sprintf("declared price %.2f for %s does not match current price %.2f",
					item.DeclaredUnitPrice, product.ID, product.Price))
		}

		if product.TracksStock {
			available, err := s.ledger.GetAvailable(ctx, item.ProductID, item.Size, item.Color)
			if err != nil {
				orderFailuresTotal.WithLabelValues("stock_entry_not_found").Inc()
				span.RecordError(err)
				return nil, err
			}
			if available < item.Quantity {
				orderFailuresTotal.WithLabelValues("insufficient_stock").Inc()
				return nil, &domain.InsufficientStockError{
					ProductID: product.ID, ProductName: product.Name,
					Size: item.Size, Color: item.Color,
					Requested: item.Quantity, Available: available,
				}
			}
		}

		lineItems = append(lineItems, domain.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
	}

	// 4. 扣减库存。所有行校验通过后才开始任何变更。
	//    每笔成功的扣减注册一个逆向补偿，任何一行失败即回滚前面所有行。
	orderID := domain.NewOrderID(s.now())
	span.SetAttributes(attribute.String("order.id", orderID))
	comps := newCompensationStack(orderID)

	for _, item := range lineItems {
		if !products[item.ProductID].TracksStock {
			continue
		}
		item := item
		if _, err := s.ledger.Decrement(ctx, item.ProductID, item.Size, item.Color, item.Quantity); err != nil {
			comps.trigger(ctx)
			orderFailuresTotal.WithLabelValues(decrementFailureReason(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "stock decrement failed")
			return nil, err
		}
		comps.push(func(compCtx context.Context) {
			if _, err := s.ledger.Increment(compCtx, item.ProductID, item.Size, item.Color, item.Quantity); err != nil {
				// 补偿失败意味着库存永久少记，需要人工介入
				logger.Ctx(compCtx).Error().
					Str("order_id", orderID).
					Str("product_id", item.ProductID).
					Str("size", item.Size).Str("color", item.Color).
					Int("quantity", item.Quantity).
					Err(err).
					Msg("CRITICAL: stock compensation failed")
			}
		})
	}

	// 5. 落库订单。失败即触发补偿再报错。
	order, err := domain.NewOrder(orderID, req.CustomerName, req.Phone, req.Email,
		req.Address, req.Wilaya, lineItems, domain.ShippingCost(req.Wilaya), s.now())
	if err != nil {
		comps.trigger(ctx)
		orderFailuresTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		comps.trigger(ctx)
		orderFailuresTotal.WithLabelValues("persistence").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "order insert failed after decrement")
		return nil, err
	}

	// 6. 写路径同步失效缓存，下一次读必然反映本次扣减。
	s.invalidateProductKeys(ctx, products)

	// 7. 尽力而为的通知。订单是事实，邮件只是礼节；失败只记日志。
	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		logger.Ctx(ctx).Warn().Str("order_id", order.ID).Err(err).
			Msg("order confirmation notification failed")
		span.AddEvent("notification failed, ignored")
	}

	ordersPlacedTotal.Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Float64("total", order.Total).
		Int("items", len(order.Items)).
		Msg("order placed")
	return order, nil
}

// CancelOrder 恰好一次地归还订单扣减过的库存，然后把订单标记为已取消。
// 对已取消的订单返回 ErrOrderAlreadyCancelled，库存不会二次入账。
func (s *StoreService) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "store.CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 幂等护栏：CancelledAt 已置位则直接拒绝。
	if err := order.Cancel(s.now()); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 归还库存。预售/定制行没有台账条目，跳过即可。
	comps := newCompensationStack(orderID)
	for _, item := range order.Items {
		item := item
		if _, err := s.ledger.Increment(ctx, item.ProductID, item.Size, item.Color, item.Quantity); err != nil {
			if errors.Is(err, domain.ErrStockEntryNotFound) {
				continue
			}
			comps.trigger(ctx)
			span.RecordError(err)
			return nil, err
		}
		comps.push(func(compCtx context.Context) {
			if _, err := s.ledger.Decrement(compCtx, item.ProductID, item.Size, item.Color, item.Quantity); err != nil {
				logger.Ctx(compCtx).Error().
					Str("order_id", orderID).
					Str("product_id", item.ProductID).
					Err(err).
					Msg("CRITICAL: failed to undo stock return after cancel failure")
			}
		})
	}

	// 标记取消。失败则把刚归还的库存扣回去，保持无悬挂状态。
	if err := s.orderRepo.Update(ctx, order); err != nil {
		comps.trigger(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cancellation")
		return nil, err
	}

	for _, item := range order.Items {
		s.cache.Invalidate(ctx, productCacheKey(item.ProductID))
	}
	s.cache.Invalidate(ctx, productListCacheKey)

	if err := s.notifier.SendOrderCancelled(ctx, order); err != nil {
		logger.Ctx(ctx).Warn().Str("order_id", order.ID).Err(err).
			Msg("order cancellation notification failed")
	}

	ordersCancelledTotal.Inc()
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Msg("order cancelled, stock returned")
	return order, nil
}

// UpdateOrderStatus 执行管理端驱动的状态流转 (取消走 CancelOrder)。
func (s *StoreService) UpdateOrderStatus(ctx context.Context, orderID string, next domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "store.UpdateOrderStatus")
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder 返回单个订单。
func (s *StoreService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// ListOrders 返回全部订单，管理端使用。
func (s *StoreService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// GetProduct 是浏览流量的读路径：缓存命中直接返回，
// miss 时经 singleflight 回源并回填。写路径从不经过这里。
func (s *StoreService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := productCacheKey(id)
	if data, ok := s.cache.Get(ctx, key); ok {
		var product domain.Product
		if err := json.Unmarshal(data, &product); err == nil {
			cacheHitsTotal.Inc()
			return &product, nil
		}
		// 反序列化失败按 miss 处理，回源覆盖坏条目
	}
	cacheMissesTotal.Inc()

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		product, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(product); err == nil {
			s.cache.Set(ctx, key, data, s.cacheTTL)
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// ListProducts 返回商品目录，同样走读侧缓存。
func (s *StoreService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if data, ok := s.cache.Get(ctx, productListCacheKey); ok {
		var products []*domain.Product
		if err := json.Unmarshal(data, &products); err == nil {
			cacheHitsTotal.Inc()
			return products, nil
		}
	}
	cacheMissesTotal.Inc()

	v, err, _ := s.loads.Do(productListCacheKey, func() (interface{}, error) {
		products, err := s.productRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(products); err == nil {
			s.cache.Set(ctx, productListCacheKey, data, s.cacheTTL)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

// GetStock 直接从台账组装库存矩阵，绕过缓存，供管理端和诊断使用。
func (s *StoreService) GetStock(ctx context.Context, productID string) (domain.StockMatrix, error) {
	return s.ledger.Matrix(ctx, productID)
}

// Restock 管理端补货入口，与订单路径共用同一个失效契约。
func (s *StoreService) Restock(ctx context.Context, productID, size, color string, qty int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "store.Restock")
	defer span.End()

	if qty <= 0 {
		return 0, domain.NewValidationError("quantity", "must be positive")
	}
	newQty, err := s.ledger.Increment(ctx, productID, size, color, qty)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	s.cache.Invalidate(ctx, productCacheKey(productID))
	s.cache.Invalidate(ctx, productListCacheKey)
	return newQty, nil
}

// SaveProduct 管理端创建/编辑商品，保存后同步失效缓存。
func (s *StoreService) SaveProduct(ctx context.Context, product *domain.Product) error {
	ctx, span := s.tracer.Start(ctx, "store.SaveProduct")
	defer span.End()

	if product.ID == "" || product.Name == "" {
		return domain.NewValidationError("product", "id and name are required")
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		span.RecordError(err)
		return err
	}
	s.cache.Invalidate(ctx, productCacheKey(product.ID))
	s.cache.Invalidate(ctx, productListCacheKey)
	return nil
}

// DeleteProduct 软删除商品并失效缓存。
func (s *StoreService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "store.DeleteProduct")
	defer span.End()

	if err := s.productRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.cache.Invalidate(ctx, productCacheKey(id))
	s.cache.Invalidate(ctx, productListCacheKey)
	return nil
}

// decrementFailureReason 把扣减失败归类到指标标签。
// 扣减可能输掉竞争，也可能是条目缺失或存储故障，标签必须如实区分。
func decrementFailureReason(err error) string {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrStockEntryNotFound):
		return "stock_entry_not_found"
	default:
		return "persistence"
	}
}

func (s *StoreService) invalidateProductKeys(ctx context.Context, products map[string]*domain.Product) {
	for id := range products {
		s.cache.Invalidate(ctx, productCacheKey(id))
	}
	s.cache.Invalidate(ctx, productListCacheKey)
}
