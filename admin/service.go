package admin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"example.com/campus-market/api"
	"example.com/campus-market/apierr"
	"example.com/campus-market/order"
	"example.com/campus-market/pkg/logger"
	"example.com/campus-market/session"
)

// Service — операции панели администратора поверх шлюза запросов.
//
// Каждая операция сначала проверяет роль текущей сессии и отклоняет
// вызов без похода в сеть, если роль недостаточна. Сервер при этом
// остаётся авторитетным: свою проверку он делает в любом случае.
type Service struct {
	client  *api.Client
	session *session.Store
}

// NewService создаёт сервис администратора.
func NewService(client *api.Client, sess *session.Store) *Service {
	return &Service{
		client:  client,
		session: sess,
	}
}

// requireAdmin отклоняет операцию, если текущая роль — не администратор.
func (s *Service) requireAdmin() error {
	if s.session.Role() != session.RoleAdmin {
		return apierr.Authorization("операция доступна только администратору")
	}
	return nil
}

// DashboardStats возвращает сводку панели администратора.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var stats DashboardStats
	if err := s.client.Get(ctx, "/api/admin/stats/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users возвращает страницу пользователей по фильтрам.
func (s *Service) Users(ctx context.Context, q UserQuery) (*api.PageResult[User], error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var page api.PageResult[User]
	if err := s.client.Get(ctx, "/api/admin/users", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// User возвращает пользователя по ID.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var u User
	if err := s.client.Get(ctx, userPath(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserStatus блокирует или разблокирует пользователя.
func (s *Service) SetUserStatus(ctx context.Context, id int64, status int) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	body := map[string]int{"status": status}
	if err := s.client.Put(ctx, userPath(id)+"/status", body, nil); err != nil {
		return err
	}

	lg := logger.FromContext(ctx)
	lg.Info().
		Int64("user_id", id).
		Int("status", status).
		Msg("Статус пользователя изменён")
	return nil
}

// PendingProducts возвращает страницу товаров, ожидающих модерации.
func (s *Service) PendingProducts(ctx context.Context, q ProductQuery) (*api.PageResult[ReviewProduct], error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var page api.PageResult[ReviewProduct]
	if err := s.client.Get(ctx, "/api/admin/products/pending", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Products возвращает страницу всех товаров по фильтрам.
func (s *Service) Products(ctx context.Context, q ProductQuery) (*api.PageResult[ReviewProduct], error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var page api.PageResult[ReviewProduct]
	if err := s.client.Get(ctx, "/api/admin/products", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReviewProduct выносит вердикт модерации по товару.
func (s *Service) ReviewProduct(ctx context.Context, req ReviewRequest) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	if err := s.client.Post(ctx, "/api/admin/products/review", req, nil); err != nil {
		return err
	}

	lg := logger.FromContext(ctx)
	lg.Info().
		Int64("product_id", req.ProductID).
		Int("status", req.Status).
		Msg("Товар отмодерирован")
	return nil
}

// BatchReview выносит вердикт модерации по нескольким товарам разом.
func (s *Service) BatchReview(ctx context.Context, reqs []ReviewRequest) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if len(reqs) == 0 {
		return apierr.Validation("пустой список вердиктов модерации")
	}
	return s.client.Post(ctx, "/api/admin/products/review/batch", reqs, nil)
}

// DeleteProduct удаляет товар принудительно.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.client.Delete(ctx, fmt.Sprintf("/api/admin/products/%d", id), nil)
}

// Orders возвращает страницу всех заказов площадки.
func (s *Service) Orders(ctx context.Context, page, size int) (*api.PageResult[order.Order], error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}

	var result api.PageResult[order.Order]
	if err := s.client.Get(ctx, "/api/admin/orders", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Order возвращает любой заказ площадки по ID.
func (s *Service) Order(ctx context.Context, id int64) (*order.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var o order.Order
	if err := s.client.Get(ctx, fmt.Sprintf("/api/admin/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CategoryTree возвращает дерево категорий.
func (s *Service) CategoryTree(ctx context.Context) ([]Category, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var tree []Category
	if err := s.client.Get(ctx, "/api/admin/categories/tree", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Categories возвращает плоский список категорий.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var categories []Category
	if err := s.client.Get(ctx, "/api/admin/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory создаёт категорию.
func (s *Service) CreateCategory(ctx context.Context, form CategoryForm) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.client.Post(ctx, "/api/admin/categories", form, nil)
}

// UpdateCategory изменяет категорию.
func (s *Service) UpdateCategory(ctx context.Context, id int64, form CategoryForm) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.client.Put(ctx, categoryPath(id), form, nil)
}

// DeleteCategory удаляет категорию.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.client.Delete(ctx, categoryPath(id), nil)
}

// SetCategoryStatus включает или выключает категорию.
func (s *Service) SetCategoryStatus(ctx context.Context, id int64, status int) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	body := map[string]int{"status": status}
	return s.client.Put(ctx, categoryPath(id)+"/status", body, nil)
}

// UserStats возвращает регистрацию и активность по дням.
func (s *Service) UserStats(ctx context.Context, q StatsQuery) ([]UserStats, error) {
	return statsList[UserStats](ctx, s, "/api/admin/stats/users", q.values())
}

// DepartmentStats возвращает распределение пользователей по факультетам.
func (s *Service) DepartmentStats(ctx context.Context) ([]DepartmentStats, error) {
	return statsList[DepartmentStats](ctx, s, "/api/admin/stats/departments", nil)
}

// ProductStats возвращает публикации товаров по дням.
func (s *Service) ProductStats(ctx context.Context, q StatsQuery) ([]ProductStats, error) {
	return statsList[ProductStats](ctx, s, "/api/admin/stats/products", q.values())
}

// CategoryDistribution возвращает распределение товаров по категориям.
func (s *Service) CategoryDistribution(ctx context.Context) ([]CategoryDistribution, error) {
	return statsList[CategoryDistribution](ctx, s, "/api/admin/stats/categories", nil)
}

// TradeStats возвращает сделки по дням.
func (s *Service) TradeStats(ctx context.Context, q StatsQuery) ([]TradeStats, error) {
	return statsList[TradeStats](ctx, s, "/api/admin/stats/trades", q.values())
}

// TradeMethodStats возвращает распределение по способам передачи.
func (s *Service) TradeMethodStats(ctx context.Context, q StatsQuery) ([]TradeMethodStats, error) {
	return statsList[TradeMethodStats](ctx, s, "/api/admin/stats/trade-methods", q.values())
}

// BuyerRank возвращает рейтинг покупателей за период.
func (s *Service) BuyerRank(ctx context.Context, q StatsQuery) ([]RankItem, error) {
	return statsList[RankItem](ctx, s, "/api/admin/stats/rank/buyers", q.values())
}

// SellerRank возвращает рейтинг продавцов за период.
func (s *Service) SellerRank(ctx context.Context, q StatsQuery) ([]RankItem, error) {
	return statsList[RankItem](ctx, s, "/api/admin/stats/rank/sellers", q.values())
}

// HotProducts возвращает топ товаров по просмотрам и избранному.
func (s *Service) HotProducts(ctx context.Context, q StatsQuery) ([]HotProduct, error) {
	return statsList[HotProduct](ctx, s, "/api/admin/stats/hot-products", q.values())
}

// statsList — общий каркас статистических отчётов: проверка роли и
// запрос списка по заданному пути.
func statsList[T any](ctx context.Context, s *Service, path string, query url.Values) ([]T, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var list []T
	if err := s.client.Get(ctx, path, query, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// userPath возвращает путь пользователя по ID.
func userPath(id int64) string {
	return fmt.Sprintf("/api/admin/users/%d", id)
}

// categoryPath возвращает путь категории по ID.
func categoryPath(id int64) string {
	return fmt.Sprintf("/api/admin/categories/%d", id)
}
