package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"example.com/campus-market/api"
	"example.com/campus-market/pkg/logger"
)

// Service — операции каталога поверх шлюза запросов.
// Состояния товара принадлежат серверу, сервис их не интерпретирует.
type Service struct {
	client *api.Client
}

// NewService создаёт сервис каталога.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Categories возвращает список категорий каталога.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.client.Get(ctx, "/api/category/list", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Products возвращает страницу товаров по фильтрам.
func (s *Service) Products(ctx context.Context, q Query) (*api.PageResult[Product], error) {
	var page api.PageResult[Product]
	if err := s.client.Get(ctx, "/api/product/list", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Product возвращает товар по ID.
func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := s.client.Get(ctx, productPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Publish публикует товар и возвращает его ID.
// Сервер отвечает числом в поле data.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var id int64
	if err := s.client.Post(ctx, "/api/product", req, &id); err != nil {
		return 0, err
	}

	lg := logger.FromContext(ctx)
	lg.Info().
		Int64("product_id", id).
		Str("title", req.Title).
		Msg("Товар опубликован")
	return id, nil
}

// Update обновляет существующий товар.
func (s *Service) Update(ctx context.Context, id int64, req PublishRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.client.Put(ctx, productPath(id), req, nil)
}

// Delete удаляет товар.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, productPath(id), nil)
}

// SetStatus переводит товар в новый статус (снятие с продажи и обратно).
func (s *Service) SetStatus(ctx context.Context, id int64, status int) error {
	query := url.Values{}
	query.Set("status", strconv.Itoa(status))
	return s.client.Put(ctx, productPath(id)+"/status?"+query.Encode(), nil, nil)
}

// MyProducts возвращает страницу товаров текущего пользователя.
func (s *Service) MyProducts(ctx context.Context, pageNum, pageSize int, status *int) (*api.PageResult[Product], error) {
	query := url.Values{}
	if pageNum > 0 {
		query.Set("pageNum", strconv.Itoa(pageNum))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	if status != nil {
		query.Set("status", strconv.Itoa(*status))
	}

	var page api.PageResult[Product]
	if err := s.client.Get(ctx, "/api/product/my", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Favorite добавляет товар в избранное.
func (s *Service) Favorite(ctx context.Context, id int64) error {
	return s.client.Post(ctx, productPath(id)+"/favorite", nil, nil)
}

// Unfavorite убирает товар из избранного.
func (s *Service) Unfavorite(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, productPath(id)+"/favorite", nil)
}

// Favorites возвращает страницу избранных товаров.
func (s *Service) Favorites(ctx context.Context, pageNum, pageSize int) (*api.PageResult[Product], error) {
	query := url.Values{}
	if pageNum > 0 {
		query.Set("pageNum", strconv.Itoa(pageNum))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var page api.PageResult[Product]
	if err := s.client.Get(ctx, "/api/product/favorite", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// productPath возвращает путь товара по ID.
func productPath(id int64) string {
	return fmt.Sprintf("/api/product/%d", id)
}
