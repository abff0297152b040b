package order

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"example.com/campus-market/api"
	"example.com/campus-market/apierr"
	"example.com/campus-market/pkg/logger"
	"example.com/campus-market/session"
)

// Service — операции жизненного цикла заказа поверх шлюза запросов.
//
// Мутирующие операции сначала читают заказ и отклоняют недопустимые
// переходы локально (роль вызывающего, текущий статус), чтобы не гонять
// заведомо обречённые запросы. Авторитетен при этом всегда сервер:
// его отказ конкурентному изменению приходит как прикладная ошибка.
type Service struct {
	client  *api.Client
	session *session.Store
}

// NewService создаёт сервис заказов.
func NewService(client *api.Client, sess *session.Store) *Service {
	return &Service{
		client:  client,
		session: sess,
	}
}

// Create создаёт заказ на существующий продающийся товар.
// Покупатель — текущий пользователь. Возвращает созданный заказ
// в статусе "ожидает отправки".
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	log := logger.FromContext(ctx)

	if err := req.Validate(); err != nil {
		log.Warn().Err(err).Int64("product_id", req.ProductID).Msg("Ошибка валидации заказа")
		return nil, err
	}

	var created Order
	if err := s.client.Post(ctx, "/api/order", req, &created); err != nil {
		return nil, err
	}

	log.Info().
		Int64("order_id", created.ID).
		Str("order_no", created.OrderNo).
		Int64("product_id", req.ProductID).
		Msg("Заказ создан")

	return &created, nil
}

// List возвращает страницу заказов текущего пользователя
// в заданном ракурсе (покупатель или продавец).
func (s *Service) List(ctx context.Context, q Query) (*api.PageResult[Order], error) {
	var page api.PageResult[Order]
	if err := s.client.Get(ctx, "/api/order/list", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get возвращает заказ по ID.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := s.client.Get(ctx, orderPath(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel отменяет заказ. Доступно только покупателю
// и только пока заказ ожидает отправки.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireBuyer(o, "отменить заказ может только покупатель"); err != nil {
		return err
	}

	if !o.CanCancel() {
		log.Warn().
			Int64("order_id", id).
			Str("status", o.Status.String()).
			Msg("Попытка отменить заказ в неподходящем статусе")
		return apierr.Newf(apierr.KindState, "заказ в статусе %q нельзя отменить", o.Status)
	}

	if err := s.client.Delete(ctx, orderPath(id), nil); err != nil {
		return err
	}

	log.Info().Int64("order_id", id).Str("order_no", o.OrderNo).Msg("Заказ отменён")
	return nil
}

// Deliver отмечает отправку товара или подтверждает личную встречу.
// Доступно только продавцу; заказ переходит в "ожидает получения".
func (s *Service) Deliver(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireSeller(o, "отправить товар может только продавец"); err != nil {
		return err
	}

	if !o.CanDeliver() {
		return apierr.Newf(apierr.KindState, "заказ в статусе %q нельзя отправить", o.Status)
	}

	if err := s.client.Put(ctx, orderPath(id)+"/deliver", nil, nil); err != nil {
		return err
	}

	log.Info().Int64("order_id", id).Str("order_no", o.OrderNo).Msg("Товар отправлен")
	return nil
}

// ConfirmReceive подтверждает получение товара.
// Доступно только покупателю; заказ переходит в "завершён".
func (s *Service) ConfirmReceive(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireBuyer(o, "подтвердить получение может только покупатель"); err != nil {
		return err
	}

	if !o.CanConfirmReceive() {
		return apierr.Newf(apierr.KindState, "заказ в статусе %q нельзя подтвердить", o.Status)
	}

	if err := s.client.Put(ctx, orderPath(id)+"/confirm", nil, nil); err != nil {
		return err
	}

	log.Info().Int64("order_id", id).Str("order_no", o.OrderNo).Msg("Получение подтверждено")
	return nil
}

// Review оценивает завершённую сделку. Оценка однократна:
// повторная попытка — конфликт, состояние заказа не меняется.
func (s *Service) Review(ctx context.Context, req ReviewRequest) error {
	log := logger.FromContext(ctx)

	if err := req.Validate(); err != nil {
		return err
	}

	o, err := s.Get(ctx, req.OrderID)
	if err != nil {
		return err
	}

	if err := s.requireBuyer(o, "оценить сделку может только покупатель"); err != nil {
		return err
	}

	if o.HasReviewed {
		return apierr.Conflict("заказ уже оценён")
	}
	if !o.CanReview() {
		return apierr.Newf(apierr.KindState, "оценить можно только завершённый заказ, текущий статус %q", o.Status)
	}

	if err := s.client.Post(ctx, "/api/review", req, nil); err != nil {
		return err
	}

	log.Info().
		Int64("order_id", req.OrderID).
		Int("rating", req.Rating).
		Msg("Сделка оценена")
	return nil
}

// ReviewsByOrder возвращает оценки по заказу.
func (s *Service) ReviewsByOrder(ctx context.Context, orderID int64) ([]Review, error) {
	var reviews []Review
	path := "/api/review/by-order/" + strconv.FormatInt(orderID, 10)
	if err := s.client.Get(ctx, path, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// MyReviews возвращает страницу оценок текущего пользователя.
func (s *Service) MyReviews(ctx context.Context, pageNum, pageSize int) (*api.PageResult[Review], error) {
	query := url.Values{}
	if pageNum > 0 {
		query.Set("pageNum", strconv.Itoa(pageNum))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var page api.PageResult[Review]
	if err := s.client.Get(ctx, "/api/review/by-user", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// requireBuyer отклоняет операцию, если текущий пользователь —
// не покупатель заказа. Без сессии проверка пропускается:
// неаутентифицированный запрос отклонит сервер.
func (s *Service) requireBuyer(o *Order, message string) error {
	user := s.session.User()
	if user != nil && !o.IsBuyer(user.ID) {
		return apierr.Authorization(message)
	}
	return nil
}

// requireSeller отклоняет операцию, если текущий пользователь —
// не продавец заказа.
func (s *Service) requireSeller(o *Order, message string) error {
	user := s.session.User()
	if user != nil && !o.IsSeller(user.ID) {
		return apierr.Authorization(message)
	}
	return nil
}

// orderPath возвращает путь заказа по ID.
func orderPath(id int64) string {
	return fmt.Sprintf("/api/order/%d", id)
}
