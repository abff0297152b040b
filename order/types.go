// Package order содержит жизненный цикл заказа: создание, доставку,
// подтверждение получения, отмену и оценку сделки.
package order

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"example.com/campus-market/apierr"
)

// validate — общий валидатор запросов пакета.
var validate = validator.New()

// TransactionType — способ передачи товара.
type TransactionType int

const (
	// TransactionMeet — личная встреча на кампусе.
	TransactionMeet TransactionType = 0

	// TransactionShip — отправка почтой; требует адреса получателя.
	TransactionShip TransactionType = 1

	// TransactionAny — продавец согласен на оба способа.
	TransactionAny TransactionType = 2
)

// Status — статус заказа. Значения принадлежат серверу;
// клиент знает только переходы, которые ими управляют.
type Status int

const (
	// StatusPendingPayment зарезервирован сервером и в текущем
	// потоке не встречается: заказ создаётся сразу ожидающим отправки.
	StatusPendingPayment Status = 0

	// StatusPendingDelivery — заказ создан, ожидает действия продавца.
	StatusPendingDelivery Status = 1

	// StatusPendingReceipt — товар отправлен, ожидает подтверждения покупателя.
	StatusPendingReceipt Status = 2

	// StatusCompleted — сделка завершена. Терминальный статус.
	StatusCompleted Status = 3

	// StatusCancelled — заказ отменён. Терминальный статус.
	StatusCancelled Status = 4
)

// String возвращает человекочитаемое название статуса.
func (s Status) String() string {
	switch s {
	case StatusPendingPayment:
		return "ожидает оплаты"
	case StatusPendingDelivery:
		return "ожидает отправки"
	case StatusPendingReceipt:
		return "ожидает получения"
	case StatusCompleted:
		return "завершён"
	case StatusCancelled:
		return "отменён"
	default:
		return "неизвестный статус"
	}
}

// TimelineEntry — запись аудита заказа.
// Последовательность назначается сервером и только дописывается;
// клиент никогда не переупорядочивает и не дедуплицирует записи.
type TimelineEntry struct {
	Time    string `json:"time"`
	Content string `json:"content"`
}

// Address — адрес получателя для почтовой отправки.
type Address struct {
	ReceiverName    string `json:"receiverName"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverAddress string `json:"receiverAddress"`
}

// Order — заказ глазами клиента.
// Поля товара — снимок на момент создания заказа: позднейшие правки
// товара не меняют историю сделок.
type Order struct {
	ID              int64           `json:"id"`
	OrderNo         string          `json:"orderNo"`
	ProductID       int64           `json:"productId"`
	ProductTitle    string          `json:"productTitle"`
	ProductImage    string          `json:"productImage,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	Condition       string          `json:"condition,omitempty"`
	BuyerID         int64           `json:"buyerId"`
	BuyerName       string          `json:"buyerName"`
	SellerID        int64           `json:"sellerId"`
	SellerName      string          `json:"sellerName"`
	Quantity        int             `json:"quantity"`
	TotalAmount     float64         `json:"totalAmount"`
	TransactionType TransactionType `json:"transactionType"`
	Status          Status          `json:"status"`
	Address         *Address        `json:"address,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	HasReviewed     bool            `json:"hasReviewed,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	Timeline        []TimelineEntry `json:"timeline,omitempty"`
}

// CanCancel проверяет, можно ли отменить заказ.
// Отменить можно только заказ, ожидающий отправки.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPendingDelivery
}

// CanDeliver проверяет, можно ли отправить товар или подтвердить встречу.
func (o *Order) CanDeliver() bool {
	return o.Status == StatusPendingDelivery
}

// CanConfirmReceive проверяет, можно ли подтвердить получение.
func (o *Order) CanConfirmReceive() bool {
	return o.Status == StatusPendingReceipt
}

// CanReview проверяет, можно ли оценить сделку.
// Оценка доступна один раз и только по завершённому заказу.
func (o *Order) CanReview() bool {
	return o.Status == StatusCompleted && !o.HasReviewed
}

// Terminal возвращает true для терминальных статусов.
// Заказы не удаляются — только переводятся в терминальный статус.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// IsBuyer проверяет, что пользователь — покупатель заказа.
func (o *Order) IsBuyer(userID int64) bool {
	return o.BuyerID == userID
}

// IsSeller проверяет, что пользователь — продавец заказа.
func (o *Order) IsSeller(userID int64) bool {
	return o.SellerID == userID
}

// CreateRequest — параметры создания заказа.
type CreateRequest struct {
	ProductID       int64           `json:"productId" validate:"required,gt=0"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	TransactionType TransactionType `json:"transactionType" validate:"gte=0,lte=2"`
	ReceiverName    string          `json:"receiverName,omitempty"`
	ReceiverPhone   string          `json:"receiverPhone,omitempty"`
	ReceiverAddress string          `json:"receiverAddress,omitempty"`
	Remark          string          `json:"remark,omitempty"`
}

// Validate проверяет параметры до отправки запроса.
// Почтовая отправка без адресных полей — ошибка валидации,
// запрос в сеть не уходит.
func (r *CreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return apierr.Newf(apierr.KindValidation, "некорректные параметры заказа: %v", err)
	}

	if r.TransactionType == TransactionShip {
		if r.ReceiverName == "" || r.ReceiverPhone == "" || r.ReceiverAddress == "" {
			return apierr.Validation("почтовая отправка требует имя, телефон и адрес получателя")
		}
	}

	return nil
}

// ViewType — ракурс списка заказов: как покупатель или как продавец.
type ViewType string

const (
	// ViewBuyer — заказы, где пользователь покупатель.
	ViewBuyer ViewType = "buyer"

	// ViewSeller — заказы, где пользователь продавец.
	ViewSeller ViewType = "seller"
)

// Query — фильтры списка заказов.
type Query struct {
	ViewType  ViewType
	Status    *Status
	OrderNo   string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	PageNum   int
	PageSize  int
}

// values переводит фильтры в query-параметры.
// Незаполненные фильтры не передаются.
func (q Query) values() url.Values {
	values := url.Values{}

	if q.ViewType != "" {
		values.Set("viewType", string(q.ViewType))
	}
	if q.Status != nil {
		values.Set("status", strconv.Itoa(int(*q.Status)))
	}
	if q.OrderNo != "" {
		values.Set("orderNo", q.OrderNo)
	}
	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}
	if q.PageNum > 0 {
		values.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	return values
}

// ReviewRequest — параметры оценки завершённой сделки.
type ReviewRequest struct {
	OrderID int64  `json:"orderId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=500"`
}

// Validate проверяет параметры оценки до отправки запроса.
func (r *ReviewRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return apierr.Newf(apierr.KindValidation, "некорректные параметры оценки: %v", err)
	}
	return nil
}

// Review — оценка сделки.
type Review struct {
	ID           int64  `json:"id"`
	OrderID      int64  `json:"orderId"`
	ReviewerID   int64  `json:"reviewerId"`
	ReviewerName string `json:"reviewerName,omitempty"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"createdAt"`
}
