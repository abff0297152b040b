package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/campus-market/apierr"
)

// ============================================================
// Тесты переходов статусов заказа
// ============================================================

func TestOrder_StatusGuards(t *testing.T) {
	tests := []struct {
		name              string
		status            Status
		hasReviewed       bool
		canCancel         bool
		canDeliver        bool
		canConfirmReceive bool
		canReview         bool
		terminal          bool
	}{
		{
			name:       "Ожидает отправки — можно отменить и отправить",
			status:     StatusPendingDelivery,
			canCancel:  true,
			canDeliver: true,
		},
		{
			name:              "Ожидает получения — можно только подтвердить",
			status:            StatusPendingReceipt,
			canConfirmReceive: true,
		},
		{
			name:      "Завершён — можно только оценить",
			status:    StatusCompleted,
			canReview: true,
			terminal:  true,
		},
		{
			name:        "Завершён и оценён — действий не осталось",
			status:      StatusCompleted,
			hasReviewed: true,
			terminal:    true,
		},
		{
			name:     "Отменён — действий не осталось",
			status:   StatusCancelled,
			terminal: true,
		},
		{
			name:   "Ожидает оплаты — переходы клиенту недоступны",
			status: StatusPendingPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status, HasReviewed: tt.hasReviewed}

			assert.Equal(t, tt.canCancel, o.CanCancel())
			assert.Equal(t, tt.canDeliver, o.CanDeliver())
			assert.Equal(t, tt.canConfirmReceive, o.CanConfirmReceive())
			assert.Equal(t, tt.canReview, o.CanReview())
			assert.Equal(t, tt.terminal, o.Terminal())
		})
	}
}

func TestOrder_Roles(t *testing.T) {
	o := &Order{BuyerID: 10, SellerID: 20}

	assert.True(t, o.IsBuyer(10))
	assert.False(t, o.IsBuyer(20))
	assert.True(t, o.IsSeller(20))
	assert.False(t, o.IsSeller(10))
}

// ============================================================
// Тесты валидации запросов
// ============================================================

func TestCreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{
			name: "Успех: личная встреча без адреса",
			req: CreateRequest{
				ProductID:       1,
				Quantity:        1,
				TransactionType: TransactionMeet,
			},
		},
		{
			name: "Успех: почтовая отправка с полным адресом",
			req: CreateRequest{
				ProductID:       1,
				Quantity:        2,
				TransactionType: TransactionShip,
				ReceiverName:    "Иван",
				ReceiverPhone:   "79990001122",
				ReceiverAddress: "Общежитие 5, к. 312",
			},
		},
		{
			name: "Ошибка: почтовая отправка без адреса",
			req: CreateRequest{
				ProductID:       1,
				Quantity:        1,
				TransactionType: TransactionShip,
				ReceiverName:    "Иван",
				ReceiverPhone:   "79990001122",
			},
			wantErr: true,
		},
		{
			name: "Ошибка: нулевой товар",
			req: CreateRequest{
				Quantity:        1,
				TransactionType: TransactionMeet,
			},
			wantErr: true,
		},
		{
			name: "Ошибка: нулевое количество",
			req: CreateRequest{
				ProductID:       1,
				TransactionType: TransactionMeet,
			},
			wantErr: true,
		},
		{
			name: "Ошибка: неизвестный способ передачи",
			req: CreateRequest{
				ProductID:       1,
				Quantity:        1,
				TransactionType: TransactionType(7),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierr.IsKind(err, apierr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReviewRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ReviewRequest
		wantErr bool
	}{
		{
			name: "Успех: оценка с комментарием",
			req:  ReviewRequest{OrderID: 1, Rating: 5, Comment: "Отличный продавец"},
		},
		{
			name:    "Ошибка: оценка вне диапазона",
			req:     ReviewRequest{OrderID: 1, Rating: 6},
			wantErr: true,
		},
		{
			name:    "Ошибка: нулевая оценка",
			req:     ReviewRequest{OrderID: 1},
			wantErr: true,
		},
		{
			name:    "Ошибка: нет заказа",
			req:     ReviewRequest{Rating: 4},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierr.IsKind(err, apierr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuery_Values(t *testing.T) {
	status := StatusPendingReceipt
	q := Query{
		ViewType:  ViewBuyer,
		Status:    &status,
		OrderNo:   "ORD123",
		StartDate: "2025-01-01",
		PageNum:   2,
		PageSize:  10,
	}

	values := q.values()

	assert.Equal(t, "buyer", values.Get("viewType"))
	assert.Equal(t, "2", values.Get("status"))
	assert.Equal(t, "ORD123", values.Get("orderNo"))
	assert.Equal(t, "2025-01-01", values.Get("startDate"))
	assert.Equal(t, "2", values.Get("pageNum"))
	assert.Equal(t, "10", values.Get("pageSize"))

	// незаполненные фильтры не передаются
	assert.False(t, values.Has("endDate"))

	assert.Empty(t, Query{}.values())
}
