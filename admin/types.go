// Package admin содержит операции панели администратора:
// модерацию товаров, управление пользователями, категориями и статистику.
package admin

import (
	"net/url"
	"strconv"
)

// DashboardStats — сводка панели администратора.
type DashboardStats struct {
	UserCount          int64   `json:"userCount"`
	ProductCount       int64   `json:"productCount"`
	OrderCount         int64   `json:"orderCount"`
	TotalAmount        float64 `json:"totalAmount"`
	PendingReviewCount int64   `json:"pendingReviewCount"`
}

// User — пользователь глазами администратора.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname,omitempty"`
	RealName   string `json:"realName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Role       int    `json:"role"`
	Status     int    `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// UserQuery — фильтры списка пользователей.
type UserQuery struct {
	Keyword    string
	Department string
	Status     *int
	Page       int
	Size       int
}

func (q UserQuery) values() url.Values {
	values := url.Values{}

	if q.Keyword != "" {
		values.Set("keyword", q.Keyword)
	}
	if q.Department != "" {
		values.Set("department", q.Department)
	}
	if q.Status != nil {
		values.Set("status", strconv.Itoa(*q.Status))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}

	return values
}

// ReviewProduct — товар в очереди модерации.
type ReviewProduct struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	CategoryID     int64    `json:"categoryId"`
	CategoryName   string   `json:"categoryName,omitempty"`
	Price          float64  `json:"price"`
	OriginalPrice  float64  `json:"originalPrice,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	TradeMethod    string   `json:"tradeMethod,omitempty"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images,omitempty"`
	Status         int      `json:"status"`
	UserID         int64    `json:"userId"`
	Username       string   `json:"username,omitempty"`
	UserDepartment string   `json:"userDepartment,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	ReviewReason   string   `json:"reviewReason,omitempty"`
}

// ProductQuery — фильтры списков товаров администратора.
type ProductQuery struct {
	Status     *int
	CategoryID int64
	Keyword    string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	Page       int
	Size       int
}

func (q ProductQuery) values() url.Values {
	values := url.Values{}

	if q.Status != nil {
		values.Set("status", strconv.Itoa(*q.Status))
	}
	if q.CategoryID > 0 {
		values.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Keyword != "" {
		values.Set("keyword", q.Keyword)
	}
	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}

	return values
}

// ReviewRequest — вердикт модерации товара.
type ReviewRequest struct {
	ProductID int64  `json:"productId"`
	Status    int    `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// Category — категория с поддеревом.
type Category struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	ParentID int64      `json:"parentId"`
	Level    int        `json:"level,omitempty"`
	Sort     int        `json:"sort,omitempty"`
	Status   int        `json:"status"`
	Children []Category `json:"children,omitempty"`
}

// CategoryForm — параметры создания или изменения категории.
type CategoryForm struct {
	Name     string `json:"name"`
	ParentID int64  `json:"parentId"`
	Sort     int    `json:"sort"`
	Status   int    `json:"status"`
}

// StatsQuery — период статистических отчётов.
type StatsQuery struct {
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

func (q StatsQuery) values() url.Values {
	values := url.Values{}

	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}

	return values
}

// UserStats — регистрация и активность по дням.
type UserStats struct {
	Date          string `json:"date"`
	RegisterCount int64  `json:"registerCount"`
	ActiveCount   int64  `json:"activeCount"`
}

// DepartmentStats — распределение пользователей по факультетам.
type DepartmentStats struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// ProductStats — публикации товаров по дням.
type ProductStats struct {
	Date         string `json:"date"`
	PublishCount int64  `json:"publishCount"`
}

// CategoryDistribution — распределение товаров по категориям.
type CategoryDistribution struct {
	CategoryName string `json:"categoryName"`
	Count        int64  `json:"count"`
}

// TradeStats — сделки по дням.
type TradeStats struct {
	Date         string  `json:"date"`
	OrderCount   int64   `json:"orderCount"`
	SuccessCount int64   `json:"successCount"`
	TotalAmount  float64 `json:"totalAmount"`
}

// TradeMethodStats — распределение по способам передачи.
type TradeMethodStats struct {
	Method     string  `json:"method"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RankItem — позиция рейтинга покупателей или продавцов.
type RankItem struct {
	UserID   int64   `json:"userId"`
	Username string  `json:"username"`
	Count    int64   `json:"count"`
	Amount   float64 `json:"amount,omitempty"`
}

// HotProduct — товар из топа по просмотрам и избранному.
type HotProduct struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ViewCount     int64   `json:"viewCount"`
	FavoriteCount int64   `json:"favoriteCount"`
}
