// Package catalog содержит операции каталога: категории, товары,
// публикацию и избранное.
package catalog

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"example.com/campus-market/apierr"
)

// validate — общий валидатор запросов пакета.
var validate = validator.New()

// Category — категория каталога.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parentId,omitempty"`
	Status   int    `json:"status,omitempty"`
}

// Product — товар каталога. Статус принадлежит каталогу;
// жизненный цикл заказа его читает, но не меняет.
type Product struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Price            float64  `json:"price"`
	OriginalPrice    float64  `json:"originalPrice,omitempty"`
	Images           []string `json:"images,omitempty"`
	Status           int      `json:"status,omitempty"`
	Condition        string   `json:"condition,omitempty"`
	TransactionType  int      `json:"transactionType,omitempty"`
	ViewCount        int      `json:"viewCount,omitempty"`
	FavoriteCount    int      `json:"favoriteCount,omitempty"`
	CategoryID       int64    `json:"categoryId,omitempty"`
	CategoryName     string   `json:"categoryName,omitempty"`
	SellerName       string   `json:"sellerName,omitempty"`
	SellerDepartment string   `json:"sellerDepartment,omitempty"`
	SellerAvatar     string   `json:"sellerAvatar,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	IsFavorite       bool     `json:"isFavorite,omitempty"`
}

// Sort — порядок выдачи списка товаров.
type Sort string

const (
	// SortLatest — сначала новые.
	SortLatest Sort = "latest"

	// SortPriceAsc — по возрастанию цены.
	SortPriceAsc Sort = "priceAsc"

	// SortPriceDesc — по убыванию цены.
	SortPriceDesc Sort = "priceDesc"

	// SortHot — сначала популярные.
	SortHot Sort = "hot"
)

// Query — фильтры списка товаров.
type Query struct {
	Keyword    string
	CategoryID int64
	MinPrice   *float64
	MaxPrice   *float64
	Status     *int
	Sort       Sort
	PageNum    int
	PageSize   int
}

// values переводит фильтры в query-параметры.
// Незаполненные фильтры не передаются.
func (q Query) values() url.Values {
	values := url.Values{}

	if q.Keyword != "" {
		values.Set("keyword", q.Keyword)
	}
	if q.CategoryID > 0 {
		values.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.MinPrice != nil {
		values.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		values.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Status != nil {
		values.Set("status", strconv.Itoa(*q.Status))
	}
	if q.Sort != "" {
		values.Set("sort", string(q.Sort))
	}
	if q.PageNum > 0 {
		values.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	return values
}

// PublishRequest — параметры публикации или обновления товара.
type PublishRequest struct {
	Title           string   `json:"title" validate:"required,max=100"`
	Description     string   `json:"description" validate:"required"`
	Price           float64  `json:"price" validate:"required,gt=0"`
	OriginalPrice   float64  `json:"originalPrice,omitempty" validate:"omitempty,gt=0"`
	Images          []string `json:"images" validate:"required,min=1"`
	CategoryID      int64    `json:"categoryId" validate:"required,gt=0"`
	Condition       string   `json:"condition" validate:"required"`
	TransactionType int      `json:"transactionType" validate:"gte=0,lte=2"`
}

// Validate проверяет параметры товара до отправки запроса.
func (r *PublishRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return apierr.Newf(apierr.KindValidation, "некорректные параметры товара: %v", err)
	}
	return nil
}
