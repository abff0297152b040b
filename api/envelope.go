package api

import "encoding/json"

// Коды успеха конверта. Сервер исторически отвечает и 200, и 0 —
// это закреплённая несогласованность его собственного контракта,
// клиент обязан принимать оба значения.
const (
	codeOK     = 200
	codeOKZero = 0

	// codeUnauthorized в конверте равносилен HTTP 401: сессия истекла.
	codeUnauthorized = 401
)

// Envelope — единый конверт всех ответов сервера.
// Полезная нагрузка отдаётся вызывающему коду только распакованной.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"traceId,omitempty"`
}

// ok возвращает true для обоих кодов успеха.
func (e *Envelope) ok() bool {
	return e.Code == codeOK || e.Code == codeOKZero
}

// PageResult — страница списка с общим количеством записей.
type PageResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	PageNum  int   `json:"pageNum"`
	PageSize int   `json:"pageSize"`
}
