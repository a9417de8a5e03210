package common

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

type SuccessResponse[T any] struct {
	Data T `json:"data"`
}

func NewSuccessResponse[T any](data T) *SuccessResponse[T] {
	return &SuccessResponse[T]{
		Data: data,
	}
}

type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// SearchResponse is one page of a list. Data is never null.
type SearchResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewSearchResponse[T any](data []T, total int64, limit, offset int) *SearchResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &SearchResponse[T]{
		Data: data,
		Pagination: Pagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}
}
