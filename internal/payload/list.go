package payload

type (
	// ListResp wraps list endpoints so the row count travels with the rows.
	ListResp[T any] struct {
		Rows  []T   `json:"rows"`
		Count int64 `json:"count"`
	}
)

func NewListResp[T any](rows []T) ListResp[T] {
	return ListResp[T]{Rows: rows, Count: int64(len(rows))}
}
