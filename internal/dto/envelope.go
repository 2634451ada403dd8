package dto

// Envelope is the outer shape of every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Total   *int64 `json:"total,omitempty"`
	Page    *int   `json:"page,omitempty"`
	Pages   *int   `json:"pages,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func IntPtr(value int) *int {
	return &value
}
