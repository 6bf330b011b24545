package core

// Request types

type IngestRequest struct {
	PGN      string `json:"pgn" validate:"required,max=10485760"`
	Account  string `json:"account,omitempty" validate:"omitempty,max=100"`
	Platform string `json:"platform,omitempty" validate:"omitempty,oneof=lichess chesscom"`
}

type QueryRequest struct {
	Query     string `json:"query" validate:"required,max=10000"`
	PageNo    int    `json:"page_no,omitempty" validate:"omitempty,min=1,max=1000000"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Offset    *int   `json:"offset,omitempty" validate:"omitempty,min=0"`
	Reference string `json:"reference_player,omitempty" validate:"omitempty,max=100"`
	AccountID *int64 `json:"account_id,omitempty" validate:"omitempty,min=1"`
	Platform  string `json:"platform,omitempty" validate:"omitempty,oneof=lichess chesscom"`
}

type AccountRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Platform string `json:"platform" validate:"required,oneof=lichess chesscom"`
}

// Response types

type Pagination struct {
	PageNo     int  `json:"page_no"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"` // "ok", "degraded", or "disabled"
	Games   int64  `json:"games"`
	Workers int    `json:"workers"`
}
