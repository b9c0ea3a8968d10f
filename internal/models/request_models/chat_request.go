package request_models

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}
