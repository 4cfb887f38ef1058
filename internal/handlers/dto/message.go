package dto

// SendMessageRequest — тело отправки сообщения
type SendMessageRequest struct {
	Content string   `json:"content" binding:"required"`
	Uploads []string `json:"uploads"`
}

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

type CreateUserRoomRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
