package transport

type RegisterRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type BoardRequest struct {
	Title string `json:"title"`
}

type MemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ColumnCreateRequest struct {
	Title string `json:"title"`
}

type ColumnUpdateRequest struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

type TaskCreateRequest struct {
	ColumnID    string  `json:"column_id"`
	BoardID     string  `json:"board_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	ColumnID    *string `json:"column_id"`
	Position    *int    `json:"position"`
}
