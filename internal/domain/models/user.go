package models

// User is the authenticated account. The role is display only.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	RoleID    int64   `json:"role_id"`
	RoleName  string  `json:"role_name"`
	IsActive  bool    `json:"is_active"`
	LastLogin *string `json:"last_login"`
	CreatedAt string  `json:"created_at"`
}

// Role groups permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a resource/action pair.
type Permission struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// LoginRequest is the /auth/login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by /auth/login.
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// RegisterRequest is the /auth/register payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=100"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

// RegisterResponse is returned by /auth/register.
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// RefreshResponse is returned by /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
