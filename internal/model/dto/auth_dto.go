package dto

// RegisterRequest 注册请求，邮箱与手机号至少填写一个
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,min=6,max=30"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID       int64 `json:"user_id"`
	ClaimedGifts int   `json:"claimed_gifts"`
	Activated    bool  `json:"activated,omitempty"` // 启用了代领礼物时创建的账号
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Role           string  `json:"role"`
	InternalCredit float64 `json:"internal_credit"`
	CreatedAt      string  `json:"created_at,omitempty"`
}
