package model

import "github.com/google/uuid"

const RoleAdmin = "admin"

type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
