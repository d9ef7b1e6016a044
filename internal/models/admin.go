package models

import (
	"cargodesk/internal/access"

	"gorm.io/datatypes"
)

type Admin struct {
	Model
	FullName    string                            `gorm:"not null" json:"full_name"`
	UserName    string                            `gorm:"uniqueIndex;not null" json:"user_name"`
	Email       string                            `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string                            `json:"phone_number"`
	Password    string                            `gorm:"not null" json:"-"`
	Role        access.Role                       `gorm:"type:varchar(16);not null" json:"role"`
	Creator     bool                              `gorm:"column:is_creator;not null" json:"is_creator"`
	IsActive    bool                              `gorm:"not null" json:"is_active"`
	Permissions datatypes.JSONType[access.Matrix] `json:"permissions"`
	Token       *string                           `json:"-"`
	TgLink      string                            `json:"tg_link"`
	Description string                            `json:"description"`
}

func (a *Admin) IsCreator() bool { return a.Creator }
func (a *Admin) RoleName() access.Role { return a.Role }
func (a *Admin) Grants() access.Matrix { return a.Permissions.Data() }

func (a *Admin) SetGrants(m access.Matrix) {
	a.Permissions = datatypes.NewJSONType(m)
}

var _ access.Principal = (*Admin)(nil)
