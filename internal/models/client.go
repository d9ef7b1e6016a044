package models

import "time"

type Client struct {
	Model
	FullName    string     `gorm:"not null" json:"full_name"`
	PhoneNumber string     `gorm:"uniqueIndex;not null" json:"phone_number"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Address     string     `json:"address"`
	Location    string     `json:"location"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	Token       *string    `json:"-"`
	TelegramID  *string    `gorm:"uniqueIndex" json:"telegram_id,omitempty"`
	OTPCode     *string    `gorm:"column:otp_code" json:"-"`
	OTPExpires  *time.Time `gorm:"column:otp_expires" json:"-"`
}
