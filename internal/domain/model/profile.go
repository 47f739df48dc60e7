package model

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// 登録時に1回だけ作られるプロフィール。IDは認証アカウントと同じ。
type Profile struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"type:varchar(255);not null" json:"email"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`

	//出品者のみ
	CompanyName *string `gorm:"type:varchar(255)" json:"company_name,omitempty"`
	LogoURL     string  `gorm:"type:text" json:"logo_url,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
