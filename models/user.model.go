package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string     `json:"first_name" gorm:"default:''"`
	LastName            string     `json:"last_name" gorm:"default:''"`
	Email               string     `json:"email" gorm:"unique;not null"`
	Mobile              string     `json:"mobile" gorm:"default:''"`
	Role                string     `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	Password            string     `json:"-" gorm:"not null"`
	IsEmailVerified     bool       `json:"is_email_verified" gorm:"default:false"`
	LastLogin           *time.Time `json:"last_login"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	IsBlocked           bool       `json:"-" gorm:"default:false"`
	IsDeleted           bool       `json:"-" gorm:"default:false"`
}
