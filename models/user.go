package models

import (
	"errors"
	"strings"
	"videoserver/db"
	"videoserver/utils"
)

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

const saltSize = 60

type User struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	CreatedAt int64  `json:"-"`
	UpdatedAt int64  `json:"-"`
	Email     string `gorm:"type:varchar(150);index:uniq_email,unique" json:"email"`
	Password  string `gorm:"type:varchar(128)" json:"-"`
	PassSalt  string `gorm:"type:varchar(200)" json:"-"`
	Role      Role   `gorm:"type:varchar(10)" json:"role"`
}

func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor || r == RoleAdmin
}

// IsElevated reports whether the role may upload and moderate content
func (r Role) IsElevated() bool {
	return r == RoleEditor || r == RoleAdmin
}

func UserCreate(email, plainTextPassword string, role Role) (u User, err error) {
	if !role.Valid() {
		role = RoleViewer
	}
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.Role = role
	u.PassSalt = utils.RandSalt(saltSize)
	u.Password = utils.Sha512String(plainTextPassword + u.PassSalt)
	return u, db.Instance.Create(&u).Error
}

func UserLogin(email, plainTextPassword string) (u User, err error) {
	result := db.Instance.First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if result.Error != nil {
		return User{}, errors.New("invalid credentials")
	}
	if u.Password != utils.Sha512String(plainTextPassword+u.PassSalt) {
		return User{}, errors.New("invalid credentials")
	}
	return u, nil
}

func UserByID(id uint64) (u User, err error) {
	err = db.Instance.First(&u, id).Error
	return
}
