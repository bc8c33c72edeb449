package models

type User struct {
	BaseModel
	Name             string            `json:"name" gorm:"type:varchar(100);not null"`
	Email            string            `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     string            `json:"-" gorm:"type:text;not null"`
	PushToken        *string           `json:"-" gorm:"type:text"`
	GroupMemberships []GroupMembership `json:"-" gorm:"foreignKey:UserID"`
}
