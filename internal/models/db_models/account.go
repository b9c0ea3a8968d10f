package db_models

type Account struct {
	BaseModel
	Nickname     string
	Email        string `gorm:"unique"`
	PasswordHash string

	Sessions []ChatSession `gorm:"foreignKey:AccountID"`
}
