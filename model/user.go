package model

// User is a row of the users table. The id is assigned by the database and
// uniqueness of username and email is enforced by the unique indexes below.
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
}

// TableName pins the table name independently of gorm's naming strategy.
func (User) TableName() string {
	return "users"
}

// CreateUser is the candidate for an insert: no id yet.
type CreateUser struct {
	Username string
	Email    string
}
