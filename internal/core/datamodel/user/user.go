package user

import "time"

// User keeps the credential as PBKDF2 parameters; none of the secret fields
// leave the repository layer.
type User struct {
	ID               string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID        string    `gorm:"column:company_id;not null;uniqueIndex:idx_users_email,priority:1;index:idx_users_role,priority:1" bson:"company_id"`
	Email            string    `gorm:"column:email;not null;uniqueIndex:idx_users_email,priority:2" bson:"email"`
	FullName         string    `gorm:"column:full_name;not null" bson:"full_name"`
	Phone            string    `gorm:"column:phone" bson:"phone"`
	RoleKey          string    `gorm:"column:role_key;not null;index:idx_users_role,priority:2" bson:"role_key"`
	RoleRequested    string    `gorm:"column:role_requested" bson:"role_requested,omitempty"`
	Status           string    `gorm:"column:status;not null;index:idx_users_role,priority:3" bson:"status"`
	SignupApprovalID string    `gorm:"column:signup_approval_id" bson:"signup_approval_id,omitempty"`
	SecretHash       string    `gorm:"column:secret_hash" bson:"secret_hash,omitempty"`
	SecretSalt       string    `gorm:"column:secret_salt" bson:"secret_salt,omitempty"`
	SecretIterations int       `gorm:"column:secret_iterations" bson:"secret_iterations,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
