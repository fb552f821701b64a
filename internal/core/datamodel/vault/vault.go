package vault

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Item stores the password and notes only as PBKDF2 parameters.
type Item struct {
	ID                 string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID          string    `gorm:"column:company_id;not null;index:idx_vault_owner,priority:1" bson:"company_id"`
	OwnerUserID        string    `gorm:"column:owner_user_id;not null;index:idx_vault_owner,priority:2" bson:"owner_user_id"`
	Title              string    `gorm:"column:title;not null" bson:"title"`
	Username           string    `gorm:"column:username" bson:"username,omitempty"`
	URL                string    `gorm:"column:url" bson:"url,omitempty"`
	Tags               Tags      `gorm:"column:tags" bson:"tags,omitempty"`
	PasswordHash       string    `gorm:"column:password_hash;not null" bson:"password_hash"`
	PasswordSalt       string    `gorm:"column:password_salt;not null" bson:"password_salt"`
	PasswordIterations int       `gorm:"column:password_iterations;not null" bson:"password_iterations"`
	NotesHash          string    `gorm:"column:notes_hash" bson:"notes_hash,omitempty"`
	NotesSalt          string    `gorm:"column:notes_salt" bson:"notes_salt,omitempty"`
	NotesIterations    int       `gorm:"column:notes_iterations" bson:"notes_iterations,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (Item) TableName() string {
	return "vault_items"
}

// Tags is stored as a JSON array in SQL and as a native array in MongoDB.
type Tags []string

func (Tags) GormDataType() string {
	return "text"
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("vault: cannot scan %T into Tags", src)
	}
	return json.Unmarshal(raw, (*[]string)(t))
}
