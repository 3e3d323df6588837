package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// JSON column types
// ============================================================

// SocialLinks holds a PNM's social media handles
type SocialLinks struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
}

// ContactInfo holds nested contact details, stored as a JSON column
type ContactInfo struct {
	Phone            string      `json:"phone"`
	Email            string      `json:"email"`
	SocialMediaLinks SocialLinks `json:"socialMediaLinks"`
}

// Value implements driver.Valuer
func (ci ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(ci)
}

// Scan implements sql.Scanner
func (ci *ContactInfo) Scan(value interface{}) error {
	if value == nil {
		*ci = ContactInfo{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("contact info: unsupported column type")
		}
	}
	return json.Unmarshal(bytes, ci)
}

// Comment is a single entry in a referral's comment thread
type Comment struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentList is the ordered, append-only comment sequence of a referral,
// stored as a JSON column and replaced wholesale on every append
type CommentList []Comment

// Value implements driver.Valuer
func (cl CommentList) Value() (driver.Value, error) {
	if cl == nil {
		cl = CommentList{}
	}
	return json.Marshal(cl)
}

// Scan implements sql.Scanner
func (cl *CommentList) Scan(value interface{}) error {
	if value == nil {
		*cl = CommentList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("comment list: unsupported column type")
		}
	}
	return json.Unmarshal(bytes, cl)
}

// ============================================================
// Auth & User tables
// ============================================================

// User represents users table. A row is created on the first successful
// sign-in through any provider and refreshed non-destructively afterwards.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Email      *string        `gorm:"uniqueIndex;size:100" json:"email"` // NULL for phone-only users, uniqueness applies to real addresses only
	Phone      string         `gorm:"index;size:20" json:"phone"`
	FirstName  string         `gorm:"size:50" json:"first_name"`
	LastName   string         `gorm:"size:50" json:"last_name"`
	PhotoURL   string         `gorm:"size:255" json:"photo_url"`
	Password   string         `gorm:"size:255" json:"-"` // empty for Google/phone users
	Role       string         `gorm:"size:20;default:'Brother'" json:"role"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	FirstLogin time.Time      `json:"first_login"`
	LastLogin  time.Time      `json:"last_login"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// EmailAddress returns the user's email, or "" for phone-only accounts
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// DisplayName returns the user's display name, falling back to email
// and finally "Anonymous" (used as comment author)
func (u *User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	if email := u.EmailAddress(); email != "" {
		return email
	}
	return "Anonymous"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	FirstLogin time.Time `json:"first_login"`
	LastLogin  time.Time `json:"last_login"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.EmailAddress(),
		Phone:      u.Phone,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		PhotoURL:   u.PhotoURL,
		Role:       u.Role,
		IsActive:   u.IsActive,
		FirstLogin: u.FirstLogin,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Recruitment tables
// ============================================================

// PNM represents pnms table (prospective new members).
// Created by the referral flow, edited from the dashboard, never deleted.
type PNM struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	FullName    string      `gorm:"size:100;not null" json:"full_name"`
	ContactInfo ContactInfo `gorm:"type:json" json:"contact_info"`
	Status      string      `gorm:"size:20;not null;default:'Pending'" json:"status"`
	ReferredBy  string      `gorm:"size:100" json:"referred_by"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PNM) TableName() string {
	return "pnms"
}

// Referral represents referrals table. Superset of PNM fields plus grade,
// notes and the comment thread; PNMID links the record the referral created.
type Referral struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	PNMID       uint        `gorm:"index" json:"pnm_id"`
	FullName    string      `gorm:"size:100;not null" json:"full_name"`
	ContactInfo ContactInfo `gorm:"type:json" json:"contact_info"`
	Grade       string      `gorm:"size:10;not null;default:'N/A'" json:"grade"`
	Notes       string      `gorm:"type:text" json:"notes"`
	ReferredBy  string      `gorm:"size:100" json:"referred_by"`
	Status      string      `gorm:"size:20;not null;default:'Pending'" json:"status"`
	Comments    CommentList `gorm:"type:json" json:"comments"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&PNM{},
		&Referral{},
	)
}
