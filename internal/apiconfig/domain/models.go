package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Environment selects the upstream base address for billed calls.
type Environment string

const (
	EnvironmentLive    Environment = "live"
	EnvironmentSandbox Environment = "sandbox"
)

// NormalizeEnvironment folds free-form input onto the two supported tags.
func NormalizeEnvironment(raw string) Environment {
	if strings.ToLower(strings.TrimSpace(raw)) == string(EnvironmentSandbox) {
		return EnvironmentSandbox
	}
	return EnvironmentLive
}

// Configuration is the stored upstream integration profile. At most one row
// is active at any time.
type Configuration struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	AppName           string       `json:"app_name" gorm:"column:app_name;type:text;not null"`
	Username          string       `json:"username" gorm:"type:text;not null"`
	PasswordEncrypted string       `json:"-" gorm:"column:password_encrypted;type:text;not null"`
	ClientRef         string       `json:"client_ref" gorm:"column:client_ref;type:text;not null"`
	ComputerName      string       `json:"computer_name" gorm:"column:computer_name;type:text;not null"`
	Environment       Environment  `json:"environment" gorm:"type:text;not null;default:live"`
	IsActive          bool         `json:"is_active" gorm:"column:is_active;not null;default:false"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (Configuration) TableName() string { return "api_configurations" }

// SaveRequest carries a new integration profile from the admin surface.
type SaveRequest struct {
	AppName      string `json:"app_name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientRef    string `json:"client_ref"`
	ComputerName string `json:"computer_name"`
	Environment  string `json:"environment"`
}

// Summary is the active profile with the credential omitted.
type Summary struct {
	ID           snowflake.ID `json:"id"`
	AppName      string       `json:"app_name"`
	Username     string       `json:"username"`
	ClientRef    string       `json:"client_ref"`
	ComputerName string       `json:"computer_name"`
	Environment  Environment  `json:"environment"`
	IsActive     bool         `json:"is_active"`
}

// Credentials is the fully resolved profile handed to the upstream client.
// The password is plaintext; it must never be logged or serialized.
type Credentials struct {
	AppName      string
	Username     string
	Password     string
	ClientRef    string
	ComputerName string
	Environment  Environment
}

// Complete reports whether every field the upstream service requires is set.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.AppName) != "" &&
		strings.TrimSpace(c.Username) != "" &&
		strings.TrimSpace(c.Password) != "" &&
		strings.TrimSpace(c.ClientRef) != "" &&
		strings.TrimSpace(c.ComputerName) != ""
}
