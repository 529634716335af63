package client

import (
	"encoding/json"
	"strings"
)

// User is a dashboard account.
type User struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles,omitempty"`
}

// Tokens is a JWT pair.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResult is the payload of login and register.
type AuthResult struct {
	Tokens Tokens          `json:"tokens"`
	User   json.RawMessage `json:"user"`
}

// DecodeUser decodes the raw profile.
func (r AuthResult) DecodeUser() (User, error) {
	var user User
	err := json.Unmarshal(r.User, &user)
	return user, err
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Connection states of platform contacts.
const (
	ConnectionConnected       = "connected"
	ConnectionPendingSent     = "pending_sent"
	ConnectionPendingReceived = "pending_received"
	ConnectionNotConnected    = "not_connected"
)

// Contact is a network entry: a platform user or a manual contact.
type Contact struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	IsPlatformUser   bool   `json:"is_platform_user"`
	PlatformUser     *User  `json:"platform_user,omitempty"`
	ConnectionStatus string `json:"connection_status,omitempty"`
}

// DisplayName prefers the platform profile name, then the contact's own
// name, email and phone.
func (c Contact) DisplayName() string {
	if c.IsPlatformUser && c.PlatformUser != nil && c.PlatformUser.Name != "" {
		return c.PlatformUser.Name
	}
	for _, candidate := range []string{c.Name, c.Email, c.PhoneNumber} {
		if candidate != "" {
			return candidate
		}
	}
	return "Unknown Contact"
}

// DisplayEmail prefers the platform profile email.
func (c Contact) DisplayEmail() string {
	if c.IsPlatformUser && c.PlatformUser != nil && c.PlatformUser.Email != "" {
		return c.PlatformUser.Email
	}
	return c.Email
}

// Initials returns up to two upper case initials of the display name.
func (c Contact) Initials() string {
	var initials []rune
	for _, word := range strings.Fields(c.DisplayName()) {
		initials = append(initials, []rune(word)[0])
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return strings.ToUpper(string(initials))
}

// StatusLabel is the connection status shown for platform users, or "" for
// manual contacts and unknown states.
func (c Contact) StatusLabel() string {
	if !c.IsPlatformUser {
		return ""
	}
	switch c.ConnectionStatus {
	case ConnectionConnected:
		return "Connected"
	case ConnectionPendingSent:
		return "Request Sent"
	case ConnectionPendingReceived:
		return "Request Received"
	case ConnectionNotConnected, "":
		return "Not Connected"
	default:
		return ""
	}
}

// ContactInput creates a contact. Identifier is an email or phone number the
// server matches against platform users.
type ContactInput struct {
	Identifier  string `json:"identifier,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// UserSearchResult is the platform user search payload.
type UserSearchResult struct {
	Results []User `json:"results"`
	Count   int    `json:"count"`
}

// Course is an instructor course.
type Course struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       any    `json:"category,omitempty"`
	Status         string `json:"status,omitempty"`
	Image          string `json:"image,omitempty"`
	MaxEnrollments *int   `json:"max_enrollments,omitempty"`
	Students       int    `json:"students_count,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// Category is a course category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Unit is a learning unit of a course.
type Unit struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Order          int    `json:"order,omitempty"`
	MainSessionURL string `json:"main_session_url,omitempty"`
}

// UnitInput creates or updates a unit.
type UnitInput struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Order          int    `json:"order,omitempty"`
	MainSessionURL string `json:"main_session_url,omitempty"`
}

// Goal is a course learning goal.
type Goal struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TaskType    string `json:"task_type"`
	Order       int    `json:"order,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// GoalInput creates or updates a goal.
type GoalInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TaskType    string `json:"task_type"`
	Order       int    `json:"order,omitempty"`
}

// Material is a course resource: an uploaded file or a link.
type Material struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ResourceType string `json:"resource_type"`
	File         string `json:"file,omitempty"`
	Link         string `json:"link,omitempty"`
	Order        int    `json:"order,omitempty"`
}
