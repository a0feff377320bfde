package models

import "time"

// Role values
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// RecentLogCap bounds how many vote log entries a single read returns
const RecentLogCap = 20

// Request types

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type CastVoteRequest struct {
	Choice string `json:"choice" validate:"required,max=64"`
}

type CreateEventRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	Location string      `json:"location" validate:"max=200"`
	Type     string      `json:"type" validate:"max=64"`
	Schema   FieldSchema `json:"custom_fields" validate:"omitempty,dive"`
}

// UpdateEventRequest carries optional fields; nil means unchanged
type UpdateEventRequest struct {
	Name     *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Date     *string      `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location *string      `json:"location,omitempty" validate:"omitempty,max=200"`
	Type     *string      `json:"type,omitempty" validate:"omitempty,max=64"`
	Schema   *FieldSchema `json:"custom_fields,omitempty" validate:"omitempty,dive"`
}

// Empty reports whether the patch changes nothing
func (r UpdateEventRequest) Empty() bool {
	return r.Name == nil && r.Date == nil && r.Location == nil && r.Type == nil && r.Schema == nil
}

type ParticipateRequest struct {
	Status string      `json:"status" validate:"required,max=32"`
	Fields FieldValues `json:"fields"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Identity  `json:"user"`
}

type CastVoteResponse struct {
	Choices []Choice `json:"choices"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

type ParticipateResponse struct {
	ParticipationID int64 `json:"participation_id"`
	Created         bool  `json:"created"`
}

// Domain types

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Never expose in JSON
	Role         Role   `json:"role"`
}

// Identity is the authenticated principal bound to a session
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is an issued, time-bounded proof of identity
type Session struct {
	ID        string    `json:"-"`
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Choice struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	PickCount int64  `json:"pick_count"`
}

type VoteLogEntry struct {
	ID          int64     `json:"id"`
	ChoiceLabel string    `json:"choice_label"`
	CastAt      time.Time `json:"cast_at"`
}

type PollState struct {
	Choices []Choice       `json:"choices"`
	Log     []VoteLogEntry `json:"log"`
}

type Event struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Date     string      `json:"date"`
	Location string      `json:"location"`
	Type     string      `json:"type"`
	Schema   FieldSchema `json:"custom_fields"`
}

type Participation struct {
	ID      int64       `json:"id"`
	EventID int64       `json:"event_id"`
	UserID  int64       `json:"user_id"`
	Status  string      `json:"status"`
	Fields  FieldValues `json:"fields"`
}

// ParticipationWithEvent is a user's own registration view
type ParticipationWithEvent struct {
	Participation
	Event Event `json:"event"`
}

// ParticipationDetails is the admin view joining event and user
type ParticipationDetails struct {
	Participation
	Event    Event  `json:"event"`
	Username string `json:"username"`
	UserRole Role   `json:"user_role"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
