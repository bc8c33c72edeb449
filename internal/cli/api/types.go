package api

import "time"

// User mirrors the server's user DTO.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	Stats     *UserStats `json:"stats,omitempty"`
}

type UserStats struct {
	GroupsCount       int64 `json:"groupsCount"`
	PendingTasksCount int64 `json:"pendingTasksCount"`
}

type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OwnerID        string    `json:"ownerId"`
	Tasks          int64     `json:"tasks"`
	CompletedTasks int64     `json:"completedTasks"`
	Members        int64     `json:"members"`
	LastActivity   time.Time `json:"lastActivity"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
	IsOwner  bool      `json:"isOwner"`
}

type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	GroupID        string    `json:"groupId"`
	GroupName      string    `json:"groupName,omitempty"`
	AssignedTo     string    `json:"assignedTo"`
	AssignedToName string    `json:"assignedToName"`
	CreatedBy      string    `json:"createdBy"`
	CreatedByName  string    `json:"createdByName,omitempty"`
	DueDate        string    `json:"dueDate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	RelatedID *string   `json:"relatedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// VersionInfo is returned by GET /version.
type VersionInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	GroupID     string `json:"groupId"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}
