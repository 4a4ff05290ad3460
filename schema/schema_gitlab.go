package schema

import "time"

// UserRef is the compact user representation embedded in platform payloads.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// MergeRequest mirrors the platform's merge request payload.
type MergeRequest struct {
	ID           int64      `json:"id"`
	IID          int        `json:"iid"`
	ProjectID    int64      `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	State        string     `json:"state"` // opened, closed, merged
	Draft        bool       `json:"draft"`
	SourceBranch string     `json:"source_branch"`
	TargetBranch string     `json:"target_branch"`
	Author       UserRef    `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	MergedAt     *time.Time `json:"merged_at"`
	WebURL       string     `json:"web_url"`
}

// Commit mirrors the platform's MR commit payload.
type Commit struct {
	ID            string    `json:"id"`
	ShortID       string    `json:"short_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	AuthorName    string    `json:"author_name"`
	AuthorEmail   string    `json:"author_email"`
	AuthoredDate  time.Time `json:"authored_date"`
	CommittedDate time.Time `json:"committed_date"`
}

// Note mirrors the platform's discussion note payload. System notes are
// machine-generated lifecycle markers (draft/ready/approval).
type Note struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    UserRef   `json:"author"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"created_at"`
}

// Pipeline mirrors the platform's pipeline run payload.
type Pipeline struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"` // success, failed, running, ...
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AwardEmoji mirrors the platform's emoji reaction payload.
type AwardEmoji struct {
	Name string  `json:"name"`
	User UserRef `json:"user"`
}
