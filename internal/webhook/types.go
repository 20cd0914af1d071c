package webhook

// IssueCommentEvent is the subset of the issue_comment payload the handler reads.
type IssueCommentEvent struct {
	Action     string     `json:"action"`
	Comment    Comment    `json:"comment"`
	Repository Repository `json:"repository"`
	Sender     User       `json:"sender"`
}

type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User User   `json:"user"`
}

type Repository struct {
	FullName string `json:"full_name"`
}

type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Result is the JSON response for a processed comment.
type Result struct {
	CommentID int64  `json:"comment_id"`
	Character string `json:"character,omitempty"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
}
