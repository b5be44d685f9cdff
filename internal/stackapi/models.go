package stackapi

// Record shapes follow the Stack Exchange v2.x wire format. Only the fields
// the report tabulates are decoded; raw payloads keep everything else.

type BadgeCounts struct {
	Bronze int `json:"bronze"`
	Silver int `json:"silver"`
	Gold   int `json:"gold"`
}

// Owner is absent when the authoring account was deleted; the content stays
// behind unattributed.
type Owner struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type Comment struct {
	CommentID int64  `json:"comment_id"`
	PostID    int64  `json:"post_id"`
	Owner     *Owner `json:"owner"`
}

type Question struct {
	QuestionID    int64     `json:"question_id"`
	Title         string    `json:"title"`
	Tags          []string  `json:"tags"`
	Owner         *Owner    `json:"owner"`
	Comments      []Comment `json:"comments"`
	ViewCount     int       `json:"view_count"`
	UpVoteCount   int       `json:"up_vote_count"`
	DownVoteCount int       `json:"down_vote_count"`
	AnswerCount   int       `json:"answer_count"`
	IsAnswered    bool      `json:"is_answered"`
	CreationDate  int64     `json:"creation_date"`
}

type Answer struct {
	AnswerID      int64     `json:"answer_id"`
	QuestionID    int64     `json:"question_id"`
	Owner         *Owner    `json:"owner"`
	Comments      []Comment `json:"comments"`
	UpVoteCount   int       `json:"up_vote_count"`
	DownVoteCount int       `json:"down_vote_count"`
	IsAccepted    bool      `json:"is_accepted"`
	CreationDate  int64     `json:"creation_date"`
}

type User struct {
	UserID       int64       `json:"user_id"`
	DisplayName  string      `json:"display_name"`
	BadgeCounts  BadgeCounts `json:"badge_counts"`
	CreationDate int64       `json:"creation_date"`
}
