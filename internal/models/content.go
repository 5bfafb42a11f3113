package models

import (
	"strings"
	"time"
)

// Kind distinguishes the two content unit types the pipeline handles.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Comment is a single reply under a topic. Comments are owned by their
// topic and have no lifecycle of their own.
type Comment struct {
	CommentID  string    `json:"comment_id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	AuthorID   string    `json:"author_id"`
	CreateTime time.Time `json:"create_time"`
	LikesCount int       `json:"likes_count"`
}

// Topic is a post fetched from a source group, with its comment thread
// attached.
type Topic struct {
	TopicID       string    `json:"topic_id"`
	GroupID       string    `json:"group_id"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Author        string    `json:"author"`
	AuthorID      string    `json:"author_id"`
	CreateTime    time.Time `json:"create_time"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	Comments      []Comment `json:"comments"`
}

// AllText returns the post body plus every comment body, space joined.
// The keyword prefilter runs against this combined text.
func (t *Topic) AllText() string {
	var b strings.Builder
	b.WriteString(t.Text)
	for _, c := range t.Comments {
		if c.Text == "" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(c.Text)
	}
	return b.String()
}
