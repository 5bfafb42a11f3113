package zsxq

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

const unknownAuthor = "未知"

// parseTopic flattens a raw topic into the pipeline's content model.
// The body may live in talk or question depending on the topic type,
// and article posts carry an extra title/body pair.
func parseTopic(rt rawTopic, groupID string) (models.Topic, error) {
	created, err := time.Parse(TimeLayout, rt.CreateTime)
	if err != nil {
		return models.Topic{}, err
	}

	var text string
	if rt.Talk != nil {
		text = rt.Talk.Text
		if rt.Talk.Article != nil {
			text += "\n" + rt.Talk.Article.Title + "\n" + stripHTML(rt.Talk.Article.Text)
		}
	}
	if text == "" && rt.Question != nil {
		text = rt.Question.Text
	}

	author, authorID := unknownAuthor, ""
	if rt.Owner != nil {
		if rt.Owner.Name != "" {
			author = rt.Owner.Name
		}
		authorID = rt.Owner.UserID.String()
	}

	return models.Topic{
		TopicID:       rt.TopicID.String(),
		GroupID:       groupID,
		Type:          rt.Type,
		Text:          strings.TrimSpace(text),
		Author:        author,
		AuthorID:      authorID,
		CreateTime:    created,
		LikesCount:    rt.LikesCount,
		CommentsCount: rt.CommentsCount,
		Comments:      []models.Comment{},
	}, nil
}

// parseComment converts a raw comment. Comments with unparseable
// timestamps keep a zero time rather than being dropped; their text is
// still worth classifying.
func parseComment(rc rawComment) models.Comment {
	created, _ := time.Parse(TimeLayout, rc.CreateTime)

	author, authorID := unknownAuthor, ""
	if rc.Owner != nil {
		if rc.Owner.Name != "" {
			author = rc.Owner.Name
		}
		authorID = rc.Owner.UserID.String()
	}

	return models.Comment{
		CommentID:  rc.CommentID.String(),
		Text:       rc.Text,
		Author:     author,
		AuthorID:   authorID,
		CreateTime: created,
		LikesCount: rc.LikesCount,
	}
}

// stripHTML reduces article HTML to plain text. Non-HTML input passes
// through untouched.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
