package zsxq

import "encoding/json"

// envelope is the common response wrapper of the Zsxq v2 API.
type envelope struct {
	Succeeded bool            `json:"succeeded"`
	Code      int             `json:"code"`
	RespData  json.RawMessage `json:"resp_data"`
}

type topicsData struct {
	Topics []rawTopic `json:"topics"`
}

type commentsData struct {
	Comments []rawComment `json:"comments"`
}

type selfData struct {
	User rawOwner `json:"user"`
}

type rawTopic struct {
	TopicID       json.Number  `json:"topic_id"`
	Type          string       `json:"type"`
	CreateTime    string       `json:"create_time"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
	Talk          *rawTalk     `json:"talk"`
	Question      *rawQuestion `json:"question"`
	Owner         *rawOwner    `json:"owner"`
}

type rawTalk struct {
	Text    string      `json:"text"`
	Article *rawArticle `json:"article"`
}

type rawQuestion struct {
	Text string `json:"text"`
}

type rawArticle struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type rawOwner struct {
	UserID json.Number `json:"user_id"`
	Name   string      `json:"name"`
}

type rawComment struct {
	CommentID  json.Number `json:"comment_id"`
	Text       string      `json:"text"`
	CreateTime string      `json:"create_time"`
	LikesCount int         `json:"likes_count"`
	Owner      *rawOwner   `json:"owner"`
}
