package pages

import (
	"strconv"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type ReplyForm struct {
	Body      string
	Anonymous bool
	Errors    *validation.Errors
}

type PostDetailData struct {
	Post        *model.Post
	Attachments []*model.Attachment
	Replies     []*model.Reply
	Reply       ReplyForm
	// Notice is shown above the reply form after a successful submit
	Notice string
}

var (
	replyMaxLength = strconv.Itoa(model.ReplyMaxLength)
	anonymousAs    = "vei apărea ca „" + model.AnonymousDisplayName + "”"
)

func repliesHeading(n int) string {
	return "Răspunsuri (" + strconv.Itoa(n) + ")"
}
