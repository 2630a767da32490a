package pages

import (
	"strconv"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type NewPostData struct {
	Form     service.CreatePostInput
	Errors   *validation.Errors
	Counties []string
	Today    string // bounds the incident date picker
}

var (
	bodyMinLength = strconv.Itoa(validation.MinPostBodyLength)
	maxImageBytes = strconv.Itoa(model.MaxAttachmentSize)
	maxImages     = strconv.Itoa(model.MaxAttachmentsPerPost)
)

func attachedCount(result *service.CreatePostResult) string {
	return "Imagini atașate: " + strconv.Itoa(len(result.Attachments))
}
