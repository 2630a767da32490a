package pages

import "github.com/voceapacientilor/vocea/internal/model"

type HomeData struct {
	Posts    []*model.Post
	Filter   model.PostFilter
	Counties []string
}
