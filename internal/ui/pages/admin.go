package pages

import (
	"strconv"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/ui/blocks"
)

type AdminData struct {
	Queue    []*service.ModeratedPost
	Selected *service.ModeratedPost
}

func (d AdminData) isSelected(p *model.Post) bool {
	return d.Selected != nil && d.Selected.Post.ID == p.ID
}

func queueHeading(n int) string {
	return "În așteptare (" + strconv.Itoa(n) + ")"
}

func queueClass(selected bool) string {
	return blocks.Cn("block rounded-lg border bg-white p-3 hover:border-blue-400",
		blocks.When(selected, "border-blue-600 ring-1 ring-blue-600"))
}

func queueMeta(p *model.Post) string {
	return p.HospitalName + " · " + p.County + " · " + model.FormatDate(p.CreatedAt)
}

func queueAuthor(m *service.ModeratedPost) string {
	if n := len(m.Attachments); n > 0 {
		return m.Post.DisplayName + " · " + strconv.Itoa(n) + " imagini"
	}
	return m.Post.DisplayName
}
