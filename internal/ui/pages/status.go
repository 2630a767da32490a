package pages

import "strconv"

type statusData struct {
	Code    int
	Title   string
	Message string
}

func (s statusData) code() string {
	if s.Code == 0 {
		return ""
	}
	return strconv.Itoa(s.Code)
}
