package pages

import (
	"net/url"

	"github.com/voceapacientilor/vocea/internal/ui/blocks"
	"github.com/voceapacientilor/vocea/internal/validation"
)

const (
	AuthModeLogin    = "login"
	AuthModeRegister = "register"
)

type AuthData struct {
	Mode     string
	Next     string
	Email    string
	FullName string
	Error    string
	Errors   *validation.Errors
	// Sent is the address a link was just mailed to
	Sent string
}

func (d AuthData) IsRegister() bool {
	return d.Mode == AuthModeRegister
}

func (d AuthData) modeURL(mode string) string {
	q := url.Values{"mode": {mode}}
	if d.Next != "" {
		q.Set("next", d.Next)
	}
	return "/auth?" + q.Encode()
}

func (d AuthData) providerURL(provider string) string {
	if d.Next == "" {
		return "/auth/" + provider
	}
	return "/auth/" + provider + "?" + url.Values{"next": {d.Next}}.Encode()
}

func toggleClass(active bool) string {
	return blocks.Cn("flex-1 rounded px-3 py-2 text-center text-sm font-medium",
		blocks.When(active, "bg-white shadow"),
		blocks.When(!active, "text-gray-600 hover:text-gray-900"))
}
