package toast

import twmerge "github.com/Oudwins/tailwind-merge-go"

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
)

type Props struct {
	Title       string
	Description string
	// Items are rendered as a list below the description
	Items       []string
	Variant     Variant
	Icon        bool
	Dismissible bool
	Duration    int // ms, 0 keeps the toast until dismissed
	Class       string
}

var variantClasses = map[Variant]string{
	VariantDefault: "border-gray-200 bg-white text-gray-900",
	VariantSuccess: "border-green-200 bg-green-50 text-green-900",
	VariantError:   "border-red-200 bg-red-50 text-red-900",
	VariantWarning: "border-amber-200 bg-amber-50 text-amber-900",
}

var icons = map[Variant]string{
	VariantSuccess: "✓",
	VariantError:   "!",
	VariantWarning: "!",
}

func (p Props) variant() Variant {
	if p.Variant == "" {
		return VariantDefault
	}
	return p.Variant
}

func (p Props) classes() string {
	return twmerge.Merge("toast pointer-events-auto w-full max-w-sm rounded-lg border p-4 shadow", variantClasses[p.variant()], p.Class)
}

func (p Props) glyph() string {
	return icons[p.variant()]
}
