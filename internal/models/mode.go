package models

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which rewrite style (prompt variant) is requested.
type Mode string

const (
	ModeHSStudent    Mode = "HS_STUDENT"
	ModeUniStudent   Mode = "UNI_STUDENT"
	ModeSimple       Mode = "SIMPLE"
	ModeAcademic     Mode = "ACADEMIC"
	ModeProfessional Mode = "PROFESSIONAL"
	ModeSearch       Mode = "SEARCH"
)

// ErrUnknownMode is returned by ParseMode for values outside the enum.
var ErrUnknownMode = errors.New("unknown mode")

// DefaultMode is used when a request does not name one.
const DefaultMode = ModeUniStudent

// ModeInfo describes a mode for clients.
type ModeInfo struct {
	ID    Mode   `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Modes lists every mode in display order.
var Modes = []ModeInfo{
	{ID: ModeUniStudent, Label: "Tom Acadêmico", Icon: "🔵"},
	{ID: ModeProfessional, Label: "Relatório Corporativo", Icon: "🔴"},
	{ID: ModeAcademic, Label: "Artigo Científico", Icon: "🟠"},
	{ID: ModeSimple, Label: "Direto e Claro", Icon: "🟣"},
	{ID: ModeHSStudent, Label: "Tom Casual", Icon: "🟢"},
	{ID: ModeSearch, Label: "Google Search", Icon: "🔎"},
}

// ParseMode maps a string onto a Mode. Matching ignores case and surrounding
// whitespace; an empty string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	for _, info := range Modes {
		if info.ID == m {
			return true
		}
	}
	return false
}

// Saved reports whether generations in this mode go to history. Search answers
// are not rewrites of the user's text and are never saved.
func (m Mode) Saved() bool {
	return m != ModeSearch
}
