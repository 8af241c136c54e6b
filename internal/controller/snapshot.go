package controller

import (
	"strings"
	"time"

	"github.com/unisima/ocr-extractor/internal/accumulator"
	"github.com/unisima/ocr-extractor/internal/theme"
)

// Snapshot is a copy of the controller state for rendering
type Snapshot struct {
	Text             string                `json:"text"`
	Sections         []accumulator.Section `json:"sections"`
	Status           Status                `json:"status"`
	StatusIsError    bool                  `json:"status_is_error"`
	Busy             bool                  `json:"busy"`
	HasImage         bool                  `json:"has_image"`
	ImageName        string                `json:"image_name,omitempty"`
	ImagePickedAt    time.Time             `json:"image_picked_at"`
	PreviewURL       string                `json:"preview_url,omitempty"`
	MIMETypes        []string              `json:"mime_types"`
	Theme            theme.Mode            `json:"theme"`
	Palette          theme.Palette         `json:"palette"`
	ShowInstructions bool                  `json:"show_instructions"`
}

// CanExtract reports whether the recognition buttons are enabled
func (s Snapshot) CanExtract() bool {
	return s.HasImage && !s.Busy
}

// CanSave reports whether the save button is enabled
func (s Snapshot) CanSave() bool {
	return strings.TrimSpace(s.Text) != ""
}

// Snapshot copies the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Text:             c.text,
		Sections:         accumulator.Sections(c.text),
		Status:           c.status,
		StatusIsError:    c.status.IsError(),
		Busy:             c.busy,
		HasImage:         c.image != nil,
		MIMETypes:        c.mimes.Values(),
		Theme:            c.theme.Mode(),
		Palette:          c.theme.Palette(),
		ShowInstructions: c.showInstructions,
	}
	if c.image != nil {
		s.ImageName = c.image.Name
		s.ImagePickedAt = c.image.PickedAt
		s.PreviewURL = "/preview/" + c.previewToken
	}
	return s
}
