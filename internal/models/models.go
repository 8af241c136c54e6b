package models

import "time"

// Image is a file picked by the user for recognition
type Image struct {
	Name     string    `json:"name"`
	MIMEType string    `json:"mime_type"`
	Data     []byte    `json:"-"`
	PickedAt time.Time `json:"picked_at"`
}

// Empty reports whether there is nothing to send
func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}

// RecognitionResult is the body returned by both recognition endpoints
type RecognitionResult struct {
	Text string `json:"text"`
}

// SaveResult is the body returned by the save endpoint
type SaveResult struct {
	Saved   bool   `json:"saved"`
	TxtPath string `json:"txt_path,omitempty"`
}

// Download describes the file a successful save produced
type Download struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
