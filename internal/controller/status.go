package controller

import (
	"errors"
	"strings"
)

// Status is the single message shown under the text area. Messages that start with an error or warning
// sign are rendered as errors; anything else is informational.
type Status string

const (
	errorPrefix   = "❌"
	warningPrefix = "⚠️"
)

// IsError reports whether the message is an error or warning
func (s Status) IsError() bool {
	return strings.HasPrefix(string(s), errorPrefix) || strings.HasPrefix(string(s), warningPrefix)
}

func (s Status) String() string {
	return string(s)
}

// Messages shown to the user.
const (
	MsgSelectImage   Status = "Selecciona una imagen primero."
	MsgNoText        Status = "No se detectó texto."
	MsgNoHandwriting Status = "No se detectó texto manuscrito."
	MsgLocalOK       Status = "✅ Texto impreso extraído correctamente (Easy OCR + PyTesseract)."
	MsgCloudOK       Status = "✅ Texto manuscrito extraído correctamente (OCR.Cloud)."
	MsgLocalFailed   Status = "❌ Error al procesar la imagen."
	MsgCloudFailed   Status = "❌ Error al procesar manuscrito (OCR.Cloud)."
	MsgNothingToSave Status = "No hay texto para guardar."
	MsgDownloaded    Status = "✅ Archivo descargado correctamente."
	MsgNoDownload    Status = "⚠️ No se pudo obtener el archivo para descargar."
	MsgSaveFailed    Status = "❌ Error al registrar o descargar archivo."
)

var (
	ErrNoImage       = errors.New("no image selected")
	ErrBusy          = errors.New("recognition already in progress")
	ErrNoText        = errors.New("no text detected")
	ErrNothingToSave = errors.New("nothing to save")
	ErrNoDownload    = errors.New("save response has no file path")
)
