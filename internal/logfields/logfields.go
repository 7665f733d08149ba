package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequestID  = "request_id"
	KeyTemplate   = "template"
	KeyTemplateID = "template_id"
	KeyOutputName = "output_name"
	KeyConvertTo  = "convert_to"
	KeyHash       = "hash"
	KeyDelivery   = "delivery"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRecipients = "recipients"
	KeyPath       = "path"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func TemplateID(id string) slog.Attr   { return slog.String(KeyTemplateID, id) }
func OutputName(name string) slog.Attr { return slog.String(KeyOutputName, name) }
func ConvertTo(format string) slog.Attr { return slog.String(KeyConvertTo, format) }
func Hash(h string) slog.Attr          { return slog.String(KeyHash, h) }
func Delivery(mode string) slog.Attr   { return slog.String(KeyDelivery, mode) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Recipients(n int) slog.Attr       { return slog.Int(KeyRecipients, n) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
