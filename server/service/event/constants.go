package event

import "time"

// Message source channels accepted by the ingestion pipeline.
const (
	SourceGmail        = "gmail"
	SourceSMS          = "sms"
	SourceOCR          = "ocr"
	SourceNotification = "notification"
	SourceCallRecord   = "call_record"
)

const (
	// DefaultTimezone is the fallback zone when a request carries none.
	DefaultTimezone = "Asia/Seoul"

	// DefaultTitleMaxRunes caps titles derived from raw message text.
	DefaultTitleMaxRunes = 80

	// LLMTimeout bounds a single model extraction call. The rule path
	// never waits on this; it only delays the model fallback.
	LLMTimeout = 15 * time.Second
)

// ValidSource reports whether source names a known ingestion channel.
func ValidSource(source string) bool {
	switch source {
	case SourceGmail, SourceSMS, SourceOCR, SourceNotification, SourceCallRecord:
		return true
	}
	return false
}
