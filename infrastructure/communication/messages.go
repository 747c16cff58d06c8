package communication

import (
	"fmt"
	"time"
)

// CredentialEmail wraps a freshly issued QR credential for delivery to the
// employee. The PNG is the only place the plaintext credential ever travels.
func CredentialEmail(recipient string, qrPNG []byte) *EmailInfo {
	return &EmailInfo{
		To:      []string{recipient},
		Subject: "Your gate access QR code",
		Text:    "Your new gate access QR code is attached. It replaces any code issued earlier.",
		Attachments: []Attachment{
			{Filename: "qrcode.png", ContentType: "image/png", Content: qrPNG},
		},
	}
}

// ReportEmail wraps a rendered work-time report for delivery to an admin.
func ReportEmail(recipient string, workbook []byte, windowDays int, start, end time.Time) *EmailInfo {
	period := fmt.Sprintf("%s - %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	return &EmailInfo{
		To:      []string{recipient},
		Subject: fmt.Sprintf("Work time report (%s)", period),
		Text:    fmt.Sprintf("Attached is the work time report for the last %d days (%s).", windowDays, period),
		HTML: fmt.Sprintf(
			"<html><body><h2>Work time report</h2><p>Attached is the work time report for the last %d days.</p><p>Period: %s</p></body></html>",
			windowDays, period),
		Attachments: []Attachment{
			{
				Filename:    fmt.Sprintf("work_time_report_%s_%s.xlsx", start.Format("2006-01-02"), end.Format("2006-01-02")),
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				Content:     workbook,
			},
		},
	}
}
