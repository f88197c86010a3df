package mail

import (
	"fmt"
	"html"
	"time"
)

// OTPMessage şifre sıfırlama kodunun metin ve HTML gövdesini üretir.
func OTPMessage(org, otp string, ttl time.Duration) (subject, text, body string) {
	minutes := int(ttl.Minutes())
	subject = fmt.Sprintf("Password Reset OTP | %s", org)
	text = fmt.Sprintf("Your password reset code is %s. It is valid for %d minutes.\n"+
		"If you did not request a password reset, please ignore this email.", otp, minutes)
	body = fmt.Sprintf(`<div style="max-width:600px;margin:0 auto;font-family:Arial,Helvetica,sans-serif">
<h2>%s</h2>
<p>We received a request to reset your password. Use the code below to continue.</p>
<p style="font-size:24px;letter-spacing:6px;font-weight:bold">%s</p>
<p>This code is valid for <strong>%d minutes</strong>.</p>
<p style="color:#888">If you did not request a password reset, please ignore this email.</p>
</div>`, html.EscapeString(org), html.EscapeString(otp), minutes)
	return subject, text, body
}
