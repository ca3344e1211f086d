package dispatch

import (
	"fmt"

	"github.com/grishankov/letter-issuer/internal/models"
)

// letterTemplate возвращает тему и HTML-текст письма для вида письма.
func letterTemplate(kind models.LetterKind, fields models.LetterFields) (subject, body string) {
	switch kind {
	case models.LetterCampusAmbassador:
		subject = "Appointment Letter – Campus Ambassador"
		body = fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>We are excited to officially welcome you as a Campus Ambassador. Please find
attached your appointment letter, which outlines your key responsibilities and
benefits.</p>
<p>If you have any questions, feel free to reach out to us.</p>
<p>Best regards,<br>The Team</p>
</body></html>`, fields.Name)

	case models.LetterInternship:
		subject = "Internship Acceptance Letter"
		body = fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Congratulations! Please find attached your official internship acceptance
letter for the <b>%s Intern</b> role.</p>
<p>We are excited to have you onboard and look forward to your contributions
during this internship.</p>
<p>Best regards,<br>The Team</p>
</body></html>`, fields.Name, fields.Domain)

	case models.LetterOffer:
		subject = "Offer Letter for the position of Business Development Associate"
		body = fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Congratulations! Please find attached your official Offer Letter for the
position of <b>Business Development Associate</b>.</p>
<p>To proceed with your onboarding, kindly review and sign the offer letter
and reply to this email with the required documents within two working days.</p>
<p>Warm regards,<br>HR Team</p>
</body></html>`, fields.Name)

	default:
		subject = "Your Letter"
		body = fmt.Sprintf(`<p>Dear %s,</p><p>Please find your document attached.</p>`, fields.Name)
	}
	return subject, body
}
