package helpers

import (
	"fmt"
	"html"
	"time"
)

// BuildResetPasswordHTML: письмо со ссылкой на сброс пароля.
// Ссылка ведёт на PUT-эндпоинт, поэтому рядом печатаем её текстом.
func BuildResetPasswordHTML(name, link string, window time.Duration) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif;background:#f7f7f7;padding:0;margin:0;">
    <table width="100%%" bgcolor="#f7f7f7" cellpadding="0" cellspacing="0" style="padding:30px 0;">
      <tr>
        <td align="center">
          <table width="600" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:10px;box-shadow:0 2px 8px #eee;">
            <tr>
              <td>
                <h2 style="color:#17a2b8;margin-top:0;">Hi %s,</h2>
                <p style="font-size:16px;color:#333;">
                  You are receiving this email because you (or someone else) have requested to reset a password.
                  Please make a PUT request to:
                </p>
                <p style="font-size:14px;word-break:break-all;">
                  <a href="%s" style="color:#17a2b8;">%s</a>
                </p>
                <p style="font-size:14px;color:#555;">The link is valid for %s.</p>
                <hr style="border:none;border-top:1px solid #eee;margin:32px 0 12px 0;">
                <p style="font-size:12px;color:#999;margin:0;">
                  If you did not request this, you can safely ignore this email.
                </p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(name), html.EscapeString(link), html.EscapeString(link), humanizeWindow(window))
}

func humanizeWindow(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d hour(s)", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
