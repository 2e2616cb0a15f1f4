package service

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
)

type verificationEmailData struct {
	AppName    string
	Name       string
	Code       string
	Link       string
	TTLMinutes int
}

type passwordResetEmailData struct {
	AppName    string
	Link       string
	TTLMinutes int
}

// renderEmail はテキスト版と (存在すれば) HTML版の本文を生成します
func renderEmail(name string, data any) (text, html string, err error) {
	var buf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&buf, name+".txt.tmpl", data); err != nil {
		return "", "", err
	}
	text = buf.String()

	if htmlTemplates.Lookup(name+".html.tmpl") == nil {
		return text, "", nil
	}
	buf.Reset()
	if err := htmlTemplates.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
		return "", "", err
	}
	return text, buf.String(), nil
}

// verificationLink は {base}/verify-email?code=...&email=... を返します
func verificationLink(baseURL, code, email string) string {
	return strings.TrimRight(baseURL, "/") + "/verify-email?code=" + url.QueryEscape(code) + "&email=" + url.QueryEscape(email)
}

// passwordResetLink は {base}/reset-password?token=...&email=... を返します
func passwordResetLink(baseURL, token, email string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token) + "&email=" + url.QueryEscape(email)
}
