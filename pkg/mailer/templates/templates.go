package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Type  string `json:"Type"`

	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	LogoURL     string `json:"LogoURL"`
	SupportURL  string `json:"SupportURL"`
	ActionURL   string `json:"ActionURL"`

	Code          string    `json:"Code"`
	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
	ExpiresInText string    `json:"ExpiresInText"`

	CourseTitle string `json:"CourseTitle"`
	Amount      string `json:"Amount"`
	Time        string `json:"Time"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// Template names
const (
	RegistrationOTP  = "registration_otp"
	PasswordResetOTP = "password_reset_otp"
	PurchaseReceipt  = "purchase_receipt"
)

type definition struct {
	subject string
	text    string
	html    string
}

const layoutHead = `<!doctype html><html><body style="font-family:Arial,sans-serif;color:#1f2937">
{{ if .LogoURL }}<img src="{{ .LogoURL }}" alt="{{ .AppName }}" height="32">{{ end }}
<p>Hi {{ .Name | default "there" }},</p>`

const layoutFoot = `<p style="color:#6b7280;font-size:12px">{{ .CompanyName | default .AppName }}{{ if .SupportURL }} &middot; <a href="{{ .SupportURL }}">Support</a>{{ end }}</p>
</body></html>`

var definitions = map[string]definition{
	RegistrationOTP: {
		subject: `Verify your {{ .AppName }} account`,
		text: `Hi {{ .Name | default "there" }},

Your verification code is {{ .Code }}. It expires in {{ .ExpiresInText }} ({{ .ExpiresAtText }} UTC).

If you did not create an account, ignore this email.`,
		html: layoutHead + `
<p>Your verification code is:</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{ .Code }}</p>
<p>It expires in {{ .ExpiresInText }} ({{ .ExpiresAtText }} UTC).</p>
<p>If you did not create an account, ignore this email.</p>
` + layoutFoot,
	},
	PasswordResetOTP: {
		subject: `Your {{ .AppName }} password reset code`,
		text: `Hi {{ .Name | default "there" }},

Use {{ .Code }} to reset your password. The code expires in {{ .ExpiresInText }}.

If you did not request a reset, you can safely ignore this email.`,
		html: layoutHead + `
<p>Use this code to reset your password:</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{ .Code }}</p>
<p>The code expires in {{ .ExpiresInText }}.</p>
<p>If you did not request a reset, you can safely ignore this email.</p>
` + layoutFoot,
	},
	PurchaseReceipt: {
		subject: `You're enrolled in {{ .CourseTitle }}`,
		text: `Hi {{ .Name | default "there" }},

Thanks for your purchase of {{ .CourseTitle }} ({{ .Amount }}) on {{ .Time }}.
Start learning: {{ .ActionURL }}`,
		html: layoutHead + `
<p>Thanks for your purchase of <strong>{{ .CourseTitle }}</strong> ({{ .Amount }}) on {{ .Time }}.</p>
{{ if .ActionURL }}<p><a href="{{ .ActionURL }}">Start learning</a></p>{{ end }}
` + layoutFoot,
	},
}

// Known reports whether name is a registered template.
func Known(name string) bool {
	_, ok := definitions[name]
	return ok
}

// Render renders subject, text and html for the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	def, ok := definitions[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", def.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", def.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", def.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}

func renderText(name, src string, data any) (string, error) {
	tpl, err := texttpl.New(name).Funcs(texttpl.FuncMap(baseFuncs())).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	tpl, err := htmpl.New(name).Funcs(htmpl.FuncMap(baseFuncs())).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}
