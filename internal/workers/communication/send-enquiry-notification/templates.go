// internal/workers/communication/send-enquiry-notification/templates.go
package sendenquirynotification

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

var (
	officeSubject = texttemplate.Must(texttemplate.New("officeSubject").Parse(
		`New enquiry from {{.Name}}{{if .VisaType}} ({{.VisaType}} visa){{end}}`))

	officeText = texttemplate.Must(texttemplate.New("officeText").Parse(`A new enquiry was received.

Reference: {{.EnquiryID}}
Name: {{.Name}}
Email: {{.Email}}
{{- if .Phone}}
Phone: {{.Phone}}{{end}}
{{- if .Country}}
Country: {{.Country}}{{end}}
{{- if .VisaType}}
Visa type: {{.VisaType}}{{end}}
{{- if .CRMLeadID}}
CRM lead: {{.CRMLeadID}}{{end}}

{{.Message}}
`))

	officeHTML = htmltemplate.Must(htmltemplate.New("officeHTML").Parse(`<h2>New enquiry</h2>
<table>
<tr><td>Reference</td><td>{{.EnquiryID}}</td></tr>
<tr><td>Name</td><td>{{.Name}}</td></tr>
<tr><td>Email</td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
{{if .Phone}}<tr><td>Phone</td><td>{{.Phone}}</td></tr>{{end}}
{{if .Country}}<tr><td>Country</td><td>{{.Country}}</td></tr>{{end}}
{{if .VisaType}}<tr><td>Visa type</td><td>{{.VisaType}}</td></tr>{{end}}
</table>
<p>{{.Message}}</p>
`))

	ackText = texttemplate.Must(texttemplate.New("ackText").Parse(`Hi {{.Name}},

Thank you for contacting us. An advisor will get back to you shortly.
Your reference is {{.EnquiryID}}.
`))

	smsText = texttemplate.Must(texttemplate.New("smsText").Parse(
		`New enquiry {{.EnquiryID}} from {{.Name}}{{if .Phone}}, {{.Phone}}{{end}}`))
)

func renderText(t *texttemplate.Template, input *Input) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, input); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func renderHTML(t *htmltemplate.Template, input *Input) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}
