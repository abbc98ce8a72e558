package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var contactTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #854CE6 0%, #B854E6 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0; }
  .content { background: #f9f9f9; padding: 20px; border-radius: 0 0 8px 8px; }
  .field { margin-bottom: 15px; }
  .label { font-weight: bold; color: #854CE6; }
  .value { margin-top: 5px; white-space: pre-wrap; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>New Contact Form Submission</h2></div>
    <div class="content">
      <div class="field"><div class="label">Name:</div><div class="value">{{.Name}}</div></div>
      <div class="field"><div class="label">Email:</div><div class="value">{{.Email}}</div></div>
      <div class="field"><div class="label">Subject:</div><div class="value">{{.Subject}}</div></div>
      <div class="field"><div class="label">Message:</div><div class="value">{{.Message}}</div></div>
    </div>
  </div>
</body>
</html>
`))

var replyTemplate = template.Must(template.New("reply").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; line-height: 1.6;">
  <h3 style="color: #854CE6;">Reply from Portfolio Admin</h3>
  <p style="white-space: pre-wrap;">{{.Body}}</p>
  <hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #666; font-size: 12px;">You received this message because you contacted us via our portfolio website.</p>
</div>
`))

type ContactData struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactNotification is the email the site owner gets for each contact
// form submission. Replying to it answers the sender.
func ContactNotification(to string, d ContactData) (Message, error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, d); err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		ReplyTo: d.Email,
		Subject: "Portfolio Contact: " + d.Subject,
		HTML:    buf.String(),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\n%s\n",
			d.Name, d.Email, d.Subject, d.Message),
	}, nil
}

type ReplyData struct {
	To      string
	Subject string
	Body    string
}

func Reply(d ReplyData) (Message, error) {
	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, d); err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{d.To},
		Subject: "Re: " + d.Subject,
		HTML:    buf.String(),
		Text:    d.Body + "\n",
	}, nil
}
