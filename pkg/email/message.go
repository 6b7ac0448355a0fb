package email

import (
	"bytes"
	"fmt"
	"strings"
)

// Message is a plain email message
type Message struct {
	From    string
	To      []string
	CC      []string
	Subject string
	Body    string
	IsHTML  bool
}

// NewMessage returns a new Message
func NewMessage(subject string, body string) Message {
	return Message{
		Subject: subject,
		Body:    body,
	}
}

// ToBytes renders the full SMTP payload of the message
func (m *Message) ToBytes() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(fmt.Sprintf("From: %s\r\n", m.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.To, ",")))
	if len(m.CC) > 0 {
		buf.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(m.CC, ",")))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	if m.IsHTML {
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	} else {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(m.Body)
	return buf.Bytes()
}
