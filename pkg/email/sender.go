package email

import (
	"fmt"
	"net/smtp"
	"sync"
)

// Sender sends email messages through a single SMTP endpoint
type Sender struct {
	auth     smtp.Auth
	username string
	host     string
	port     string
}

// NewSender returns a new Sender
func NewSender(username string, password string, host string, port string) *Sender {
	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Sender{
		auth:     auth,
		username: username,
		host:     host,
		port:     port,
	}
}

// Send sends a message to its recipients
func (s *Sender) Send(m Message) error {
	m.From = s.username
	return smtp.SendMail(
		fmt.Sprintf("%s:%s", s.host, s.port),
		s.auth,
		s.username,
		append(m.To, m.CC...),
		m.ToBytes(),
	)
}

var (
	_globalSenderMu sync.RWMutex
	_globalSender   *Sender
)

// S is used to access the global sender singleton
func S() *Sender {
	_globalSenderMu.RLock()
	defer _globalSenderMu.RUnlock()

	sender := _globalSender
	return sender
}

// InitSender affect a new sender to the global sender singleton
func InitSender(username string, password string, host string, port string) {
	_globalSenderMu.Lock()
	defer _globalSenderMu.Unlock()
	_globalSender = NewSender(username, password, host, port)
}
