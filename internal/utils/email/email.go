package email

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Report is an appraisal report ready for delivery
type Report struct {
	To         string
	Username   string
	Reference  string
	Applicant  string
	Body       string
	Attachment []byte
}

func (s *Sender) buildReport(r Report) (*email.Email, error) {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{r.To}
	e.Subject = fmt.Sprintf("Loan appraisal %s: %s", r.Reference, r.Applicant)

	body := fmt.Sprintf("Dear %s,\n\n", r.Username)
	body += "Please find the appraisal summary below and the full workbook attached.\n\n"
	body += r.Body
	body += "\nBest regards,\nLoan Appraisal Service"
	e.Text = []byte(body)

	if len(r.Attachment) > 0 {
		name := fmt.Sprintf("appraisal_%s.xlsx", r.Reference)
		if _, err := e.Attach(bytes.NewReader(r.Attachment), name, xlsxContentType); err != nil {
			return nil, fmt.Errorf("failed to attach workbook: %w", err)
		}
	}
	return e, nil
}

// SendAppraisalReport emails an appraisal summary with its workbook attached
func (s *Sender) SendAppraisalReport(r Report) error {
	e, err := s.buildReport(r)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", r.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", r.To, e.Subject)
	return nil
}
