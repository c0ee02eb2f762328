package email

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/qs3c/workshop_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendEnrollment 报名成功通知
func (s *Service) SendEnrollment(to, name, workshopTitle string) error {
	subject := fmt.Sprintf("报名成功 - %s", s.cfg.SiteName)
	body := s.layout("报名成功", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p>您已成功报名工作坊 <strong>%s</strong>。</p>
        <p>开课前我们会再次提醒您。</p>`,
		html.EscapeString(name), html.EscapeString(workshopTitle)))

	return s.sendHTML(to, subject, body)
}

// SendGiftNotice 通知收件人有一份待领取的礼物
func (s *Service) SendGiftNotice(to, recipientName, gifterName, workshopTitle, code string) error {
	subject := fmt.Sprintf("%s 送您一份工作坊名额 - %s", gifterName, s.cfg.SiteName)
	body := s.layout("您收到一份礼物", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p><strong>%s</strong> 为您购买了工作坊 <strong>%s</strong> 的名额。</p>
        <p>使用此邮箱或手机号注册后礼物会自动到账，礼物编号：</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 16px; margin: 20px 0;">
            %s
        </div>`,
		html.EscapeString(recipientName), html.EscapeString(gifterName),
		html.EscapeString(workshopTitle), html.EscapeString(code)))

	return s.sendHTML(to, subject, body)
}

// SendGiftClaimed 礼物已领取
func (s *Service) SendGiftClaimed(to, name, gifterName, workshopTitle string) error {
	subject := fmt.Sprintf("礼物已到账 - %s", s.cfg.SiteName)
	body := s.layout("礼物已到账", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p>%s 赠送的工作坊 <strong>%s</strong> 名额已添加到您的账户。</p>`,
		html.EscapeString(name), html.EscapeString(gifterName), html.EscapeString(workshopTitle)))

	return s.sendHTML(to, subject, body)
}

// SendSeatGranted pay-it-forward 名额已分配
func (s *Service) SendSeatGranted(to, name, workshopTitle string) error {
	subject := fmt.Sprintf("您获得了一个名额 - %s", s.cfg.SiteName)
	body := s.layout("您获得了一个名额", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p>社区成员的捐赠为您支付了工作坊 <strong>%s</strong> 的名额。</p>`,
		html.EscapeString(name), html.EscapeString(workshopTitle)))

	return s.sendHTML(to, subject, body)
}

// SendCreditChanged 内部余额变动
func (s *Service) SendCreditChanged(to, name string, amount, balance float64, note string) error {
	subject := fmt.Sprintf("账户余额变动 - %s", s.cfg.SiteName)
	body := s.layout("账户余额变动", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p>您的账户余额变动 <strong>%.2f</strong>，当前余额 <strong>%.2f</strong>。</p>
        <p>%s</p>`,
		html.EscapeString(name), amount, balance, html.EscapeString(note)))

	return s.sendHTML(to, subject, body)
}

// SendRefund 退款通知
func (s *Service) SendRefund(to, name, workshopTitle string, amount float64, method string) error {
	subject := fmt.Sprintf("退款通知 - %s", s.cfg.SiteName)
	body := s.layout("退款通知", fmt.Sprintf(`
        <p>您好，%s！</p>
        <p>工作坊 <strong>%s</strong> 的报名已退款 %.2f（%s）。</p>`,
		html.EscapeString(name), html.EscapeString(workshopTitle), amount, html.EscapeString(method)))

	return s.sendHTML(to, subject, body)
}

func (s *Service) layout(title, content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">%s</h2>%s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由 %s 系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(title), content, html.EscapeString(s.cfg.SiteName))
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("email: empty recipient")
	}

	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
