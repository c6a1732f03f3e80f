package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/config"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const ChannelEmail = "email"

// RenderFunc writes a document for the order, used for the PDF attachment.
type RenderFunc func(w io.Writer, o models.Order) error

// EmailSender mails the shop owners about every new order.
type EmailSender struct {
	from    string
	to      []string
	client  *mail.Client
	receipt RenderFunc
}

func NewEmailSender(cfg *config.Config, receipt RenderFunc) (*EmailSender, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, errors.Wrap(err, "smtp client")
	}
	return &EmailSender{from: cfg.SMTPFrom, to: cfg.NotifyTo, client: client, receipt: receipt}, nil
}

func (s *EmailSender) Channel() string { return ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, t Task) error {
	msg, err := s.message(t.Order)
	if err != nil {
		return err
	}
	return s.client.DialAndSendWithContext(ctx, msg)
}

func (s *EmailSender) message(o models.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, err
	}
	if err := msg.To(s.to...); err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("🛒 New order %s from %s", o.OrderID, o.Name))

	body, err := OrderEmailHTML(o)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextHTML, body)

	if s.receipt != nil {
		var buf bytes.Buffer
		if err := s.receipt(&buf, o); err != nil {
			return nil, errors.Wrap(err, "render receipt attachment")
		}
		if err := msg.AttachReader(fmt.Sprintf("receipt-%s.pdf", o.OrderID), &buf); err != nil {
			return nil, errors.Wrap(err, "attach receipt")
		}
	}
	return msg, nil
}

var orderEmail = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("Rs. %.0f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
	<h2 style="color: #333;">New order {{.OrderID}}</h2>
	<p><strong>{{.Name}}</strong> &middot; {{.Contact}}{{if .Email}} &middot; {{.Email}}{{end}}</p>
	<p>{{.Address}}, {{.City}}</p>
	<p>Payment: {{.PaymentMethod}}</p>
	<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background-color: #f0f0f0;">
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Item</th>
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qty</th>
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Amount</th>
			</tr>
		</thead>
		<tbody>
		{{range .CartItems}}
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">{{.Name}}{{if .SelectedSize}} ({{.SelectedSize}}){{end}}{{if .SelectedColor}} - {{.SelectedColor}}{{end}}</td>
				<td style="padding: 8px; border: 1px solid #ddd;">{{.Quantity}}</td>
				<td style="padding: 8px; border: 1px solid #ddd;">{{money .LineTotal}}</td>
			</tr>
		{{end}}
		</tbody>
		<tfoot>
			<tr>
				<td colspan="2" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
				<td style="padding: 8px; font-weight: bold;">{{money .TotalAmount}}</td>
			</tr>
		</tfoot>
	</table>
</div>
</body>
</html>`))

// OrderEmailHTML renders the order summary sent to the shop.
func OrderEmailHTML(o models.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderEmail.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}
