package communication

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/utils"
)

type EmailInfo struct {
	From        string
	To          []string
	Subject     string
	Text        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type rawEmailSender interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Mailer e-mails load reports through SES.
type Mailer struct {
	client rawEmailSender
	from   string
	to     []string
}

func NewMailer(ctx context.Context, from string, to []string) (*Mailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &Mailer{client: ses.NewFromConfig(cfg), from: from, to: to}, nil
}

func (m *Mailer) send(ctx context.Context, info *EmailInfo) error {
	emailRaw, err := BuildEmailBuffer(info)
	if err != nil {
		return err
	}
	_, err = m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: emailRaw.Bytes()},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LoadCompleted mails the summary with the skipped rows attached as CSV.
func (m *Mailer) LoadCompleted(ctx context.Context, summary *loader.Summary) error {
	subject := fmt.Sprintf("Shift load %s: %d inserted", displayName(summary.Filename), summary.Inserted)
	if !summary.Verification.Match {
		subject += " (reconciliation mismatch)"
	}

	text := SummaryLine(summary) + "\r\n"
	if !summary.Verification.Match {
		text += MismatchLine(summary) + "\r\n"
	}
	text += fmt.Sprintf("Load id: %s\r\n", summary.LoadID)

	info := &EmailInfo{From: m.from, To: m.to, Subject: subject, Text: text}
	if len(summary.SkippedDetails) > 0 {
		content, err := SkippedRowsCSV(summary.SkippedDetails)
		if err != nil {
			return err
		}
		info.Attachments = append(info.Attachments, Attachment{
			Filename:    "skipped-rows.csv",
			ContentType: "text/csv",
			Content:     content,
		})
	}
	return m.send(ctx, info)
}

func (m *Mailer) LoadFailed(ctx context.Context, loadID, filename string, cause error) error {
	return m.send(ctx, &EmailInfo{
		From:    m.from,
		To:      m.to,
		Subject: fmt.Sprintf("Shift load %s failed", displayName(filename)),
		Text:    FailureLine(loadID, filename, cause) + "\r\n",
	})
}

// SkippedRowsCSV renders skip records with a header row.
func SkippedRowsCSV(skips []loader.SkipRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{{"row", "reason", "kind", "details", "collides_with", "client_net"}}
	for _, s := range skips {
		records = append(records, []string{
			strconv.Itoa(s.Row), s.Reason, s.Kind, s.Details, utils.JoinInts(s.CollidesWith), utils.FormatMoney(s.ClientNet),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write skipped rows: %w", err)
	}
	return buf.Bytes(), nil
}

func BuildEmailBuffer(info *EmailInfo) (*bytes.Buffer, error) {
	if info.From == "" || len(info.To) == 0 {
		return nil, fmt.Errorf("email needs a sender and at least one recipient")
	}

	var emailRaw bytes.Buffer
	writer := multipart.NewWriter(&emailRaw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", info.From)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(info.To, ", "))
	headers += fmt.Sprintf("Subject: %s\r\n", info.Subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	emailRaw.WriteString(headers)

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(info.Text)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	for _, att := range info.Attachments {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("%s; name=\"%s\"", att.ContentType, att.Filename))
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", att.Filename))
		h.Set("Content-Transfer-Encoding", "base64")

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		b := make([]byte, base64.StdEncoding.EncodedLen(len(att.Content)))
		base64.StdEncoding.Encode(b, att.Content)

		// wrap lines at 76 chars
		for i := 0; i < len(b); i += 76 {
			end := min(i+76, len(b))
			part.Write(b[i:end])
			part.Write([]byte("\r\n"))
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &emailRaw, nil
}
