package notifier

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

type SESMailer struct {
	client *ses.SES
	from   string
}

func NewSESMailer(region, from string) (*SESMailer, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &SESMailer{client: ses.New(sess), from: from}, nil
}

func (m *SESMailer) Send(to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &ses.Body{
				Text: &ses.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	}

	_, err := m.client.SendEmail(input)
	return err
}
