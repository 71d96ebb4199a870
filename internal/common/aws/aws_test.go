package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	sendFunc func(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

func (f *fakeSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return f.sendFunc(ctx, input)
}

type fakeSNS struct {
	publishFunc func(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

func (f *fakeSNS) Publish(ctx context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return f.publishFunc(ctx, input)
}

func TestSESClient_SendText(t *testing.T) {
	var captured *ses.SendEmailInput
	client := NewSESClientWith(&fakeSES{sendFunc: func(_ context.Context, in *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
		captured = in
		return &ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil
	}})

	id, err := client.SendText(context.Background(), "review@example.org", "author@example.org", "Subject", "Body")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, "review@example.org", awssdk.ToString(captured.Source))
	assert.Equal(t, []string{"author@example.org"}, captured.Destination.ToAddresses)
	assert.Equal(t, "Subject", awssdk.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "Body", awssdk.ToString(captured.Message.Body.Text.Data))
}

func TestSESClient_SendTextError(t *testing.T) {
	client := NewSESClientWith(&fakeSES{sendFunc: func(context.Context, *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
		return nil, assert.AnError
	}})
	_, err := client.SendText(context.Background(), "a@example.org", "b@example.org", "s", "b")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSNSClient_PublishJSON(t *testing.T) {
	var captured *sns.PublishInput
	client := NewSNSClientWith(&fakeSNS{publishFunc: func(_ context.Context, in *sns.PublishInput) (*sns.PublishOutput, error) {
		captured = in
		return &sns.PublishOutput{MessageId: awssdk.String("sns-1")}, nil
	}})

	id, err := client.PublishJSON(context.Background(), "arn:aws:sns:us-east-1:1:moderation", "Rejected", `{"score":10}`,
		map[string]string{"status": "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:moderation", awssdk.ToString(captured.TopicArn))
	assert.Equal(t, `{"score":10}`, awssdk.ToString(captured.Message))
	require.Contains(t, captured.MessageAttributes, "status")
	assert.Equal(t, "rejected", awssdk.ToString(captured.MessageAttributes["status"].StringValue))
}
