package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailInput(t *testing.T) {
	in := EmailInput("billing@kograph.id", "buyer@example.com", "Order ORD-1", "plain", "<b>html</b>")

	require.NotNil(t, in.Destination)
	assert.Equal(t, []string{"buyer@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "billing@kograph.id", aws.ToString(in.Source))
	assert.Equal(t, "Order ORD-1", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(in.Message.Body.Text.Data))
	assert.Equal(t, "<b>html</b>", aws.ToString(in.Message.Body.Html.Data))

	textOnly := EmailInput("a@b.c", "d@e.f", "s", "t", "")
	assert.Nil(t, textOnly.Message.Body.Html)
}

func TestSMSInput(t *testing.T) {
	in := SMSInput("6285776568948", "Total: Rp 150.000")
	assert.Equal(t, "6285776568948", aws.ToString(in.PhoneNumber))
	assert.Equal(t, "Total: Rp 150.000", aws.ToString(in.Message))
}
