package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/workshop_server/config"
)

func TestLayout_EscapesContent(t *testing.T) {
	svc := NewService(&config.EmailConfig{SiteName: "Workshops <Dev>"})

	out := svc.layout("<title>", "<p>body</p>")

	assert.Contains(t, out, "&lt;title&gt;")
	assert.Contains(t, out, "<p>body</p>")
	assert.Contains(t, out, "Workshops &lt;Dev&gt;")
}

func TestSendHTML_EmptyRecipient(t *testing.T) {
	svc := NewService(&config.EmailConfig{SMTPHost: "localhost", SMTPPort: 25})

	err := svc.SendEnrollment("", "Sara", "Pottery")
	assert.Error(t, err)
}
