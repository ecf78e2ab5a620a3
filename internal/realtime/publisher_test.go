package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicvoice/complaint-service/internal/domain"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "user:abc", UserChannel("abc"))
	assert.Equal(t, "dept:Street Lighting", DepartmentChannel(domain.DepartmentLighting))
}

func TestMessageEnvelope(t *testing.T) {
	raw, err := json.Marshal(Message{Event: EventComplaintUpdated, Data: map[string]any{"status": "Resolved"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"complaint:updated","data":{"status":"Resolved"}}`, string(raw))

	assert.NoError(t, Nop{}.Publish(context.Background(), "user:x", Message{}))
}
