package subscription

import (
	"testing"

	"tokenhealth/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changeMessage(eventType, userID, plan string) []byte {
	return []byte(`{
		"event": "postgres_changes",
		"payload": {
			"data": {
				"table": "subscribers",
				"type": "` + eventType + `",
				"record": {"user_id": "` + userID + `", "plan": "` + plan + `"}
			}
		}
	}`)
}

func TestParseChanges(t *testing.T) {
	changes, err := parseChanges(changeMessage("INSERT", "alice", "pro"))
	require.NoError(t, err)
	assert.Equal(t, "postgres_changes", changes.Event)
	assert.Equal(t, "subscribers", changes.Payload.Data.Table)
	assert.Equal(t, "alice", changes.Payload.Data.Record.UserID)
	assert.Equal(t, "pro", changes.Payload.Data.Record.Plan)

	_, err = parseChanges([]byte("not json"))
	assert.Error(t, err)
}

func TestApplyPlanChanges(t *testing.T) {
	quotas := quota.New(nil, 5, 100)
	sub := New(nil)

	insert, err := parseChanges(changeMessage("INSERT", "alice", "pro"))
	require.NoError(t, err)
	sub.apply(insert, quotas)
	assert.Equal(t, 100, quotas.DailyLimit("alice"))

	update, err := parseChanges(changeMessage("UPDATE", "alice", "free"))
	require.NoError(t, err)
	sub.apply(update, quotas)
	assert.Equal(t, 5, quotas.DailyLimit("alice"))
}

func TestApplyDeleteUsesOldRecord(t *testing.T) {
	quotas := quota.New(nil, 5, 100)
	quotas.SetPlan("alice", "pro")
	sub := New(nil)

	deleted, err := parseChanges([]byte(`{
		"event": "postgres_changes",
		"payload": {
			"data": {
				"table": "subscribers",
				"type": "DELETE",
				"old_record": {"user_id": "alice", "plan": "pro"}
			}
		}
	}`))
	require.NoError(t, err)
	sub.apply(deleted, quotas)
	assert.Equal(t, 5, quotas.DailyLimit("alice"))
}

func TestApplyIgnoresEmptyUser(t *testing.T) {
	quotas := quota.New(nil, 5, 100)
	sub := New(nil)

	empty, err := parseChanges(changeMessage("INSERT", "", "pro"))
	require.NoError(t, err)
	sub.apply(empty, quotas)
	assert.Equal(t, 5, quotas.DailyLimit(""))
}
