package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{"valid info", KindInfo, true},
		{"valid success", KindSuccess, true},
		{"valid error", KindError, true},
		{"valid warning", KindWarning, true},
		{"invalid empty", Kind(""), false},
		{"invalid critical", Kind("critical"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Success ")
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, k)

	_, err = ParseKind("critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notification kind")
}

func TestInputNormalize(t *testing.T) {
	t.Run("unknown kind falls back to info", func(t *testing.T) {
		in := Input{Title: "Refill", Kind: Kind("urgent")}.Normalize()
		assert.Equal(t, KindInfo, in.Kind)
		assert.Equal(t, "Refill", in.Title)
	})

	t.Run("empty title uses kind default", func(t *testing.T) {
		in := Input{Title: "   ", Kind: KindError}.Normalize()
		assert.Equal(t, "Error", in.Title)
	})

	t.Run("data is copied", func(t *testing.T) {
		data := Data{"conversation_id": "c-1"}
		in := Input{Title: "x", Data: data}.Normalize()
		data["conversation_id"] = "changed"
		assert.Equal(t, "c-1", in.Data.String("conversation_id"))
	})
}

func TestNotificationCloneIsIndependent(t *testing.T) {
	n := Notification{ID: "a", Title: "t", Kind: KindInfo, Data: Data{"k": "v"}}
	c := n.Clone()
	c.Data["k"] = "other"
	c.Read = true

	assert.Equal(t, "v", n.Data["k"])
	assert.False(t, n.Read)
}

func TestNotificationValidate(t *testing.T) {
	valid := Notification{ID: "a", Timestamp: time.Now(), Title: "t", Kind: KindInfo}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Notification)
		errMsg string
	}{
		{"empty id", func(n *Notification) { n.ID = "" }, "ID cannot be empty"},
		{"zero timestamp", func(n *Notification) { n.Timestamp = time.Time{} }, "timestamp cannot be empty"},
		{"empty title", func(n *Notification) { n.Title = "" }, "title cannot be empty"},
		{"bad kind", func(n *Notification) { n.Kind = "nope" }, "invalid notification kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid
			tt.mutate(&n)
			err := n.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSnapshotHelpers(t *testing.T) {
	s := Snapshot{
		{ID: "1", Kind: KindInfo},
		{ID: "2", Kind: KindError, Read: true},
		{ID: "3", Kind: KindError, Data: Data{"k": 1}},
	}

	assert.Equal(t, []string{"1", "2", "3"}, s.IDs())
	assert.Equal(t, 2, s.Unread())
	assert.Equal(t, 2, s.CountByKind()[KindError])

	n, ok := s.Find("2")
	require.True(t, ok)
	assert.True(t, n.Read)
	_, ok = s.Find("missing")
	assert.False(t, ok)

	c := s.Clone()
	c[2].Data["k"] = 2
	assert.Equal(t, 1, s[2].Data["k"])

	assert.NotNil(t, Snapshot(nil).Clone())
}
