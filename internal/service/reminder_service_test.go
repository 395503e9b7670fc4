package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kupon-backend/internal/model"
)

func TestCooldownGuard_Check(t *testing.T) {
	guard := CooldownGuard{Window: 24 * time.Hour}
	now := testBase

	t.Run("never sent", func(t *testing.T) {
		remaining, ok := guard.Check(nil, now)
		assert.True(t, ok)
		assert.Zero(t, remaining)
	})

	t.Run("window elapsed", func(t *testing.T) {
		last := now.Add(-24 * time.Hour)
		_, ok := guard.Check(&last, now)
		assert.True(t, ok)

		last = now.Add(-25 * time.Hour)
		_, ok = guard.Check(&last, now)
		assert.True(t, ok)
	})

	t.Run("remaining hours round up", func(t *testing.T) {
		cases := []struct {
			since time.Duration
			want  int
		}{
			{1 * time.Minute, 24},
			{30 * time.Minute, 24},
			{1 * time.Hour, 23},
			{12 * time.Hour, 12},
			{23 * time.Hour, 1},
			{23*time.Hour + 59*time.Minute, 1},
		}
		for _, tc := range cases {
			last := now.Add(-tc.since)
			remaining, ok := guard.Check(&last, now)
			assert.False(t, ok, "since %v", tc.since)
			assert.Equal(t, tc.want, remaining, "since %v", tc.since)
		}
	})

	t.Run("remaining decreases monotonically", func(t *testing.T) {
		last := now
		prev := 25
		for elapsed := time.Duration(0); elapsed < 24*time.Hour; elapsed += 37 * time.Minute {
			remaining, ok := guard.Check(&last, now.Add(elapsed))
			require.False(t, ok, "elapsed %v", elapsed)
			assert.LessOrEqual(t, remaining, prev, "elapsed %v", elapsed)
			assert.Positive(t, remaining)
			prev = remaining
		}
	})
}

// --- fakes ---

type reminderMerchants struct {
	merchant *model.Merchant
	updated  []time.Time
}

func (f *reminderMerchants) GetByID(ctx context.Context, id string) (*model.Merchant, error) {
	if f.merchant != nil && f.merchant.ID == id {
		return f.merchant, nil
	}
	return nil, nil
}

func (f *reminderMerchants) UpdateLastReminderSentAt(ctx context.Context, id string, sentAt time.Time) error {
	f.updated = append(f.updated, sentAt)
	f.merchant.LastReminderSentAt = &sentAt
	return nil
}

type fakeRecipients struct {
	recipients []model.ReminderRecipient
	err        error
}

func (f *fakeRecipients) GetReminderRecipients(ctx context.Context, merchantID string) ([]model.ReminderRecipient, error) {
	return f.recipients, f.err
}

type fakeMessageLog struct {
	entries []*model.MessageLog
}

func (f *fakeMessageLog) LogMessage(ctx context.Context, m *model.MessageLog) error {
	f.entries = append(f.entries, m)
	return nil
}

type fakeNotifier struct {
	failFor map[string]error
	sent    []string
}

func (f *fakeNotifier) SendText(ctx context.Context, merchantID, phone, text string) error {
	if err, ok := f.failFor[phone]; ok {
		return err
	}
	f.sent = append(f.sent, phone)
	return nil
}

type reminderFixture struct {
	svc       *ReminderService
	merchants *reminderMerchants
	notifier  *fakeNotifier
	messages  *fakeMessageLog
}

func newReminderFixture(t *testing.T, lastSent *time.Time, recipients []model.ReminderRecipient) *reminderFixture {
	t.Helper()

	item := "Free boba"
	merchants := &reminderMerchants{merchant: &model.Merchant{
		ID:       "m-bdragon",
		Name:     "BDragon House",
		Timezone: "America/New_York",
		Offer: model.Offer{
			Type:     model.OfferFreeItem,
			Title:    "Free boba",
			ItemName: &item,
		},
		LastReminderSentAt: lastSent,
	}}
	notifier := &fakeNotifier{}
	messages := &fakeMessageLog{}

	svc := NewReminderService(merchants, &fakeRecipients{recipients: recipients}, messages, notifier)
	svc.now = func() time.Time { return testBase }

	return &reminderFixture{svc: svc, merchants: merchants, notifier: notifier, messages: messages}
}

func someRecipients() []model.ReminderRecipient {
	return []model.ReminderRecipient{
		{CustomerName: "Dana", Phone: "15551230001", CouponCode: "AAAA-1111", ExpiresAt: testBase.Add(48 * time.Hour)},
		{CustomerName: "Lee", Phone: "15551230002", CouponCode: "BBBB-2222", ExpiresAt: testBase.Add(72 * time.Hour)},
		{CustomerName: "Sam", Phone: "15551230003", CouponCode: "CCCC-3333", ExpiresAt: testBase.Add(96 * time.Hour)},
	}
}

// --- campaigns ---

func TestSendCampaign_DispatchesAndStampsCooldown(t *testing.T) {
	f := newReminderFixture(t, nil, someRecipients())

	result, err := f.svc.SendCampaign(context.Background(), "m-bdragon")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 3, result.Sent)
	assert.Zero(t, result.Failed)
	assert.NotEmpty(t, result.CampaignID)

	require.Len(t, f.merchants.updated, 1)
	assert.Equal(t, testBase, f.merchants.updated[0])

	require.Len(t, f.messages.entries, 3)
	for _, entry := range f.messages.entries {
		assert.True(t, entry.Sent)
		assert.Equal(t, result.CampaignID, entry.CampaignID)
		assert.Contains(t, entry.Content, "Free boba")
	}
}

func TestSendCampaign_BlockedDuringCooldown(t *testing.T) {
	last := testBase.Add(-10 * time.Hour)
	f := newReminderFixture(t, &last, someRecipients())

	_, err := f.svc.SendCampaign(context.Background(), "m-bdragon")
	var cooldown *model.CooldownActiveError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, 14, cooldown.RemainingHours)

	// Nothing was sent and the timestamp was not touched.
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.merchants.updated)
}

func TestSendCampaign_AllowedAfterWindow(t *testing.T) {
	last := testBase.Add(-24 * time.Hour)
	f := newReminderFixture(t, &last, someRecipients())

	result, err := f.svc.SendCampaign(context.Background(), "m-bdragon")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
}

func TestSendCampaign_NoRecipientsDoesNotConsumeWindow(t *testing.T) {
	f := newReminderFixture(t, nil, nil)

	result, err := f.svc.SendCampaign(context.Background(), "m-bdragon")
	require.NoError(t, err)
	assert.Zero(t, result.Attempted)
	assert.Empty(t, f.merchants.updated)

	// A follow-up campaign is still allowed.
	_, err = f.svc.SendCampaign(context.Background(), "m-bdragon")
	assert.NoError(t, err)
}

func TestSendCampaign_PartialFailureStillConsumesWindow(t *testing.T) {
	f := newReminderFixture(t, nil, someRecipients())
	f.notifier.failFor = map[string]error{"15551230002": errors.New("device offline")}

	result, err := f.svc.SendCampaign(context.Background(), "m-bdragon")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, f.merchants.updated, 1)

	var failed *model.MessageLog
	for _, entry := range f.messages.entries {
		if !entry.Sent {
			failed = entry
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "15551230002", failed.ToNumber)
	assert.Equal(t, "device offline", failed.ErrorMessage)

	// The window is now active for the next attempt.
	_, err = f.svc.SendCampaign(context.Background(), "m-bdragon")
	var cooldown *model.CooldownActiveError
	assert.ErrorAs(t, err, &cooldown)
}

func TestForceCampaign_BypassesCooldown(t *testing.T) {
	last := testBase.Add(-time.Hour)
	f := newReminderFixture(t, &last, someRecipients())

	result, err := f.svc.ForceCampaign(context.Background(), "m-bdragon")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)
	require.Len(t, f.merchants.updated, 1)
}

func TestSendCampaign_UnknownMerchant(t *testing.T) {
	f := newReminderFixture(t, nil, someRecipients())

	_, err := f.svc.SendCampaign(context.Background(), "m-missing")
	require.Error(t, err)
	_, isBusiness := model.ErrorCode(err)
	assert.False(t, isBusiness)
}
