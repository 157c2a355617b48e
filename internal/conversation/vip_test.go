package conversation

import (
	"testing"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVip_EnterShowsPaymentDetails(t *testing.T) {
	f := newFixture(t)
	f.setSetting(t, domain.SettingMembershipFee, "10 USDT")
	f.setSetting(t, domain.SettingWalletAddress, "TXabc")
	f.setSetting(t, domain.SettingWalletNetwork, "TRC20")

	f.handle(textIn(userID, BtnVIP))

	assert.Equal(t, domain.VipWaitingState{}, f.state(t, userID))
	last := f.messenger.last(t, userID)
	assert.Contains(t, last.Payload.Text, "10 USDT")
	assert.Contains(t, last.Payload.Text, "<code>TXabc</code>")
	assert.Contains(t, last.Payload.Text, "TRC20")
	assert.Equal(t, vipWaitingKeyboard(), last.Keyboard)
}

func TestVip_ActiveMemberGetsStatus(t *testing.T) {
	f := newFixture(t)
	f.setSetting(t, domain.SettingVipChannelLink, "https://t.me/+vip")
	f.store.PutVip(*testutil.NewActiveVip(userID, testNow.AddDate(0, 0, 10)))

	f.handle(textIn(userID, BtnVIP))

	assert.Nil(t, f.state(t, userID))
	last := f.messenger.last(t, userID).Payload.Text
	assert.Contains(t, last, "active until 2026-03-25")
	assert.Contains(t, last, "https://t.me/+vip")
}

func TestVip_ReceiptFlow(t *testing.T) {
	f := newFixture(t)
	f.setState(t, userID, domain.VipWaitingState{})

	f.handle(textIn(userID, BtnSendReceipt))
	assert.Equal(t, domain.VipReceiptState{}, f.state(t, userID))

	// text is not a receipt
	f.handle(textIn(userID, "I paid"))
	assert.Equal(t, domain.VipReceiptState{}, f.state(t, userID))
	assert.Nil(t, f.store.Vip(userID))

	f.handle(mediaIn(userID, domain.MediaPhoto, "receipt-1", 42))

	rec := f.store.Vip(userID)
	require.NotNil(t, rec)
	assert.False(t, rec.Approved)
	assert.Equal(t, "receipt-1", *rec.PaymentReceipt)
	assert.Nil(t, f.state(t, userID))

	require.Len(t, f.messenger.forwards, 1)
	assert.Equal(t, forwardedMessage{to: adminID, from: userID, messageID: 42}, f.messenger.forwards[0])
	assert.True(t, f.messenger.saw(adminID, "/approve_100"))
	assert.True(t, f.messenger.saw(adminID, "/reject_100"))
}

func TestVip_ResubmitOverwrites(t *testing.T) {
	f := newFixture(t)

	for _, fileID := range []string{"receipt-1", "receipt-2"} {
		f.setState(t, userID, domain.VipReceiptState{})
		f.handle(mediaIn(userID, domain.MediaPhoto, fileID, 42))
	}

	assert.Equal(t, 1, f.store.VipCount())
	assert.Equal(t, "receipt-2", *f.store.Vip(userID).PaymentReceipt)
}

func TestVip_ForwardFailureFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.setState(t, userID, domain.VipReceiptState{})
	f.messenger.forwardErr = assert.AnError

	f.handle(mediaIn(userID, domain.MediaPhoto, "receipt-1", 42))

	assert.Nil(t, f.state(t, userID))
	assert.Equal(t, msgGenericError, f.messenger.last(t, userID).Payload.Text)
}

func TestVip_WaitingBack(t *testing.T) {
	f := newFixture(t)
	f.setState(t, userID, domain.VipWaitingState{})

	f.handle(textIn(userID, "what?"))
	assert.Equal(t, domain.VipWaitingState{}, f.state(t, userID))
	assert.Empty(t, f.messenger.to(userID))

	f.handle(textIn(userID, TokenBack))
	assert.Nil(t, f.state(t, userID))
}

func TestVip_Approve(t *testing.T) {
	f := newFixture(t)
	f.setSetting(t, domain.SettingVipChannelLink, "https://t.me/+vip")
	receipt := "receipt-1"
	f.store.PutVip(domain.VipRecord{UserID: userID, PaymentReceipt: &receipt})

	f.handle(textIn(adminID, "/approve_100"))

	rec := f.store.Vip(userID)
	require.NotNil(t, rec)
	assert.True(t, rec.Approved)
	assert.True(t, rec.StartDate.Equal(testNow))
	assert.True(t, rec.EndDate.Equal(testNow.AddDate(0, 1, 0)))
	assert.True(t, rec.ActiveAt(testNow))
	assert.False(t, rec.ActiveAt(rec.EndDate.Add(time.Second)))

	assert.Contains(t, f.messenger.last(t, userID).Payload.Text, "approved until 2026-04-15")
	assert.Contains(t, f.messenger.last(t, userID).Payload.Text, "https://t.me/+vip")
	assert.Contains(t, f.messenger.last(t, adminID).Payload.Text, "User notified")
}

func TestVip_ApproveWhenUserBlockedBot(t *testing.T) {
	f := newFixture(t)
	f.store.PutVip(domain.VipRecord{UserID: userID})
	f.messenger.sendErr[userID] = assert.AnError

	f.handle(textIn(adminID, "/approve_100"))

	assert.True(t, f.store.Vip(userID).Approved)
	assert.Contains(t, f.messenger.last(t, adminID).Payload.Text, "could not be notified")
}

func TestVip_Reject(t *testing.T) {
	f := newFixture(t)
	receipt := "receipt-1"
	f.store.PutVip(domain.VipRecord{UserID: userID, PaymentReceipt: &receipt})

	f.handle(textIn(adminID, "/reject_100"))

	rec := f.store.Vip(userID)
	require.NotNil(t, rec)
	assert.False(t, rec.Approved)
	assert.Contains(t, f.messenger.last(t, userID).Payload.Text, "rejected")
	assert.Contains(t, f.messenger.last(t, adminID).Payload.Text, "VIP rejected")
}

func TestVip_DecisionWithoutRequest(t *testing.T) {
	for _, cmd := range []string{"/approve_555", "/reject_555"} {
		t.Run(cmd, func(t *testing.T) {
			f := newFixture(t)

			f.handle(textIn(adminID, cmd))

			assert.Nil(t, f.store.Vip(555))
			assert.Contains(t, f.messenger.last(t, adminID).Payload.Text, "No VIP request")
		})
	}
}
