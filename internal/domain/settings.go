package domain

// Settings is the singleton configuration row edited by the admin
type Settings struct {
	AIToken        *string `db:"ai_token"`
	Prompt         *string `db:"prompt"`
	ChannelLink    *string `db:"channel_link"`
	VipChannelLink *string `db:"vip_channel_link"`
	MembershipFee  *string `db:"membership_fee"`
	WalletAddress  *string `db:"wallet_address"`
	WalletNetwork  *string `db:"wallet_network"`
}

// SettingField identifies a settings column
type SettingField string

const (
	SettingAIToken        SettingField = "ai_token"
	SettingPrompt         SettingField = "prompt"
	SettingChannelLink    SettingField = "channel_link"
	SettingVipChannelLink SettingField = "vip_channel_link"
	SettingMembershipFee  SettingField = "membership_fee"
	SettingWalletAddress  SettingField = "wallet_address"
	SettingWalletNetwork  SettingField = "wallet_network"
)

// ChannelSettings are the fields exposed by the admin settings menu
var ChannelSettings = []SettingField{
	SettingChannelLink,
	SettingVipChannelLink,
	SettingMembershipFee,
	SettingWalletAddress,
	SettingWalletNetwork,
}

// Valid reports whether f names a settings column
func (f SettingField) Valid() bool {
	switch f {
	case SettingAIToken, SettingPrompt:
		return true
	}
	for _, known := range ChannelSettings {
		if f == known {
			return true
		}
	}
	return false
}

// Value returns the current value of a field, empty when unset
func (s *Settings) Value(field SettingField) string {
	if s == nil {
		return ""
	}
	var v *string
	switch field {
	case SettingAIToken:
		v = s.AIToken
	case SettingPrompt:
		v = s.Prompt
	case SettingChannelLink:
		v = s.ChannelLink
	case SettingVipChannelLink:
		v = s.VipChannelLink
	case SettingMembershipFee:
		v = s.MembershipFee
	case SettingWalletAddress:
		v = s.WalletAddress
	case SettingWalletNetwork:
		v = s.WalletNetwork
	}
	if v == nil {
		return ""
	}
	return *v
}
