package conversation

import "vipbot/internal/domain"

func mainKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{
		{BtnRegister, BtnEditProfile},
		{BtnMyProfile, BtnVIP},
		{BtnAIChat, BtnContactAdmin},
	}}
}

func adminKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{
		{BtnStats, BtnExport},
		{BtnBroadcast, BtnSettings},
		{BtnAISettings, BtnResetDB},
	}}
}

func cancelKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{{TokenCancel}}}
}

func backKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{{TokenBack}}}
}

func phoneKeyboard() *Keyboard {
	return &Keyboard{
		Rows:    [][]string{{TokenCancel}},
		Contact: BtnShareContact,
		OneTime: true,
	}
}

func editKeyboard() *Keyboard {
	return pairs(profileLabels(), TokenBack)
}

func settingsKeyboard() *Keyboard {
	labels := make([]string, 0, len(domain.ChannelSettings))
	for _, f := range domain.ChannelSettings {
		labels = append(labels, settingLabels[f])
	}
	return pairs(labels, TokenBack)
}

func aiMenuKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{
		{BtnSetAIToken, BtnUploadPrompt},
		{BtnDeletePrompt},
		{TokenBack},
	}}
}

func broadcastKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{
		{BtnAudienceAll, BtnAudienceNorm},
		{BtnAudienceVIP},
		{TokenBack},
	}}
}

func vipWaitingKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]string{
		{BtnSendReceipt},
		{TokenBack},
	}}
}

func profileLabels() []string {
	labels := make([]string, 0, len(domain.ProfileFields))
	for _, f := range domain.ProfileFields {
		labels = append(labels, fieldLabels[f])
	}
	return labels
}

// pairs lays labels out two per row followed by a last row
func pairs(labels []string, last string) *Keyboard {
	kb := &Keyboard{}
	for i := 0; i < len(labels); i += 2 {
		row := []string{labels[i]}
		if i+1 < len(labels) {
			row = append(row, labels[i+1])
		}
		kb.Rows = append(kb.Rows, row)
	}
	kb.Rows = append(kb.Rows, []string{last})
	return kb
}
