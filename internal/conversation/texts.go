package conversation

import "vipbot/internal/domain"

// Navigation tokens
const (
	TokenCancel = "❌ Cancel"
	TokenBack   = "🔙 Back"
)

// Confirmation phrases of the destructive admin actions
const (
	ConfirmResetPhrase        = "confirm reset database"
	ConfirmDeletePromptPhrase = "confirm delete prompt"
)

// Main menu
const (
	BtnRegister     = "📝 Register"
	BtnEditProfile  = "✏️ Edit profile"
	BtnMyProfile    = "👤 My profile"
	BtnVIP          = "💎 VIP"
	BtnAIChat       = "🤖 AI chat"
	BtnContactAdmin = "📨 Contact admin"
)

// Admin menu
const (
	BtnStats      = "📊 Statistics"
	BtnExport     = "📤 Export users"
	BtnBroadcast  = "📢 Broadcast"
	BtnSettings   = "⚙️ Settings"
	BtnAISettings = "🧠 AI settings"
	BtnResetDB    = "🗑 Reset database"
)

// Sub menus
const (
	BtnSendReceipt  = "🧾 Send receipt"
	BtnSetAIToken   = "🔑 Set AI token"
	BtnUploadPrompt = "📄 Upload prompt"
	BtnDeletePrompt = "🗑 Delete prompt"
	BtnAudienceAll  = "👥 All users"
	BtnAudienceNorm = "🙂 Regular users"
	BtnAudienceVIP  = "💎 VIP users"
	BtnShareContact = "📱 Share phone number"
)

var fieldLabels = map[domain.ProfileField]string{
	domain.FieldName:   "Name",
	domain.FieldAge:    "Age",
	domain.FieldCity:   "City",
	domain.FieldRegion: "Region",
	domain.FieldGender: "Gender",
	domain.FieldJob:    "Job",
	domain.FieldGoal:   "Goal",
	domain.FieldPhone:  "Phone",
}

var fieldQuestions = map[domain.ProfileField]string{
	domain.FieldName:   "What is your name?",
	domain.FieldAge:    "How old are you?",
	domain.FieldCity:   "Which city do you live in?",
	domain.FieldRegion: "Which region?",
	domain.FieldGender: "What is your gender?",
	domain.FieldJob:    "What do you do for a living?",
	domain.FieldGoal:   "What is your goal with us?",
	domain.FieldPhone:  "Your phone number? You can share it with the button below.",
}

var settingLabels = map[domain.SettingField]string{
	domain.SettingChannelLink:    "Channel link",
	domain.SettingVipChannelLink: "VIP channel link",
	domain.SettingMembershipFee:  "Membership fee",
	domain.SettingWalletAddress:  "Wallet address",
	domain.SettingWalletNetwork:  "Wallet network",
}

var audienceLabels = map[string]domain.Audience{
	BtnAudienceAll:  domain.AudienceAll,
	BtnAudienceNorm: domain.AudienceNormal,
	BtnAudienceVIP:  domain.AudienceVIP,
}

const (
	msgGenericError    = "⚠️ Something went wrong. Please try again later."
	msgUseMenu         = "Please choose an option from the menu."
	msgCancelled       = "Cancelled."
	msgTextExpected    = "Please send a text message."
	msgAIQuotaReached  = "🚫 You have used all free AI questions. Get VIP for unlimited access."
	msgAINotConfigured = "⚠️ The AI assistant is not configured yet. Please try later."

	msgPromptFileRejected = "⚠️ Send a UTF-8 .txt document up to 1 MiB."
)

func profileFieldByLabel(label string) (domain.ProfileField, bool) {
	for field, l := range fieldLabels {
		if l == label {
			return field, true
		}
	}
	return "", false
}

func settingFieldByLabel(label string) (domain.SettingField, bool) {
	for field, l := range settingLabels {
		if l == label {
			return field, true
		}
	}
	return "", false
}

func isAbort(text string) bool {
	return text == TokenCancel || text == TokenBack
}
