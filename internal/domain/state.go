package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned when a stored state carries a kind outside the known set
var ErrUnknownState = errors.New("unknown conversation state")

// StateKind tags the flow that owns a chat
type StateKind string

const (
	KindRegister            StateKind = "register_full"
	KindEditMenu            StateKind = "edit_menu"
	KindVipWaiting          StateKind = "vip_waiting"
	KindVipReceipt          StateKind = "vip_receipt"
	KindAIChat              StateKind = "ai_chat"
	KindContactAdmin        StateKind = "contact_admin"
	KindSettingsMenu        StateKind = "admin_channels_menu"
	KindAIMenu              StateKind = "admin_ai_menu"
	KindSetAIToken          StateKind = "set_ai_token"
	KindUploadPrompt        StateKind = "upload_prompt"
	KindBroadcastMenu       StateKind = "broadcast_menu"
	KindBroadcast           StateKind = "broadcast"
	KindReplyToUser         StateKind = "reply_to_user"
	KindConfirmReset        StateKind = "confirm_reset_db"
	KindConfirmDeletePrompt StateKind = "confirm_delete_prompt"

	editPrefix = "edit_"
	setPrefix  = "set_"
)

// State is the per-chat conversation state.
// Each flow has its own variant carrying only the data that flow needs.
type State interface {
	Kind() StateKind
	isState()
}

// RegisterState drives the registration wizard. Step is the question being answered.
type RegisterState struct {
	Step    int     `json:"step"`
	Profile Profile `json:"profile"`
}

// EditMenuState waits for the field to edit
type EditMenuState struct{}

// EditFieldState waits for the new value of one profile field
type EditFieldState struct {
	Field ProfileField `json:"field"`
}

// VipWaitingState shows payment details and waits for "send receipt"
type VipWaitingState struct{}

// VipReceiptState waits for the receipt photo
type VipReceiptState struct{}

// AIChatState keeps the user in the AI chat loop
type AIChatState struct{}

// ContactAdminState waits for a message to forward to the admin
type ContactAdminState struct{}

// SettingsMenuState is the admin channel/payment settings menu
type SettingsMenuState struct{}

// SetSettingState waits for a new value of one settings column
type SetSettingState struct {
	Field SettingField `json:"field"`
}

// AIMenuState is the admin AI settings menu
type AIMenuState struct{}

// SetAITokenState waits for a new AI credential
type SetAITokenState struct{}

// UploadPromptState waits for a text document with the system prompt
type UploadPromptState struct{}

// BroadcastMenuState waits for the target audience
type BroadcastMenuState struct{}

// BroadcastState waits for the broadcast payload
type BroadcastState struct {
	Target Audience `json:"target"`
}

// ReplyState waits for the admin answer to a user
type ReplyState struct {
	UserID int64 `json:"user_id"`
}

// ConfirmResetState guards the database reset
type ConfirmResetState struct{}

// ConfirmDeletePromptState guards prompt deletion
type ConfirmDeletePromptState struct{}

func (RegisterState) Kind() StateKind            { return KindRegister }
func (EditMenuState) Kind() StateKind            { return KindEditMenu }
func (s EditFieldState) Kind() StateKind         { return StateKind(editPrefix + string(s.Field)) }
func (VipWaitingState) Kind() StateKind          { return KindVipWaiting }
func (VipReceiptState) Kind() StateKind          { return KindVipReceipt }
func (AIChatState) Kind() StateKind              { return KindAIChat }
func (ContactAdminState) Kind() StateKind        { return KindContactAdmin }
func (SettingsMenuState) Kind() StateKind        { return KindSettingsMenu }
func (s SetSettingState) Kind() StateKind        { return StateKind(setPrefix + string(s.Field)) }
func (AIMenuState) Kind() StateKind              { return KindAIMenu }
func (SetAITokenState) Kind() StateKind          { return KindSetAIToken }
func (UploadPromptState) Kind() StateKind        { return KindUploadPrompt }
func (BroadcastMenuState) Kind() StateKind       { return KindBroadcastMenu }
func (BroadcastState) Kind() StateKind           { return KindBroadcast }
func (ReplyState) Kind() StateKind               { return KindReplyToUser }
func (ConfirmResetState) Kind() StateKind        { return KindConfirmReset }
func (ConfirmDeletePromptState) Kind() StateKind { return KindConfirmDeletePrompt }

func (RegisterState) isState()            {}
func (EditMenuState) isState()            {}
func (EditFieldState) isState()           {}
func (VipWaitingState) isState()          {}
func (VipReceiptState) isState()          {}
func (AIChatState) isState()              {}
func (ContactAdminState) isState()        {}
func (SettingsMenuState) isState()        {}
func (SetSettingState) isState()          {}
func (AIMenuState) isState()              {}
func (SetAITokenState) isState()          {}
func (UploadPromptState) isState()        {}
func (BroadcastMenuState) isState()       {}
func (BroadcastState) isState()           {}
func (ReplyState) isState()               {}
func (ConfirmResetState) isState()        {}
func (ConfirmDeletePromptState) isState() {}

// EncodeState serialises a state for persistent session stores
func EncodeState(st State) (StateKind, []byte, error) {
	if st == nil {
		return "", nil, fmt.Errorf("encode state: nil state")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", nil, fmt.Errorf("encode state %s: %w", st.Kind(), err)
	}
	return st.Kind(), data, nil
}

// DecodeState restores a state from its kind tag and JSON data
func DecodeState(kind StateKind, data []byte) (State, error) {
	var st State
	switch kind {
	case KindRegister:
		var s RegisterState
		if err := unmarshalState(data, &s); err != nil {
			return nil, err
		}
		st = s
	case KindEditMenu:
		st = EditMenuState{}
	case KindVipWaiting:
		st = VipWaitingState{}
	case KindVipReceipt:
		st = VipReceiptState{}
	case KindAIChat:
		st = AIChatState{}
	case KindContactAdmin:
		st = ContactAdminState{}
	case KindSettingsMenu:
		st = SettingsMenuState{}
	case KindAIMenu:
		st = AIMenuState{}
	case KindSetAIToken:
		st = SetAITokenState{}
	case KindUploadPrompt:
		st = UploadPromptState{}
	case KindBroadcastMenu:
		st = BroadcastMenuState{}
	case KindBroadcast:
		var s BroadcastState
		if err := unmarshalState(data, &s); err != nil {
			return nil, err
		}
		if !s.Target.Valid() {
			return nil, fmt.Errorf("%w: broadcast target %q", ErrUnknownState, s.Target)
		}
		st = s
	case KindReplyToUser:
		var s ReplyState
		if err := unmarshalState(data, &s); err != nil {
			return nil, err
		}
		st = s
	case KindConfirmReset:
		st = ConfirmResetState{}
	case KindConfirmDeletePrompt:
		st = ConfirmDeletePromptState{}
	default:
		return decodeFieldState(kind)
	}
	return st, nil
}

// edit_<field> and set_<field> carry their field in the tag itself
func decodeFieldState(kind StateKind) (State, error) {
	raw := string(kind)
	switch {
	case strings.HasPrefix(raw, editPrefix):
		field := ProfileField(strings.TrimPrefix(raw, editPrefix))
		if field.Valid() {
			return EditFieldState{Field: field}, nil
		}
	case strings.HasPrefix(raw, setPrefix):
		field := SettingField(strings.TrimPrefix(raw, setPrefix))
		if field.Valid() && field != SettingAIToken && field != SettingPrompt {
			return SetSettingState{Field: field}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownState, kind)
}

func unmarshalState(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	return nil
}
