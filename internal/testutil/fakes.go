package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vipbot/internal/domain"
)

// FakeStore is an in-memory implementation of every repository interface
type FakeStore struct {
	mu         sync.Mutex
	users      map[int64]*domain.User
	vips       map[int64]*domain.VipRecord
	settings   domain.Settings
	messages   []domain.MessageLog
	aiChats    []domain.AIChatLog
	broadcasts []domain.Broadcast

	// Err, when set, is returned by every call
	Err error
}

// NewFakeStore creates an empty store
func NewFakeStore() *FakeStore {
	return &FakeStore{
		users: make(map[int64]*domain.User),
		vips:  make(map[int64]*domain.VipRecord),
	}
}

// PutUser inserts or replaces a user
func (s *FakeStore) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ChatID] = &u
}

// PutVip inserts or replaces a VIP record
func (s *FakeStore) PutVip(v domain.VipRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vips[v.UserID] = &v
}

// User returns a copy of a stored user, nil when missing
func (s *FakeStore) User(chatID int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chatID]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// Vip returns a copy of a stored record, nil when missing
func (s *FakeStore) Vip(userID int64) *domain.VipRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vips[userID]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

// VipCount returns the number of stored VIP records
func (s *FakeStore) VipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vips)
}

// Messages returns the message log
func (s *FakeStore) Messages() []domain.MessageLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MessageLog(nil), s.messages...)
}

// AIChats returns the AI chat log
func (s *FakeStore) AIChats() []domain.AIChatLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AIChatLog(nil), s.aiChats...)
}

// Broadcasts returns the broadcast history
func (s *FakeStore) Broadcasts() []domain.Broadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Broadcast(nil), s.broadcasts...)
}

// Settings returns a copy of the settings row
func (s *FakeStore) Settings() *domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.settings
	return &settings
}

func (s *FakeStore) EnsureUserExists(_ context.Context, chatID int64, username, firstName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[chatID]
	if !ok {
		u = &domain.User{ChatID: chatID, RegisteredAt: time.Now()}
		s.users[chatID] = u
	}
	u.Username = optional(username)
	u.FirstName = optional(firstName)
	return nil
}

func (s *FakeStore) GetUser(_ context.Context, chatID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[chatID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *FakeStore) UpsertProfile(_ context.Context, chatID int64, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[chatID]
	if !ok {
		u = &domain.User{ChatID: chatID, RegisteredAt: time.Now()}
		s.users[chatID] = u
	}
	u.Name, u.Age, u.City, u.Region = p.Name, p.Age, p.City, p.Region
	u.Gender, u.Job, u.Goal, u.Phone = p.Gender, p.Job, p.Goal, p.Phone
	return nil
}

func (s *FakeStore) UpdateField(_ context.Context, chatID int64, field domain.ProfileField, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[chatID]
	if !ok {
		return domain.ErrUserNotFound
	}

	if field == domain.FieldAge {
		switch v := value.(type) {
		case nil:
			u.Age = nil
		case int:
			u.Age = &v
		default:
			return fmt.Errorf("age: unexpected %T", value)
		}
		return nil
	}

	var text *string
	switch v := value.(type) {
	case nil:
	case string:
		text = &v
	default:
		return fmt.Errorf("%s: unexpected %T", field, value)
	}
	switch field {
	case domain.FieldName:
		u.Name = text
	case domain.FieldCity:
		u.City = text
	case domain.FieldRegion:
		u.Region = text
	case domain.FieldGender:
		u.Gender = text
	case domain.FieldJob:
		u.Job = text
	case domain.FieldGoal:
		u.Goal = text
	case domain.FieldPhone:
		u.Phone = text
	default:
		return fmt.Errorf("unknown profile field %q", field)
	}
	return nil
}

func (s *FakeStore) AddScore(_ context.Context, chatID int64, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if u, ok := s.users[chatID]; ok {
		u.Score += points
	}
	return nil
}

func (s *FakeStore) IncrementAIUsage(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if u, ok := s.users[chatID]; ok {
		u.AIQuestionsUsed++
	}
	return nil
}

func (s *FakeStore) ListAudience(_ context.Context, audience domain.Audience, now time.Time, limit, offset int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var ids []int64
	for id := range s.users {
		active := s.vips[id].ActiveAt(now)
		switch audience {
		case domain.AudienceAll:
		case domain.AudienceVIP:
			if !active {
				continue
			}
		case domain.AudienceNormal:
			if active {
				continue
			}
		default:
			return nil, fmt.Errorf("unknown audience %q", audience)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return page(ids, limit, offset), nil
}

func (s *FakeStore) ListUsers(_ context.Context, limit, offset int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ChatID < users[j].ChatID })
	return page(users, limit, offset), nil
}

func (s *FakeStore) CountUsers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.users), nil
}

func (s *FakeStore) GetVip(_ context.Context, userID int64) (*domain.VipRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	v, ok := s.vips[userID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *FakeStore) UpsertReceipt(_ context.Context, userID int64, receipt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	v, ok := s.vips[userID]
	if !ok {
		v = &domain.VipRecord{UserID: userID}
		s.vips[userID] = v
	}
	v.Approved = false
	v.PaymentReceipt = &receipt
	return nil
}

func (s *FakeStore) Approve(_ context.Context, userID int64, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	v, ok := s.vips[userID]
	if !ok {
		return false, nil
	}
	v.Approved = true
	v.StartDate = &start
	v.EndDate = &end
	return true, nil
}

func (s *FakeStore) Reject(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	v, ok := s.vips[userID]
	if !ok {
		return false, nil
	}
	v.Approved = false
	return true, nil
}

func (s *FakeStore) CountActive(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	n := 0
	for _, v := range s.vips {
		if v.ActiveAt(now) {
			n++
		}
	}
	return n, nil
}

func (s *FakeStore) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	cp := s.settings
	return &cp, nil
}

func (s *FakeStore) SetSetting(_ context.Context, field domain.SettingField, value *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	var v *string
	if value != nil {
		cp := *value
		v = &cp
	}
	switch field {
	case domain.SettingAIToken:
		s.settings.AIToken = v
	case domain.SettingPrompt:
		s.settings.Prompt = v
	case domain.SettingChannelLink:
		s.settings.ChannelLink = v
	case domain.SettingVipChannelLink:
		s.settings.VipChannelLink = v
	case domain.SettingMembershipFee:
		s.settings.MembershipFee = v
	case domain.SettingWalletAddress:
		s.settings.WalletAddress = v
	case domain.SettingWalletNetwork:
		s.settings.WalletNetwork = v
	default:
		return fmt.Errorf("unknown setting %q", field)
	}
	return nil
}

func (s *FakeStore) InsertMessage(_ context.Context, msg domain.MessageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	msg.ID = int64(len(s.messages) + 1)
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *FakeStore) InsertAIChat(_ context.Context, chat domain.AIChatLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	chat.ID = int64(len(s.aiChats) + 1)
	chat.CreatedAt = time.Now()
	s.aiChats = append(s.aiChats, chat)
	return nil
}

func (s *FakeStore) ListMessages(_ context.Context, userID int64, limit int) ([]domain.MessageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.MessageLog
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if s.messages[i].UserID == userID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *FakeStore) ListAIChats(_ context.Context, userID int64, limit int) ([]domain.AIChatLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.AIChatLog
	for i := len(s.aiChats) - 1; i >= 0 && len(out) < limit; i-- {
		if s.aiChats[i].UserID == userID {
			out = append(out, s.aiChats[i])
		}
	}
	return out, nil
}

func (s *FakeStore) InsertBroadcast(_ context.Context, b domain.Broadcast) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	b.ID = int64(len(s.broadcasts) + 1)
	s.broadcasts = append(s.broadcasts, b)
	return b.ID, nil
}

func (s *FakeStore) GetBroadcast(_ context.Context, id int64) (*domain.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, b := range s.broadcasts {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, domain.ErrBroadcastNotFound
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
