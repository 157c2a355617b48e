package conversation

import (
	"testing"

	"vipbot/internal/domain"
	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredUser(f *fixture) {
	age := 30
	f.store.PutUser(domain.User{
		ChatID: userID,
		Name:   testutil.StrPtr("Ann"),
		Age:    &age,
		City:   testutil.StrPtr("Berlin"),
		Job:    testutil.StrPtr("engineer"),
		Score:  20,
	})
}

func TestEdit_UpdatesOnlyOneField(t *testing.T) {
	f := newFixture(t)
	registeredUser(f)

	f.handle(textIn(userID, BtnEditProfile))
	assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))

	f.handle(textIn(userID, "City"))
	assert.Equal(t, domain.EditFieldState{Field: domain.FieldCity}, f.state(t, userID))
	assert.Contains(t, f.messenger.last(t, userID).Payload.Text, "Current City: Berlin")

	f.handle(textIn(userID, " Paris "))

	user := f.store.User(userID)
	assert.Equal(t, "Paris", *user.City)
	assert.Equal(t, "Ann", *user.Name)
	assert.Equal(t, 30, *user.Age)
	assert.Equal(t, "engineer", *user.Job)
	assert.Equal(t, 25, user.Score)

	assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))
	assert.Equal(t, editKeyboard(), f.messenger.last(t, userID).Keyboard)
	assert.True(t, f.messenger.saw(adminID, "Profile updated: City"))
}

func TestEdit_InvalidAgeBecomesNull(t *testing.T) {
	f := newFixture(t)
	registeredUser(f)
	f.setState(t, userID, domain.EditFieldState{Field: domain.FieldAge})

	f.handle(textIn(userID, "old enough"))

	user := f.store.User(userID)
	assert.Nil(t, user.Age)
	assert.Equal(t, 25, user.Score)
	assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))
}

func TestEdit_SharedContact(t *testing.T) {
	t.Run("ignored for a text field", func(t *testing.T) {
		f := newFixture(t)
		registeredUser(f)
		f.setState(t, userID, domain.EditFieldState{Field: domain.FieldCity})

		f.handle(contactIn(userID, "+15550100"))

		user := f.store.User(userID)
		assert.Equal(t, "Berlin", *user.City)
		assert.Equal(t, 20, user.Score)
		assert.Equal(t, domain.EditFieldState{Field: domain.FieldCity}, f.state(t, userID))
		assert.Equal(t, msgTextExpected, f.messenger.last(t, userID).Payload.Text)
	})

	t.Run("answers the phone field", func(t *testing.T) {
		f := newFixture(t)
		registeredUser(f)
		f.setState(t, userID, domain.EditFieldState{Field: domain.FieldPhone})

		f.handle(contactIn(userID, "+15550100"))

		user := f.store.User(userID)
		require.NotNil(t, user.Phone)
		assert.Equal(t, "+15550100", *user.Phone)
		assert.Equal(t, 25, user.Score)
		assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))
	})
}

func TestEdit_Cancel(t *testing.T) {
	tests := []struct {
		name  string
		field domain.ProfileField
		token string
	}{
		{name: "cancel city", field: domain.FieldCity, token: TokenCancel},
		{name: "back from age", field: domain.FieldAge, token: TokenBack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			registeredUser(f)
			f.setState(t, userID, domain.EditFieldState{Field: tt.field})

			f.handle(textIn(userID, tt.token))

			user := f.store.User(userID)
			assert.Equal(t, "Berlin", *user.City)
			assert.Equal(t, 30, *user.Age)
			assert.Equal(t, 20, user.Score)
			assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))
			assert.Empty(t, f.messenger.to(adminID))
		})
	}
}

func TestEditMenu_IgnoresUnknownInput(t *testing.T) {
	f := newFixture(t)
	f.setState(t, userID, domain.EditMenuState{})

	f.handle(textIn(userID, "Favourite colour"))

	assert.Equal(t, domain.EditMenuState{}, f.state(t, userID))
	assert.Empty(t, f.messenger.to(userID))
}

func TestEditMenu_Back(t *testing.T) {
	f := newFixture(t)
	f.setState(t, userID, domain.EditMenuState{})

	f.handle(textIn(userID, TokenBack))

	assert.Nil(t, f.state(t, userID))
	require.NotNil(t, f.messenger.last(t, userID).Keyboard)
	assert.Equal(t, mainKeyboard().Rows, f.messenger.last(t, userID).Keyboard.Rows)
}
