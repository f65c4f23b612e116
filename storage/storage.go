package storage

import (
	"gasbot/pkg/models"
)

// Preference keys shared with the backend-facing services.
const (
	PrefDeliveryAddress = "deliveryAddress"
	PrefPhoneNumber     = "phoneNumber"
)

type IStorage interface {
	Session() ISessionStorage
	Orders() IOrderStorage
	Prefs() IPrefsStorage
	Close() error
}

// ISessionStorage persists the token pair, the cached profile, the
// pending registration record and the onboarding flag.
type ISessionStorage interface {
	Tokens() (access, refresh string, err error)
	SetTokens(access, refresh string) error
	SetAccessToken(access string) error
	User() (*models.User, error)
	SetUser(user *models.User) error
	TempUser() (*models.TempUser, error)
	SetTempUser(tempUser *models.TempUser) error
	SetupComplete() (bool, error)
	SetSetupComplete(done bool) error
	// Clear removes every session key in one call. Logout depends on
	// this succeeding even when the network is down.
	Clear() error
}

// IOrderStorage persists the optimistic order list blob.
type IOrderStorage interface {
	List() ([]*models.Order, error)
	Save(orders []*models.Order) error
	Unshift(order *models.Order) error
	Clear() error
}

// IPrefsStorage holds small last-used values (delivery address, phone).
type IPrefsStorage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}
