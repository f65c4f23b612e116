package file

import (
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/storage"
)

const (
	keyAccessToken   = "accessToken"
	keyRefreshToken  = "refreshToken"
	keyUser          = "user"
	keyTempUser      = "tempUser"
	keySetupComplete = "setupComplete"
	keyLocalOrders   = "localOrders"
)

type Store struct {
	kv  *kvFile
	log logger.ILogger
}

// New opens (or creates) the flat key-value store <dir>/<name>.json.
// Each authenticated identity gets its own name so sessions never bleed
// into each other.
func New(dir, name string, log logger.ILogger) (storage.IStorage, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &Store{kv: newKVFile(storePath(dir, name)), log: log}, nil
}

func (s *Store) Session() storage.ISessionStorage { return &sessionStore{kv: s.kv} }
func (s *Store) Orders() storage.IOrderStorage    { return &orderStore{kv: s.kv} }
func (s *Store) Prefs() storage.IPrefsStorage     { return &prefsStore{kv: s.kv} }
func (s *Store) Close() error                     { return nil }

type sessionStore struct {
	kv *kvFile
}

func (s *sessionStore) Tokens() (string, string, error) {
	var access, refresh string
	if _, err := s.kv.Get(keyAccessToken, &access); err != nil {
		return "", "", err
	}
	if _, err := s.kv.Get(keyRefreshToken, &refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *sessionStore) SetTokens(access, refresh string) error {
	if err := s.kv.Set(keyAccessToken, access); err != nil {
		return err
	}
	return s.kv.Set(keyRefreshToken, refresh)
}

func (s *sessionStore) SetAccessToken(access string) error {
	return s.kv.Set(keyAccessToken, access)
}

func (s *sessionStore) User() (*models.User, error) {
	var user models.User
	ok, err := s.kv.Get(keyUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (s *sessionStore) SetUser(user *models.User) error {
	if user == nil {
		return s.kv.Delete(keyUser)
	}
	return s.kv.Set(keyUser, user)
}

func (s *sessionStore) TempUser() (*models.TempUser, error) {
	var tempUser models.TempUser
	ok, err := s.kv.Get(keyTempUser, &tempUser)
	if err != nil || !ok {
		return nil, err
	}
	return &tempUser, nil
}

func (s *sessionStore) SetTempUser(tempUser *models.TempUser) error {
	if tempUser == nil {
		return s.kv.Delete(keyTempUser)
	}
	return s.kv.Set(keyTempUser, tempUser)
}

func (s *sessionStore) SetupComplete() (bool, error) {
	var done bool
	if _, err := s.kv.Get(keySetupComplete, &done); err != nil {
		return false, err
	}
	return done, nil
}

func (s *sessionStore) SetSetupComplete(done bool) error {
	return s.kv.Set(keySetupComplete, done)
}

func (s *sessionStore) Clear() error {
	return s.kv.Delete(keyAccessToken, keyRefreshToken, keyUser, keyTempUser, keySetupComplete)
}

type orderStore struct {
	kv *kvFile
}

func (s *orderStore) List() ([]*models.Order, error) {
	var orders []*models.Order
	if _, err := s.kv.Get(keyLocalOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderStore) Save(orders []*models.Order) error {
	return s.kv.Set(keyLocalOrders, orders)
}

func (s *orderStore) Unshift(order *models.Order) error {
	orders, err := s.List()
	if err != nil {
		return err
	}
	return s.Save(append([]*models.Order{order}, orders...))
}

func (s *orderStore) Clear() error {
	return s.kv.Delete(keyLocalOrders)
}

type prefsStore struct {
	kv *kvFile
}

func (s *prefsStore) Get(key string) (string, error) {
	var value string
	if _, err := s.kv.Get(key, &value); err != nil {
		return "", err
	}
	return value, nil
}

func (s *prefsStore) Set(key, value string) error {
	return s.kv.Set(key, value)
}
