// Package auth owns the account directory and the currently signed-in session.
//
// The directory and session live in memory and are mirrored to a kv.Store on
// every mutation. Storage failures are logged and never returned: a failed
// write degrades durability, not the result of the operation.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"medexa/internal/domain"
	"medexa/internal/kv"
)

const (
	// UsersKey holds the JSON array of every registered account.
	UsersKey = "medexa:mockUsers"
	// CurrentUserKey holds the JSON session of the signed-in account, if any.
	CurrentUserKey = "medexa:currentUser"
)

var (
	// ErrInvalidCredential is returned when the email is unknown or the password does not match.
	ErrInvalidCredential = errors.New("invalid email or password")
	// ErrEmailAlreadyInUse is returned when registering an email that already has an account.
	ErrEmailAlreadyInUse = errors.New("email already in use")
	// ErrAccountNotFound is returned by Lookup for an unknown uid.
	ErrAccountNotFound = errors.New("account not found")
)

type Option func(*Store)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBcryptCost sets the cost used to hash new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

// WithUIDGenerator replaces the uid source for new accounts.
func WithUIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newUID = fn
		}
	}
}

// Store is the single session store of the process.
type Store struct {
	kv       kv.Store
	logger   *logrus.Logger
	hashCost int
	newUID   func() string
	matches  func(stored, supplied string) bool

	startOnce sync.Once
	ready     chan struct{}

	mu       sync.Mutex
	accounts map[string]domain.Account
	order    []string
	current  *domain.Session
}

func NewStore(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:       store,
		logger:   logrus.New(),
		hashCost: bcrypt.DefaultCost,
		newUID:   func() string { return "user_" + uuid.NewString() },
		matches:  passwordMatches,
		ready:    make(chan struct{}),
		accounts: make(map[string]domain.Account),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads persisted state in the background. Operations issued before the
// load finishes wait for it. Calling Start more than once has no effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.load(context.WithoutCancel(ctx))
	})
}

// Load loads persisted state and returns once it is visible. If the store was
// already started, Load waits for that load instead of reading again.
func (s *Store) Load(ctx context.Context) error {
	started := false
	s.startOnce.Do(func() {
		started = true
		s.load(ctx)
	})
	if started {
		return nil
	}
	return s.wait(ctx)
}

// Ready is closed once persisted state has been loaded.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) await(ctx context.Context) error {
	s.Start(ctx)
	return s.wait(ctx)
}

func (s *Store) load(ctx context.Context) {
	defer close(s.ready)

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAccounts(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load persisted accounts")
	}
	for _, acc := range accounts {
		s.insert(acc)
	}

	session, err := s.readSession(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load persisted session")
	}
	s.current = session

	s.logger.Infof("auth store loaded %d accounts", len(s.order))
}

func (s *Store) readAccounts(ctx context.Context) ([]domain.Account, error) {
	raw, err := s.kv.Get(ctx, UsersKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored []domain.Account
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode %s: %w", UsersKey, err)
	}

	accounts := make([]domain.Account, 0, len(stored))
	for _, acc := range stored {
		if acc.UID == "" {
			s.logger.Warnf("skipping persisted account without uid")
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (s *Store) readSession(ctx context.Context) (*domain.Session, error) {
	raw, err := s.kv.Get(ctx, CurrentUserKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CurrentUserKey, err)
	}
	if session.UID == "" {
		return nil, fmt.Errorf("decode %s: missing uid", CurrentUserKey)
	}
	return &session, nil
}

// insert adds or replaces an account, keeping first-insertion order. Callers hold mu.
func (s *Store) insert(acc domain.Account) {
	key := domain.NormalizeEmail(acc.Email)
	if _, exists := s.accounts[key]; !exists {
		s.order = append(s.order, key)
	}
	s.accounts[key] = acc
}

// Authenticate signs in with an email and password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (domain.Session, error) {
	if err := s.await(ctx); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	acc, ok := s.accounts[domain.NormalizeEmail(email)]
	s.mu.Unlock()

	// compared without holding mu
	if !ok || !s.matches(acc.Password, password) {
		return domain.Session{}, ErrInvalidCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := acc.Session()
	s.current = &session
	s.persistSession(ctx, session)
	return session, nil
}

// Register creates an account and signs it in. Any email and password are
// accepted; the only failure is an email that is already registered.
func (s *Store) Register(ctx context.Context, email, password, name string) (domain.Session, error) {
	if err := s.await(ctx); err != nil {
		return domain.Session{}, err
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[domain.NormalizeEmail(email)]; exists {
		return domain.Session{}, ErrEmailAlreadyInUse
	}

	acc := domain.Account{
		Email:    email,
		Password: hash,
		UID:      s.newUID(),
	}
	if name != "" {
		acc.Name = &name
	}
	s.insert(acc)

	session := acc.Session()
	s.current = &session

	s.persistAccounts(ctx)
	s.persistSession(ctx, session)
	s.logger.WithField("uid", acc.UID).Info("account registered")
	return session, nil
}

// ClearSession signs out. It is safe to call when nobody is signed in.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.await(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.kv.Remove(ctx, CurrentUserKey); err != nil {
		s.logger.WithError(err).Warn("failed to clear current user")
	}
	return nil
}

// Current returns the signed-in session, if any. Like every other operation it
// waits for the persisted state to be loaded.
func (s *Store) Current(ctx context.Context) (domain.Session, bool, error) {
	if err := s.await(ctx); err != nil {
		return domain.Session{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Session{}, false, nil
	}
	return *s.current, true, nil
}

// Lookup returns the session projection of the account with the given uid.
func (s *Store) Lookup(ctx context.Context, uid string) (domain.Session, error) {
	if err := s.await(ctx); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.order {
		if acc := s.accounts[key]; acc.UID == uid {
			return acc.Session(), nil
		}
	}
	return domain.Session{}, ErrAccountNotFound
}

func (s *Store) persistAccounts(ctx context.Context) {
	snapshot := make([]domain.Account, 0, len(s.order))
	for _, key := range s.order {
		snapshot = append(snapshot, s.accounts[key])
	}
	if err := s.put(ctx, UsersKey, snapshot); err != nil {
		s.logger.WithError(err).Warn("failed to persist accounts")
	}
}

func (s *Store) persistSession(ctx context.Context, session domain.Session) {
	if err := s.put(ctx, CurrentUserKey, session); err != nil {
		s.logger.WithError(err).Warn("failed to persist current user")
	}
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

// digest maps a password of any length to 44 bytes, under bcrypt's 72 byte limit.
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// passwordMatches accepts bcrypt hashes and, for records written before hashing
// was introduced, plain values compared byte for byte.
func passwordMatches(stored, supplied string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), digest(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcryptHash(v string) bool {
	if len(v) != 60 {
		return false
	}
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}
