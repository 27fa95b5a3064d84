package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

type usersDocument struct {
	Users []*userRecord `json:"users"`
}

// userRecord is the wire form of one user. It round-trips the historical
// format exactly: field presence is tracked so that a record never written
// with joined_channels or the premium fields stays without them, while a
// revoked premium_expiry keeps its explicit null. Unknown fields survive
// rewrites untouched.
type userRecord struct {
	ID                int64
	Username          *string
	TokenExpiry       *Timestamp
	IsActive          bool
	JoinedChannels    *bool
	IsPremium         *bool
	PremiumExpiry     *Timestamp
	PremiumExpirySet  bool
	JoinedChannelsSet bool
	IsPremiumSet      bool

	extra map[string]json.RawMessage
}

func (r *userRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, v interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(value)
		return nil
	}

	if err := field("user_id", r.ID); err != nil {
		return nil, err
	}
	if err := field("username", r.Username); err != nil {
		return nil, err
	}
	if err := field("token_expiry", r.TokenExpiry); err != nil {
		return nil, err
	}
	if err := field("is_active", r.IsActive); err != nil {
		return nil, err
	}
	if r.JoinedChannelsSet {
		if err := field("joined_channels", r.JoinedChannels); err != nil {
			return nil, err
		}
	}
	if r.IsPremiumSet {
		if err := field("is_premium", r.IsPremium); err != nil {
			return nil, err
		}
	}
	if r.PremiumExpirySet {
		if err := field("premium_expiry", r.PremiumExpiry); err != nil {
			return nil, err
		}
	}
	for _, key := range sortedKeys(r.extra) {
		if err := field(key, r.extra[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *userRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		var err error
		switch key {
		case "user_id":
			err = json.Unmarshal(value, &r.ID)
		case "username":
			err = json.Unmarshal(value, &r.Username)
		case "token_expiry":
			err = json.Unmarshal(value, &r.TokenExpiry)
		case "is_active":
			err = json.Unmarshal(value, &r.IsActive)
		case "joined_channels":
			r.JoinedChannelsSet = true
			err = json.Unmarshal(value, &r.JoinedChannels)
		case "is_premium":
			r.IsPremiumSet = true
			err = json.Unmarshal(value, &r.IsPremium)
		case "premium_expiry":
			r.PremiumExpirySet = true
			err = json.Unmarshal(value, &r.PremiumExpiry)
		default:
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			r.extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("user field %q: %w", key, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *userRecord) toDomain() *domain.User {
	u := &domain.User{
		ID:       r.ID,
		IsActive: r.IsActive,
	}
	if r.Username != nil {
		name := *r.Username
		u.Username = &name
	}
	if r.TokenExpiry != nil {
		t := r.TokenExpiry.Time
		u.TokenExpiry = &t
	}
	if r.JoinedChannelsSet && r.JoinedChannels != nil {
		joined := *r.JoinedChannels
		u.JoinedChannels = &joined
	}
	if r.IsPremiumSet && r.IsPremium != nil {
		premium := *r.IsPremium
		u.IsPremium = &premium
	}
	if r.PremiumExpirySet {
		u.PremiumExpiry = domain.NullableTime{Present: true}
		if r.PremiumExpiry != nil {
			t := r.PremiumExpiry.Time
			u.PremiumExpiry.Time = &t
		}
	}
	return u
}

// apply copies mutated domain state back onto the record, leaving unknown
// fields intact.
func (r *userRecord) apply(u *domain.User) {
	r.Username = nil
	if u.Username != nil {
		name := *u.Username
		r.Username = &name
	}
	r.TokenExpiry = nil
	if u.TokenExpiry != nil {
		r.TokenExpiry = newTimestamp(*u.TokenExpiry)
	}
	r.IsActive = u.IsActive
	r.JoinedChannelsSet = u.JoinedChannels != nil
	r.JoinedChannels = nil
	if u.JoinedChannels != nil {
		joined := *u.JoinedChannels
		r.JoinedChannels = &joined
	}
	r.IsPremiumSet = u.IsPremium != nil
	r.IsPremium = nil
	if u.IsPremium != nil {
		premium := *u.IsPremium
		r.IsPremium = &premium
	}
	r.PremiumExpirySet = u.PremiumExpiry.Present
	r.PremiumExpiry = nil
	if u.PremiumExpiry.Time != nil {
		r.PremiumExpiry = newTimestamp(*u.PremiumExpiry.Time)
	}
}

// UserRepository persists users in the users document.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) ports.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) readUsers() usersDocument {
	doc := usersDocument{Users: []*userRecord{}}
	if !r.store.readDocument(r.store.usersPath, &doc) {
		return usersDocument{Users: []*userRecord{}}
	}
	if doc.Users == nil {
		doc.Users = []*userRecord{}
	}
	return doc
}

func (r *UserRepository) Upsert(ctx context.Context, id int64, mutate func(user *domain.User, created bool)) (*domain.User, error) {
	r.store.usersMu.Lock()
	defer r.store.usersMu.Unlock()

	doc := r.readUsers()
	created := false
	rec := findUser(doc.Users, id)
	if rec == nil {
		created = true
		rec = &userRecord{ID: id}
		doc.Users = append(doc.Users, rec)
	}
	user := rec.toDomain()
	mutate(user, created)
	rec.apply(user)

	if err := r.store.writeDocument(r.store.usersPath, doc); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, mutate func(*domain.User)) (*domain.User, error) {
	r.store.usersMu.Lock()
	defer r.store.usersMu.Unlock()

	doc := r.readUsers()
	rec := findUser(doc.Users, id)
	if rec == nil {
		return nil, domain.ErrUserNotFound
	}
	user := rec.toDomain()
	mutate(user)
	rec.apply(user)

	if err := r.store.writeDocument(r.store.usersPath, doc); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.usersMu.Lock()
	defer r.store.usersMu.Unlock()

	rec := findUser(r.readUsers().Users, id)
	if rec == nil {
		return nil, domain.ErrUserNotFound
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.store.usersMu.Lock()
	defer r.store.usersMu.Unlock()

	doc := r.readUsers()
	users := make([]*domain.User, 0, len(doc.Users))
	for _, rec := range doc.Users {
		users = append(users, rec.toDomain())
	}
	return users, nil
}

func findUser(users []*userRecord, id int64) *userRecord {
	for _, rec := range users {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}
