package cart

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrOwnerRequired     = errors.New("exactly one of user id or session id is required")
	ErrEmptyAttributeKey = errors.New("attribute key cannot be empty")
	ErrProductIDRequired = errors.New("product id is required")
	ErrCountryRequired   = errors.New("shipping country is required")
)

const (
	MaxAttributes      = 20
	MaxAttributeLength = 100
)

// OwnerRef identifies who a cart belongs to: a signed-in user or an
// anonymous session, never both.
type OwnerRef struct {
	userID    string
	sessionID string
}

func NewOwnerRef(userID, sessionID string) (OwnerRef, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if (userID == "") == (sessionID == "") {
		return OwnerRef{}, ErrOwnerRequired
	}
	return OwnerRef{userID: userID, sessionID: sessionID}, nil
}

func UserOwner(userID string) (OwnerRef, error) {
	return NewOwnerRef(userID, "")
}

func SessionOwner(sessionID string) (OwnerRef, error) {
	return NewOwnerRef("", sessionID)
}

func (o OwnerRef) UserID() string    { return o.userID }
func (o OwnerRef) SessionID() string { return o.sessionID }
func (o OwnerRef) IsUser() bool      { return o.userID != "" }
func (o OwnerRef) IsAnonymous() bool { return o.sessionID != "" }
func (o OwnerRef) IsZero() bool      { return o.userID == "" && o.sessionID == "" }

func (o OwnerRef) Equal(x OwnerRef) bool {
	return o.userID == x.userID && o.sessionID == x.sessionID
}

// Key is a stable string form used for storage lookups and logging.
func (o OwnerRef) Key() string {
	if o.userID != "" {
		return "user:" + o.userID
	}
	return "session:" + o.sessionID
}

// Attributes are variant selections such as size or color. Keys are
// trimmed and lower-cased so that equivalent selections compare equal.
type Attributes map[string]string

func NewAttributes(raw map[string]string) (Attributes, error) {
	if len(raw) > MaxAttributes {
		return nil, errors.New("too many attributes")
	}
	attrs := make(Attributes, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return nil, ErrEmptyAttributeKey
		}
		val := strings.TrimSpace(v)
		if len(key) > MaxAttributeLength || len(val) > MaxAttributeLength {
			return nil, errors.New("attribute too long")
		}
		attrs[key] = val
	}
	return attrs, nil
}

func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Key renders the attributes in sorted key order.
func (a Attributes) Key() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(a[k])
	}
	return b.String()
}

func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ProductRef points at a catalog product and carries the display snapshot
// captured when the line was added.
type ProductRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func NewProductRef(id, name, sku, imageURL string) (ProductRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProductRef{}, ErrProductIDRequired
	}
	return ProductRef{ID: id, Name: strings.TrimSpace(name), SKU: strings.TrimSpace(sku), ImageURL: strings.TrimSpace(imageURL)}, nil
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func NewAddress(line1, line2, city, region, postalCode, country string) (Address, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return Address{}, ErrCountryRequired
	}
	return Address{
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		Region:     strings.TrimSpace(region),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    country,
	}, nil
}
